package jobs

import (
	"context"
	"time"

	"tradelink-backend/internal/config"
	"tradelink-backend/internal/logger"
	"tradelink-backend/internal/repository"
	"tradelink-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	caseRepo repository.VerificationCaseRepository
	emailSvc service.EmailService
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(caseRepo repository.VerificationCaseRepository, emailSvc service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		caseRepo: caseRepo,
		emailSvc: emailSvc,
		config:   cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// SendReviewReminders emails the ops inbox a digest of cases that have sat
// in SUBMITTED past the review target. Read-only: it never transitions a
// case or touches an organization.
func (jr *JobRunner) SendReviewReminders() {
	jr.runWithRecovery("SendReviewReminders", func() {
		ctx := context.Background()

		if jr.config.Review.OpsEmail == "" {
			logger.Warn("Review ops email not configured, skipping reminder digest")
			return
		}

		cutoff := time.Now().UTC().Add(-time.Duration(jr.config.Review.ReminderAfterHours) * time.Hour)
		stale, err := jr.caseRepo.ListSubmittedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale submitted cases", "error", err)
			return
		}
		if len(stale) == 0 {
			logger.Debug("No stale submitted cases")
			return
		}

		codes := make([]string, len(stale))
		for i, c := range stale {
			codes[i] = c.CaseCode
		}
		if err := jr.emailSvc.SendPendingReviewDigest(ctx, jr.config.Review.OpsEmail, codes); err != nil {
			logger.Error("Failed to send pending review digest", "error", err)
			return
		}
		logger.Info("Pending review digest sent", "count", len(codes))
	})
}
