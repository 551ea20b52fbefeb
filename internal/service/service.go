package service

import (
	"context"
	"fmt"
	"time"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/risk"
)

// OnboardingService is the step-gated disclosure engine plus submission.
type OnboardingService interface {
	// SaveStep validates and persists one disclosure step. The payload
	// carries exactly the section the step fills in; the section replaces
	// the previous value wholesale. A user without an organization gets one
	// created on their first step write.
	SaveStep(ctx context.Context, userID int32, role domain.OrgRole, step domain.Step, payload domain.Disclosure) (*domain.Organization, error)

	GetProgress(ctx context.Context, userID int32) (*Progress, error)

	// Submit opens (or, after an info request, reopens) a verification case
	// from the organization's current disclosure snapshot.
	Submit(ctx context.Context, userID int32, performedBy string) (*SubmitResult, error)
}

// ReviewService applies admin decisions to a case and keeps the owning
// organization's status in sync.
type ReviewService interface {
	Approve(ctx context.Context, caseID int32, reviewer string) (*domain.VerificationCase, error)
	Reject(ctx context.Context, caseID int32, reviewer, reason string) (*domain.VerificationCase, error)
	RequestInfo(ctx context.Context, caseID int32, reviewer, message string, fields []string) (*domain.VerificationCase, error)
	UnlockForRevision(ctx context.Context, caseID int32, reviewer, remarks string) (*domain.VerificationCase, error)
	AddToWatchlist(ctx context.Context, caseID int32, reviewer, remarks string) (*domain.VerificationCase, error)
}

// ReviewQueueService is the read-only aggregation behind the admin
// dashboard. It never mutates state.
type ReviewQueueService interface {
	Queue(ctx context.Context, filter QueueFilter) (*QueuePage, error)
	CaseDetail(ctx context.Context, caseID int32) (*CaseDetail, error)
	History(ctx context.Context, orgID int32) ([]domain.VerificationCase, error)
}

type EmailService interface {
	SendReviewDecision(ctx context.Context, email, name, orgName string, status domain.KYCStatus, reason string) error
	SendInfoRequest(ctx context.Context, email, name, orgName, message string, fields []string) error
	SendPendingReviewDigest(ctx context.Context, email string, caseCodes []string) error
}

// Progress is the onboarding status a submitter polls between steps.
type Progress struct {
	OrgCode            string           `json:"org_code"`
	CompletedSteps     []domain.Step    `json:"completed_steps"`
	RequiredSteps      []domain.Step    `json:"required_steps"`
	NextStep           domain.Step      `json:"next_step,omitempty"`
	KYCStatus          domain.KYCStatus `json:"kyc_status"`
	IsOnboardingLocked bool             `json:"is_onboarding_locked"`
	RejectionReason    string           `json:"rejection_reason,omitempty"`
}

type SubmitResult struct {
	CaseID            int32             `json:"case_id"`
	CaseCode          string            `json:"case_code"`
	SubmissionAttempt int32             `json:"submission_attempt"`
	Status            domain.CaseStatus `json:"status"`
}

type QueueFilter struct {
	Status domain.CaseStatus
	Role   domain.OrgRole
	Search string
	Page   int32
	Limit  int32
}

type QueueItem struct {
	CaseID            int32             `json:"case_id"`
	CaseCode          string            `json:"case_code"`
	SubmissionAttempt int32             `json:"submission_attempt"`
	OrganizationID    int32             `json:"organization_id"`
	OrganizationName  string            `json:"organization_name"`
	Role              domain.OrgRole    `json:"role"`
	Status            domain.CaseStatus `json:"status"`
	RiskLevel         risk.Level        `json:"risk_level"`
	Age               string            `json:"age"`
}

// QueuePage carries one page of the review queue. Total counts
// organizations matching the role filter only; when combined with a search
// filter it is an upper bound, not an exact match count.
type QueuePage struct {
	Items []QueueItem `json:"items"`
	Page  int32       `json:"page"`
	Limit int32       `json:"limit"`
	Total int32       `json:"total"`
}

type CaseDetail struct {
	Case         *domain.VerificationCase `json:"case"`
	Organization *domain.Organization     `json:"organization"`
	AutoChecks   risk.Checks              `json:"auto_checks"`
	Risk         risk.Assessment          `json:"risk_assessment"`
	// Watchlist holds the case's watchlist annotations, pulled out of the
	// activity log for reviewer convenience.
	Watchlist []domain.ActivityEntry `json:"watchlist,omitempty"`
	Age       string                 `json:"age"`
}

// FormatAge renders a case's time in queue as zero-padded HH:MM. Hours run
// past 24 rather than rolling into days.
func FormatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
