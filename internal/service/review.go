package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/logger"
	"tradelink-backend/internal/repository"
)

type reviewService struct {
	caseRepo repository.VerificationCaseRepository
	orgRepo  repository.OrganizationRepository
	emailSvc EmailService
	locks    *OrgLocks
}

func NewReviewService(
	caseRepo repository.VerificationCaseRepository,
	orgRepo repository.OrganizationRepository,
	emailSvc EmailService,
	locks *OrgLocks,
) ReviewService {
	return &reviewService{
		caseRepo: caseRepo,
		orgRepo:  orgRepo,
		emailSvc: emailSvc,
		locks:    locks,
	}
}

// loadForReview re-reads the case and its organization under the
// per-organization lock. Every transition starts here; guard failures after
// this point leave both records untouched.
func (s *reviewService) loadForReview(ctx context.Context, caseID int32) (*domain.VerificationCase, *domain.Organization, func(), error) {
	vc, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, nil, nil, err
	}

	release := s.locks.acquire(orgKey(vc.OrgID))

	vc, err = s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, vc.OrgID)
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return vc, org, release, nil
}

// syncOrganization is the second half of the dual write. The case update
// and this organization update are sequential, not transactional: a crash
// between them leaves the two aggregates inconsistent until the action is
// replayed.
func (s *reviewService) syncOrganization(ctx context.Context, org *domain.Organization) error {
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to sync organization status: %w", err)
	}
	return nil
}

func (s *reviewService) Approve(ctx context.Context, caseID int32, reviewer string) (*domain.VerificationCase, error) {
	vc, org, release, err := s.loadForReview(ctx, caseID)
	if err != nil {
		return nil, err
	}
	defer release()

	if vc.Status != domain.CaseStatusSubmitted {
		return nil, fmt.Errorf("%w: cannot approve a case in status %s", domain.ErrInvalidTransition, vc.Status)
	}

	now := time.Now().UTC()
	vc.Status = domain.CaseStatusApproved
	vc.ReviewedBy = reviewer
	vc.ReviewedAt = &now
	vc.AppendActivity(domain.ActivityApproved, reviewer, "Verification approved", now)
	if err := s.caseRepo.Update(ctx, vc); err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	org.KYCStatus = domain.KYCStatusApproved
	org.IsOnboardingLocked = true
	org.IsVerified = true
	org.RejectionReason = ""
	org.ApprovedBy = reviewer
	org.ApprovedAt = &now
	if err := s.syncOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, org, domain.KYCStatusApproved, "")
	logger.Info("Case approved", "case_code", vc.CaseCode, "org_code", org.OrgCode, "reviewer", reviewer)
	return vc, nil
}

func (s *reviewService) Reject(ctx context.Context, caseID int32, reviewer, reason string) (*domain.VerificationCase, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrInvalidArgument)
	}

	vc, org, release, err := s.loadForReview(ctx, caseID)
	if err != nil {
		return nil, err
	}
	defer release()

	if vc.Status != domain.CaseStatusSubmitted {
		return nil, fmt.Errorf("%w: cannot reject a case in status %s", domain.ErrInvalidTransition, vc.Status)
	}

	now := time.Now().UTC()
	vc.Status = domain.CaseStatusRejected
	vc.RejectionReason = reason
	vc.ReviewedBy = reviewer
	vc.ReviewedAt = &now
	vc.AppendActivity(domain.ActivityRejected, reviewer, reason, now)
	if err := s.caseRepo.Update(ctx, vc); err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	org.KYCStatus = domain.KYCStatusRejected
	org.IsOnboardingLocked = false
	org.IsVerified = false
	org.RejectionReason = reason
	if err := s.syncOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, org, domain.KYCStatusRejected, reason)
	logger.Info("Case rejected", "case_code", vc.CaseCode, "org_code", org.OrgCode, "reviewer", reviewer)
	return vc, nil
}

func (s *reviewService) RequestInfo(ctx context.Context, caseID int32, reviewer, message string, fields []string) (*domain.VerificationCase, error) {
	vc, org, release, err := s.loadForReview(ctx, caseID)
	if err != nil {
		return nil, err
	}
	defer release()

	if vc.Status != domain.CaseStatusSubmitted {
		return nil, fmt.Errorf("%w: cannot request info on a case in status %s", domain.ErrInvalidTransition, vc.Status)
	}

	now := time.Now().UTC()
	remarks := message
	if len(fields) > 0 {
		remarks = fmt.Sprintf("%s (fields: %s)", message, strings.Join(fields, ", "))
	}
	vc.Status = domain.CaseStatusInfoRequested
	vc.AppendActivity(domain.ActivityInfoRequested, reviewer, remarks, now)
	if err := s.caseRepo.Update(ctx, vc); err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	// Unlock so the submitter can edit the requested sections and resubmit.
	org.KYCStatus = domain.KYCStatusInfoRequested
	org.IsOnboardingLocked = false
	if err := s.syncOrganization(ctx, org); err != nil {
		return nil, err
	}

	if contact := primaryContact(org); contact != nil {
		if err := s.emailSvc.SendInfoRequest(ctx, contact.Email, contact.Name, org.LegalName, message, fields); err != nil {
			logger.Warn("Failed to send info request email", "org_code", org.OrgCode, "error", err)
		}
	}
	logger.Info("Info requested on case", "case_code", vc.CaseCode, "org_code", org.OrgCode, "reviewer", reviewer)
	return vc, nil
}

func (s *reviewService) UnlockForRevision(ctx context.Context, caseID int32, reviewer, remarks string) (*domain.VerificationCase, error) {
	vc, org, release, err := s.loadForReview(ctx, caseID)
	if err != nil {
		return nil, err
	}
	defer release()

	if org.KYCStatus != domain.KYCStatusApproved {
		return nil, fmt.Errorf("%w: organization status is %s, unlock requires %s", domain.ErrInvalidTransition, org.KYCStatus, domain.KYCStatusApproved)
	}
	if vc.Status != domain.CaseStatusApproved {
		return nil, fmt.Errorf("%w: cannot unlock a case in status %s", domain.ErrInvalidTransition, vc.Status)
	}

	now := time.Now().UTC()
	vc.Status = domain.CaseStatusRevisionRequested
	vc.AppendActivity(domain.ActivityRevisionRequested, reviewer, remarks, now)
	if err := s.caseRepo.Update(ctx, vc); err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	org.KYCStatus = domain.KYCStatusRevisionRequested
	org.IsOnboardingLocked = false
	if err := s.syncOrganization(ctx, org); err != nil {
		return nil, err
	}

	logger.Info("Organization unlocked for revision", "case_code", vc.CaseCode, "org_code", org.OrgCode, "reviewer", reviewer)
	return vc, nil
}

// AddToWatchlist annotates the case without transitioning it. Only the
// activity log changes; the organization is not touched.
func (s *reviewService) AddToWatchlist(ctx context.Context, caseID int32, reviewer, remarks string) (*domain.VerificationCase, error) {
	vc, org, release, err := s.loadForReview(ctx, caseID)
	if err != nil {
		return nil, err
	}
	defer release()

	vc.AppendActivity(domain.ActivityWatchlisted, reviewer, remarks, time.Now().UTC())
	if err := s.caseRepo.Update(ctx, vc); err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	logger.Info("Case added to watchlist", "case_code", vc.CaseCode, "org_code", org.OrgCode, "reviewer", reviewer)
	return vc, nil
}

// notifyDecision emails the organization's primary contact. Delivery is
// best-effort; a mail failure never rolls back a decision.
func (s *reviewService) notifyDecision(ctx context.Context, org *domain.Organization, status domain.KYCStatus, reason string) {
	contact := primaryContact(org)
	if contact == nil {
		return
	}
	if err := s.emailSvc.SendReviewDecision(ctx, contact.Email, contact.Name, org.LegalName, status, reason); err != nil {
		logger.Warn("Failed to send decision email", "org_code", org.OrgCode, "error", err)
	}
}

func primaryContact(org *domain.Organization) *domain.Contact {
	if org.Disclosure.Profile == nil || len(org.Disclosure.Profile.Contacts) == 0 {
		return nil
	}
	return &org.Disclosure.Profile.Contacts[0]
}
