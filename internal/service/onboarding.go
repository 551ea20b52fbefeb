package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/idgen"
	"tradelink-backend/internal/logger"
	"tradelink-backend/internal/repository"
)

type onboardingService struct {
	orgRepo  repository.OrganizationRepository
	caseRepo repository.VerificationCaseRepository
	locks    *OrgLocks
}

func NewOnboardingService(
	orgRepo repository.OrganizationRepository,
	caseRepo repository.VerificationCaseRepository,
	locks *OrgLocks,
) OnboardingService {
	return &onboardingService{
		orgRepo:  orgRepo,
		caseRepo: caseRepo,
		locks:    locks,
	}
}

func (s *onboardingService) SaveStep(ctx context.Context, userID int32, role domain.OrgRole, step domain.Step, payload domain.Disclosure) (*domain.Organization, error) {
	if !domain.ValidStep(step) {
		return nil, fmt.Errorf("%w: unknown step %q", domain.ErrInvalidArgument, step)
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidArgument, role)
	}
	if required := domain.StepRequiredRole(step); required != "" && required != role {
		return nil, fmt.Errorf("%w: step %q requires role %s", domain.ErrRoleMismatch, step, required)
	}

	org, err := s.resolveOrg(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(orgKey(org.ID))
	defer release()

	// Re-read under the lock so a concurrent submit cannot slip between
	// the resolve and the write.
	org, err = s.orgRepo.GetByID(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if org.IsOnboardingLocked {
		return nil, fmt.Errorf("%w: verification status is %s", domain.ErrOnboardingLocked, org.KYCStatus)
	}
	if org.Role != role {
		return nil, fmt.Errorf("%w: organization is registered as %s", domain.ErrRoleMismatch, org.Role)
	}

	if err := s.applyStep(ctx, org, step, payload); err != nil {
		return nil, err
	}

	org.MarkStepCompleted(step)
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	logger.Info("Onboarding step saved", "org_code", org.OrgCode, "step", step)
	return org, nil
}

// resolveOrg finds the caller's organization, creating an empty one on the
// first step write. Creation is serialized per user so two concurrent first
// writes cannot both create.
func (s *onboardingService) resolveOrg(ctx context.Context, userID int32, role domain.OrgRole) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByOwner(ctx, userID)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	release := s.locks.acquire(userKey(userID))
	defer release()

	org, err = s.orgRepo.GetByOwner(ctx, userID)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	org = &domain.Organization{
		OrgCode:     idgen.OrgCode(),
		OwnerUserID: userID,
		Role:        role,
		KYCStatus:   domain.KYCStatusDraft,
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	logger.Info("Organization created", "org_code", org.OrgCode, "role", role)
	return org, nil
}

// applyStep replaces the step's disclosure section wholesale. It never
// merges field-by-field: resubmitting a step overwrites the whole section.
func (s *onboardingService) applyStep(ctx context.Context, org *domain.Organization, step domain.Step, payload domain.Disclosure) error {
	switch step {
	case domain.StepProfile:
		if payload.Profile == nil {
			return fmt.Errorf("%w: profile payload is required", domain.ErrInvalidArgument)
		}
		if err := s.checkUniqueIdentifiers(ctx, org.ID, payload.Profile); err != nil {
			return err
		}
		org.Disclosure.Profile = payload.Profile
		org.LegalName = payload.Profile.LegalName
	case domain.StepBank:
		if payload.Bank == nil {
			return fmt.Errorf("%w: bank payload is required", domain.ErrInvalidArgument)
		}
		org.Disclosure.Bank = payload.Bank
	case domain.StepCompliance:
		if payload.Compliance == nil {
			return fmt.Errorf("%w: compliance payload is required", domain.ErrInvalidArgument)
		}
		org.Disclosure.Compliance = payload.Compliance
	case domain.StepPreferences:
		if payload.Preferences == nil {
			return fmt.Errorf("%w: preferences payload is required", domain.ErrInvalidArgument)
		}
		org.Disclosure.Preferences = payload.Preferences
	case domain.StepCatalog:
		if payload.Catalog == nil {
			return fmt.Errorf("%w: catalog payload is required", domain.ErrInvalidArgument)
		}
		org.Disclosure.Catalog = payload.Catalog
	case domain.StepFleetCompliance:
		if payload.Fleet == nil {
			return fmt.Errorf("%w: fleet payload is required", domain.ErrInvalidArgument)
		}
		org.Disclosure.Fleet = payload.Fleet
	}
	return nil
}

// checkUniqueIdentifiers enforces cross-organization uniqueness of tax
// identifiers before anything is written.
func (s *onboardingService) checkUniqueIdentifiers(ctx context.Context, orgID int32, profile *domain.KYCProfile) error {
	other, err := s.orgRepo.FindByTaxIdentifiers(ctx, profile.TaxRegistrationNumber, profile.IdentityNumber, orgID)
	if err != nil {
		return fmt.Errorf("failed to check identifier uniqueness: %w", err)
	}
	if other != nil {
		return fmt.Errorf("%w: tax identifier already registered to another organization", domain.ErrConflict)
	}
	return nil
}

func (s *onboardingService) GetProgress(ctx context.Context, userID int32) (*Progress, error) {
	org, err := s.orgRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := org.CompletedSteps
	if completed == nil {
		completed = []domain.Step{}
	}
	return &Progress{
		OrgCode:            org.OrgCode,
		CompletedSteps:     completed,
		RequiredSteps:      domain.RequiredSteps(org.Role),
		NextStep:           domain.NextStep(org),
		KYCStatus:          org.KYCStatus,
		IsOnboardingLocked: org.IsOnboardingLocked,
		RejectionReason:    org.RejectionReason,
	}, nil
}

func (s *onboardingService) Submit(ctx context.Context, userID int32, performedBy string) (*SubmitResult, error) {
	org, err := s.orgRepo.GetByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(orgKey(org.ID))
	defer release()

	org, err = s.orgRepo.GetByID(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if org.IsOnboardingLocked {
		return nil, fmt.Errorf("%w: verification status is %s", domain.ErrOnboardingLocked, org.KYCStatus)
	}
	if missing := domain.MissingSteps(org); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		return nil, fmt.Errorf("%w: missing required steps: %s", domain.ErrInvalidArgument, strings.Join(names, ", "))
	}

	now := time.Now().UTC()
	var vc *domain.VerificationCase

	if org.KYCStatus == domain.KYCStatusInfoRequested {
		// Resubmission after an info request reopens the same case with a
		// fresh snapshot; the attempt number does not advance.
		vc, err = s.caseRepo.LatestByOrg(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest case: %w", err)
		}
		if vc.Status != domain.CaseStatusInfoRequested {
			return nil, fmt.Errorf("%w: latest case is %s, expected %s", domain.ErrInvalidTransition, vc.Status, domain.CaseStatusInfoRequested)
		}
		vc.SubmittedData = org.Disclosure.Clone()
		vc.Status = domain.CaseStatusSubmitted
		vc.AppendActivity(domain.ActivityResubmitted, performedBy, "Requested information provided", now)
		if err := s.caseRepo.Update(ctx, vc); err != nil {
			return nil, fmt.Errorf("failed to update case: %w", err)
		}
	} else {
		count, err := s.caseRepo.CountByOrg(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count cases: %w", err)
		}
		vc = &domain.VerificationCase{
			CaseCode:          idgen.CaseCode(),
			OrgID:             org.ID,
			SubmissionAttempt: count + 1,
			SubmittedData:     org.Disclosure.Clone(),
			Status:            domain.CaseStatusSubmitted,
		}
		vc.AppendActivity(domain.ActivitySubmitted, performedBy, "Onboarding submitted for review", now)
		if err := s.caseRepo.Create(ctx, vc); err != nil {
			return nil, fmt.Errorf("failed to create case: %w", err)
		}
	}

	org.KYCStatus = domain.KYCStatusSubmitted
	org.IsOnboardingLocked = true
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	logger.Info("Onboarding submitted", "org_code", org.OrgCode, "case_code", vc.CaseCode, "attempt", vc.SubmissionAttempt)
	return &SubmitResult{
		CaseID:            vc.ID,
		CaseCode:          vc.CaseCode,
		SubmissionAttempt: vc.SubmissionAttempt,
		Status:            vc.Status,
	}, nil
}
