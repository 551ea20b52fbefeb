package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/repository"
)

type organizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

const orgColumns = `id, org_code, owner_user_id, legal_name, role, disclosure, completed_steps,
	kyc_status, is_onboarding_locked, is_verified,
	COALESCE(rejection_reason, ''), COALESCE(approved_by, ''), approved_at, created_on, updated_on`

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	disclosure, steps, err := marshalOrgDocs(org)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	org.CreatedOn = now
	org.UpdatedOn = now

	query := `INSERT INTO organizations
		(org_code, owner_user_id, legal_name, role, disclosure, completed_steps,
		 kyc_status, is_onboarding_locked, is_verified, rejection_reason, approved_by, approved_at,
		 created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		org.OrgCode, org.OwnerUserID, org.LegalName, org.Role, disclosure, steps,
		org.KYCStatus, org.IsOnboardingLocked, org.IsVerified, org.RejectionReason,
		org.ApprovedBy, org.ApprovedAt, org.CreatedOn, org.UpdatedOn,
	).Scan(&org.ID)
}

func (r *organizationRepository) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = $1`
	return r.scanOrg(r.db.QueryRowContext(ctx, query, id))
}

func (r *organizationRepository) GetByOwner(ctx context.Context, userID int32) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE owner_user_id = $1`
	return r.scanOrg(r.db.QueryRowContext(ctx, query, userID))
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	disclosure, steps, err := marshalOrgDocs(org)
	if err != nil {
		return err
	}

	org.UpdatedOn = time.Now().UTC()

	query := `UPDATE organizations SET
		legal_name = $1, role = $2, disclosure = $3, completed_steps = $4,
		kyc_status = $5, is_onboarding_locked = $6, is_verified = $7,
		rejection_reason = NULLIF($8, ''), approved_by = NULLIF($9, ''), approved_at = $10,
		updated_on = $11
		WHERE id = $12`
	res, err := r.db.ExecContext(ctx, query,
		org.LegalName, org.Role, disclosure, steps,
		org.KYCStatus, org.IsOnboardingLocked, org.IsVerified,
		org.RejectionReason, org.ApprovedBy, org.ApprovedAt,
		org.UpdatedOn, org.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByTaxIdentifiers matches against the profile section of the
// disclosure document. Returns (nil, nil) when no other organization
// carries either identifier.
func (r *organizationRepository) FindByTaxIdentifiers(ctx context.Context, taxRegistration, identityNumber string, excludeOrgID int32) (*domain.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations
		WHERE id <> $1 AND (
			($2 <> '' AND disclosure->'profile'->>'tax_registration_number' = $2) OR
			($3 <> '' AND disclosure->'profile'->>'identity_number' = $3))
		LIMIT 1`
	org, err := r.scanOrg(r.db.QueryRowContext(ctx, query, excludeOrgID, taxRegistration, identityNumber))
	if err == domain.ErrNotFound {
		return nil, nil
	}
	return org, err
}

func (r *organizationRepository) CountByRole(ctx context.Context, role domain.OrgRole) (int32, error) {
	var count int32
	var err error
	if role == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations WHERE role = $1`, role).Scan(&count)
	}
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *organizationRepository) scanOrg(row rowScanner) (*domain.Organization, error) {
	org := &domain.Organization{}
	var disclosure, steps []byte
	var approvedAt sql.NullTime

	err := row.Scan(
		&org.ID, &org.OrgCode, &org.OwnerUserID, &org.LegalName, &org.Role,
		&disclosure, &steps,
		&org.KYCStatus, &org.IsOnboardingLocked, &org.IsVerified,
		&org.RejectionReason, &org.ApprovedBy, &approvedAt,
		&org.CreatedOn, &org.UpdatedOn,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		org.ApprovedAt = &t
	}
	if err := json.Unmarshal(disclosure, &org.Disclosure); err != nil {
		return nil, fmt.Errorf("failed to decode disclosure document: %w", err)
	}
	if err := json.Unmarshal(steps, &org.CompletedSteps); err != nil {
		return nil, fmt.Errorf("failed to decode completed steps: %w", err)
	}
	return org, nil
}

func marshalOrgDocs(org *domain.Organization) ([]byte, []byte, error) {
	disclosure, err := json.Marshal(org.Disclosure)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode disclosure document: %w", err)
	}
	if org.CompletedSteps == nil {
		org.CompletedSteps = []domain.Step{}
	}
	steps, err := json.Marshal(org.CompletedSteps)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode completed steps: %w", err)
	}
	return disclosure, steps, nil
}
