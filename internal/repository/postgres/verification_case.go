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

type verificationCaseRepository struct {
	db *sql.DB
}

func NewVerificationCaseRepository(db *sql.DB) repository.VerificationCaseRepository {
	return &verificationCaseRepository{db: db}
}

const caseColumns = `id, case_code, org_id, submission_attempt, submitted_data, status, activity_log,
	COALESCE(rejection_reason, ''), COALESCE(reviewed_by, ''), reviewed_at, created_on, updated_on`

func (r *verificationCaseRepository) Create(ctx context.Context, c *domain.VerificationCase) error {
	data, activity, err := marshalCaseDocs(c)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	c.CreatedOn = now
	c.UpdatedOn = now

	query := `INSERT INTO verification_cases
		(case_code, org_id, submission_attempt, submitted_data, status, activity_log,
		 rejection_reason, reviewed_by, reviewed_at, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		c.CaseCode, c.OrgID, c.SubmissionAttempt, data, c.Status, activity,
		c.RejectionReason, c.ReviewedBy, c.ReviewedAt, c.CreatedOn, c.UpdatedOn,
	).Scan(&c.ID)
}

func (r *verificationCaseRepository) GetByID(ctx context.Context, id int32) (*domain.VerificationCase, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE id = $1`
	return r.scanCase(r.db.QueryRowContext(ctx, query, id))
}

func (r *verificationCaseRepository) Update(ctx context.Context, c *domain.VerificationCase) error {
	data, activity, err := marshalCaseDocs(c)
	if err != nil {
		return err
	}

	c.UpdatedOn = time.Now().UTC()

	query := `UPDATE verification_cases SET
		submitted_data = $1, status = $2, activity_log = $3,
		rejection_reason = NULLIF($4, ''), reviewed_by = NULLIF($5, ''), reviewed_at = $6,
		updated_on = $7
		WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		data, c.Status, activity,
		c.RejectionReason, c.ReviewedBy, c.ReviewedAt,
		c.UpdatedOn, c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *verificationCaseRepository) CountByOrg(ctx context.Context, orgID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verification_cases WHERE org_id = $1`, orgID).Scan(&count)
	return count, err
}

func (r *verificationCaseRepository) LatestByOrg(ctx context.Context, orgID int32) (*domain.VerificationCase, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases
		WHERE org_id = $1
		ORDER BY submission_attempt DESC
		LIMIT 1`
	return r.scanCase(r.db.QueryRowContext(ctx, query, orgID))
}

func (r *verificationCaseRepository) ListByOrg(ctx context.Context, orgID int32) ([]domain.VerificationCase, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases
		WHERE org_id = $1
		ORDER BY submission_attempt DESC`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectCases(rows)
}

func (r *verificationCaseRepository) ListLatestPerOrg(ctx context.Context, status domain.CaseStatus, page, pageSize int32) ([]domain.VerificationCase, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	// The status filter applies before grouping, so an organization whose
	// latest case is REJECTED still surfaces its most recent SUBMITTED case
	// under a SUBMITTED filter. This mirrors the queue's documented shape.
	var rows *sql.Rows
	var err error
	if status == "" {
		query := `SELECT ` + caseColumns + ` FROM (
			SELECT DISTINCT ON (org_id) * FROM verification_cases
			ORDER BY org_id, created_on DESC
		) latest
		ORDER BY created_on DESC
		LIMIT $1 OFFSET $2`
		rows, err = r.db.QueryContext(ctx, query, pageSize, offset)
	} else {
		query := `SELECT ` + caseColumns + ` FROM (
			SELECT DISTINCT ON (org_id) * FROM verification_cases
			WHERE status = $1
			ORDER BY org_id, created_on DESC
		) latest
		ORDER BY created_on DESC
		LIMIT $2 OFFSET $3`
		rows, err = r.db.QueryContext(ctx, query, status, pageSize, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectCases(rows)
}

func (r *verificationCaseRepository) ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]domain.VerificationCase, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases
		WHERE status = $1 AND created_on < $2
		ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.CaseStatusSubmitted, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectCases(rows)
}

func (r *verificationCaseRepository) scanCase(row rowScanner) (*domain.VerificationCase, error) {
	c := &domain.VerificationCase{}
	var data, activity []byte
	var reviewedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.CaseCode, &c.OrgID, &c.SubmissionAttempt,
		&data, &c.Status, &activity,
		&c.RejectionReason, &c.ReviewedBy, &reviewedAt,
		&c.CreatedOn, &c.UpdatedOn,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		c.ReviewedAt = &t
	}
	if err := json.Unmarshal(data, &c.SubmittedData); err != nil {
		return nil, fmt.Errorf("failed to decode submitted data: %w", err)
	}
	if err := json.Unmarshal(activity, &c.ActivityLog); err != nil {
		return nil, fmt.Errorf("failed to decode activity log: %w", err)
	}
	return c, nil
}

func (r *verificationCaseRepository) collectCases(rows *sql.Rows) ([]domain.VerificationCase, error) {
	var cases []domain.VerificationCase
	for rows.Next() {
		c, err := r.scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

func marshalCaseDocs(c *domain.VerificationCase) ([]byte, []byte, error) {
	data, err := json.Marshal(c.SubmittedData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode submitted data: %w", err)
	}
	if c.ActivityLog == nil {
		c.ActivityLog = []domain.ActivityEntry{}
	}
	activity, err := json.Marshal(c.ActivityLog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode activity log: %w", err)
	}
	return data, activity, nil
}
