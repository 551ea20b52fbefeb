package repository

import (
	"context"
	"time"

	"tradelink-backend/internal/domain"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id int32) (*domain.Organization, error)
	GetByOwner(ctx context.Context, userID int32) (*domain.Organization, error)
	Update(ctx context.Context, org *domain.Organization) error

	// FindByTaxIdentifiers returns any organization other than excludeOrgID
	// that already carries one of the given unique identifiers. Empty
	// identifiers are ignored.
	FindByTaxIdentifiers(ctx context.Context, taxRegistration, identityNumber string, excludeOrgID int32) (*domain.Organization, error)

	// CountByRole counts organizations, optionally filtered by role. Feeds
	// the queue's total figure.
	CountByRole(ctx context.Context, role domain.OrgRole) (int32, error)
}

type VerificationCaseRepository interface {
	Create(ctx context.Context, c *domain.VerificationCase) error
	GetByID(ctx context.Context, id int32) (*domain.VerificationCase, error)
	Update(ctx context.Context, c *domain.VerificationCase) error

	// CountByOrg returns how many cases exist for the organization; the
	// next submission attempt is count+1.
	CountByOrg(ctx context.Context, orgID int32) (int32, error)

	// LatestByOrg returns the case with the highest submission attempt.
	LatestByOrg(ctx context.Context, orgID int32) (*domain.VerificationCase, error)

	// ListByOrg returns the organization's full case history in descending
	// submission-attempt order.
	ListByOrg(ctx context.Context, orgID int32) ([]domain.VerificationCase, error)

	// ListLatestPerOrg returns one page of the review queue: the
	// most-recently-created case per organization, optionally filtered by
	// status before grouping.
	ListLatestPerOrg(ctx context.Context, status domain.CaseStatus, page, pageSize int32) ([]domain.VerificationCase, error)

	// ListSubmittedBefore returns cases still awaiting review that were
	// created before the cutoff. Used by the reminder job.
	ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]domain.VerificationCase, error)
}
