package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/repository"
	"tradelink-backend/internal/risk"
)

type reviewQueueService struct {
	caseRepo repository.VerificationCaseRepository
	orgRepo  repository.OrganizationRepository
}

func NewReviewQueueService(
	caseRepo repository.VerificationCaseRepository,
	orgRepo repository.OrganizationRepository,
) ReviewQueueService {
	return &reviewQueueService{
		caseRepo: caseRepo,
		orgRepo:  orgRepo,
	}
}

const defaultQueuePageSize = 20

// Queue builds one page of the review dashboard: the latest case per
// organization, hydrated with the owning organization and filtered by role
// and name search after the page is cut. The total comes from the
// organization collection filtered by role only, so it is an upper bound
// whenever role/search filters combine with the paged grouping.
func (s *reviewQueueService) Queue(ctx context.Context, filter QueueFilter) (*QueuePage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultQueuePageSize
	}

	cases, err := s.caseRepo.ListLatestPerOrg(ctx, filter.Status, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue cases: %w", err)
	}

	now := time.Now().UTC()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	items := make([]QueueItem, 0, len(cases))
	for i := range cases {
		vc := &cases[i]
		org, err := s.orgRepo.GetByID(ctx, vc.OrgID)
		if err != nil {
			// A case whose organization vanished is unreviewable; skip it
			// rather than failing the whole page.
			continue
		}
		if filter.Role != "" && org.Role != filter.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(org.LegalName), search) {
			continue
		}
		items = append(items, QueueItem{
			CaseID:            vc.ID,
			CaseCode:          vc.CaseCode,
			SubmissionAttempt: vc.SubmissionAttempt,
			OrganizationID:    org.ID,
			OrganizationName:  org.LegalName,
			Role:              org.Role,
			Status:            vc.Status,
			RiskLevel:         risk.Assess(vc.SubmittedData).Level,
			Age:               FormatAge(now.Sub(vc.CreatedOn)),
		})
	}

	total, err := s.orgRepo.CountByRole(ctx, filter.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to count organizations: %w", err)
	}

	return &QueuePage{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *reviewQueueService) CaseDetail(ctx context.Context, caseID int32) (*CaseDetail, error) {
	vc, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, vc.OrgID)
	if err != nil {
		return nil, err
	}

	var watchlist []domain.ActivityEntry
	for _, e := range vc.ActivityLog {
		if e.Action == domain.ActivityWatchlisted {
			watchlist = append(watchlist, e)
		}
	}

	return &CaseDetail{
		Case:         vc,
		Organization: org,
		AutoChecks:   risk.AutoChecks(vc.SubmittedData),
		Risk:         risk.Assess(vc.SubmittedData),
		Watchlist:    watchlist,
		Age:          FormatAge(time.Now().UTC().Sub(vc.CreatedOn)),
	}, nil
}

// History returns every case for the organization, newest attempt first.
func (s *reviewQueueService) History(ctx context.Context, orgID int32) ([]domain.VerificationCase, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.caseRepo.ListByOrg(ctx, orgID)
}
