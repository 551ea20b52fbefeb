package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tradelink-backend/internal/domain"
)

// MockOrganizationRepo
type MockOrganizationRepo struct {
	mock.Mock
}

func (m *MockOrganizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}
func (m *MockOrganizationRepo) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrganizationRepo) GetByOwner(ctx context.Context, userID int32) (*domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrganizationRepo) Update(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}
func (m *MockOrganizationRepo) FindByTaxIdentifiers(ctx context.Context, taxRegistration, identityNumber string, excludeOrgID int32) (*domain.Organization, error) {
	args := m.Called(ctx, taxRegistration, identityNumber, excludeOrgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrganizationRepo) CountByRole(ctx context.Context, role domain.OrgRole) (int32, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int32), args.Error(1)
}

// MockVerificationCaseRepo
type MockVerificationCaseRepo struct {
	mock.Mock
}

func (m *MockVerificationCaseRepo) Create(ctx context.Context, c *domain.VerificationCase) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockVerificationCaseRepo) GetByID(ctx context.Context, id int32) (*domain.VerificationCase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}
func (m *MockVerificationCaseRepo) Update(ctx context.Context, c *domain.VerificationCase) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockVerificationCaseRepo) CountByOrg(ctx context.Context, orgID int32) (int32, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockVerificationCaseRepo) LatestByOrg(ctx context.Context, orgID int32) (*domain.VerificationCase, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}
func (m *MockVerificationCaseRepo) ListByOrg(ctx context.Context, orgID int32) ([]domain.VerificationCase, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VerificationCase), args.Error(1)
}
func (m *MockVerificationCaseRepo) ListLatestPerOrg(ctx context.Context, status domain.CaseStatus, page, pageSize int32) ([]domain.VerificationCase, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VerificationCase), args.Error(1)
}
func (m *MockVerificationCaseRepo) ListSubmittedBefore(ctx context.Context, cutoff time.Time) ([]domain.VerificationCase, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VerificationCase), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReviewDecision(ctx context.Context, email, name, orgName string, status domain.KYCStatus, reason string) error {
	args := m.Called(ctx, email, name, orgName, status, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendInfoRequest(ctx context.Context, email, name, orgName, message string, fields []string) error {
	args := m.Called(ctx, email, name, orgName, message, fields)
	return args.Error(0)
}
func (m *MockEmailService) SendPendingReviewDigest(ctx context.Context, email string, caseCodes []string) error {
	args := m.Called(ctx, email, caseCodes)
	return args.Error(0)
}
