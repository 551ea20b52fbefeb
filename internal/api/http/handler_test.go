package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "tradelink-backend/internal/api/http"
	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/security"
	"tradelink-backend/internal/service"
)

type mockOnboardingService struct {
	mock.Mock
}

func (m *mockOnboardingService) SaveStep(ctx context.Context, userID int32, role domain.OrgRole, step domain.Step, payload domain.Disclosure) (*domain.Organization, error) {
	args := m.Called(ctx, userID, role, step, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *mockOnboardingService) GetProgress(ctx context.Context, userID int32) (*service.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Progress), args.Error(1)
}
func (m *mockOnboardingService) Submit(ctx context.Context, userID int32, performedBy string) (*service.SubmitResult, error) {
	args := m.Called(ctx, userID, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

type mockReviewService struct {
	mock.Mock
}

func (m *mockReviewService) Approve(ctx context.Context, caseID int32, reviewer string) (*domain.VerificationCase, error) {
	args := m.Called(ctx, caseID, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}
func (m *mockReviewService) Reject(ctx context.Context, caseID int32, reviewer, reason string) (*domain.VerificationCase, error) {
	args := m.Called(ctx, caseID, reviewer, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}
func (m *mockReviewService) RequestInfo(ctx context.Context, caseID int32, reviewer, message string, fields []string) (*domain.VerificationCase, error) {
	args := m.Called(ctx, caseID, reviewer, message, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}
func (m *mockReviewService) UnlockForRevision(ctx context.Context, caseID int32, reviewer, remarks string) (*domain.VerificationCase, error) {
	args := m.Called(ctx, caseID, reviewer, remarks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}
func (m *mockReviewService) AddToWatchlist(ctx context.Context, caseID int32, reviewer, remarks string) (*domain.VerificationCase, error) {
	args := m.Called(ctx, caseID, reviewer, remarks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCase), args.Error(1)
}

type mockQueueService struct {
	mock.Mock
}

func (m *mockQueueService) Queue(ctx context.Context, filter service.QueueFilter) (*service.QueuePage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QueuePage), args.Error(1)
}
func (m *mockQueueService) CaseDetail(ctx context.Context, caseID int32) (*service.CaseDetail, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CaseDetail), args.Error(1)
}
func (m *mockQueueService) History(ctx context.Context, orgID int32) ([]domain.VerificationCase, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VerificationCase), args.Error(1)
}

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type testAPI struct {
	router        *mux.Router
	onboardingSvc *mockOnboardingService
	reviewSvc     *mockReviewService
	queueSvc      *mockQueueService
	sellerToken   string
	adminToken    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tm := security.NewTokenManager(testJWTSecret)

	sellerToken, err := tm.Generate(42, "owner@acme.example", "Asha", "SELLER", false)
	require.NoError(t, err)
	adminToken, err := tm.Generate(1, "ops@tradelink.example", "Ops", "", true)
	require.NoError(t, err)

	api := &testAPI{
		onboardingSvc: new(mockOnboardingService),
		reviewSvc:     new(mockReviewService),
		queueSvc:      new(mockQueueService),
		sellerToken:   sellerToken,
		adminToken:    adminToken,
	}
	api.router = httpapi.NewRouter(tm, api.onboardingSvc, api.reviewSvc, api.queueSvc)
	return api
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) doRaw(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do("GET", "/api/v1/onboarding/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do("GET", "/api/v1/onboarding/progress", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_NonAdminOnReviewRoutes(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do("GET", "/api/v1/admin/review/queue", api.sellerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveStep(t *testing.T) {
	api := newTestAPI(t)

	org := &domain.Organization{
		OrgCode:        "ORG-AB12CD34",
		LegalName:      "Acme Metals Pvt Ltd",
		Role:           domain.OrgRoleSeller,
		CompletedSteps: []domain.Step{domain.StepProfile, domain.StepBank},
		KYCStatus:      domain.KYCStatusDraft,
	}
	api.onboardingSvc.On("SaveStep", mock.Anything, int32(42), domain.OrgRoleSeller, domain.StepBank,
		mock.MatchedBy(func(d domain.Disclosure) bool {
			return d.Bank != nil && d.Bank.AccountNumber == "000111222333"
		})).Return(org, nil)

	rec := api.do("PUT", "/api/v1/onboarding/bank", api.sellerToken, map[string]any{
		"account_holder_name": "Acme Metals Pvt Ltd",
		"account_number":      "000111222333",
		"verification_status": "VERIFIED",
		"name_match_score":    98,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ORG-AB12CD34", resp["org_code"])
	assert.Equal(t, "compliance", resp["next_step"])
	api.onboardingSvc.AssertExpectations(t)
}

func TestSaveStep_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	rec := api.doRaw("PUT", "/api/v1/onboarding/bank", api.sellerToken, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.onboardingSvc.AssertNotCalled(t, "SaveStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveStep_LockedMapsTo423(t *testing.T) {
	api := newTestAPI(t)

	api.onboardingSvc.On("SaveStep", mock.Anything, int32(42), domain.OrgRoleSeller, domain.StepBank, mock.Anything).
		Return(nil, fmt.Errorf("%w: verification status is SUBMITTED", domain.ErrOnboardingLocked))

	rec := api.do("PUT", "/api/v1/onboarding/bank", api.sellerToken, map[string]any{})
	assert.Equal(t, http.StatusLocked, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "locked", resp["kind"])
}

func TestSubmit(t *testing.T) {
	api := newTestAPI(t)

	api.onboardingSvc.On("Submit", mock.Anything, int32(42), "owner@acme.example").
		Return(&service.SubmitResult{CaseID: 10, CaseCode: "CASE-20260829-AAAAAA", SubmissionAttempt: 1, Status: domain.CaseStatusSubmitted}, nil)

	rec := api.do("POST", "/api/v1/onboarding/submit", api.sellerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result service.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, int32(10), result.CaseID)
	assert.Equal(t, domain.CaseStatusSubmitted, result.Status)
}

func TestSubmit_MissingStepsMapsTo400(t *testing.T) {
	api := newTestAPI(t)

	api.onboardingSvc.On("Submit", mock.Anything, int32(42), "owner@acme.example").
		Return(nil, fmt.Errorf("%w: missing required steps: bank", domain.ErrInvalidArgument))

	rec := api.do("POST", "/api/v1/onboarding/submit", api.sellerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProgress(t *testing.T) {
	api := newTestAPI(t)

	api.onboardingSvc.On("GetProgress", mock.Anything, int32(42)).
		Return(&service.Progress{OrgCode: "ORG-AB12CD34", KYCStatus: domain.KYCStatusDraft, NextStep: domain.StepCompliance}, nil)

	rec := api.do("GET", "/api/v1/onboarding/progress", api.sellerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var p service.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, domain.StepCompliance, p.NextStep)
}

func TestGetProgress_NotFoundMapsTo404(t *testing.T) {
	api := newTestAPI(t)

	api.onboardingSvc.On("GetProgress", mock.Anything, int32(42)).Return(nil, domain.ErrNotFound)

	rec := api.do("GET", "/api/v1/onboarding/progress", api.sellerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminQueue(t *testing.T) {
	api := newTestAPI(t)

	api.queueSvc.On("Queue", mock.Anything, service.QueueFilter{
		Status: domain.CaseStatusSubmitted,
		Role:   domain.OrgRoleSeller,
		Search: "acme",
		Page:   2,
		Limit:  10,
	}).Return(&service.QueuePage{Items: []service.QueueItem{}, Page: 2, Limit: 10, Total: 14}, nil)

	rec := api.do("GET", "/api/v1/admin/review/queue?status=SUBMITTED&role=SELLER&search=acme&page=2&limit=10", api.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page service.QueuePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int32(14), page.Total)
	api.queueSvc.AssertExpectations(t)
}

func TestAdminApprove(t *testing.T) {
	api := newTestAPI(t)

	api.reviewSvc.On("Approve", mock.Anything, int32(10), "ops@tradelink.example").
		Return(&domain.VerificationCase{ID: 10, Status: domain.CaseStatusApproved}, nil)

	rec := api.do("POST", "/api/v1/admin/review/case/10/approve", api.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var vc domain.VerificationCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vc))
	assert.Equal(t, domain.CaseStatusApproved, vc.Status)
}

func TestAdminApprove_InvalidTransitionMapsTo409(t *testing.T) {
	api := newTestAPI(t)

	api.reviewSvc.On("Approve", mock.Anything, int32(10), "ops@tradelink.example").
		Return(nil, fmt.Errorf("%w: cannot approve a case in status APPROVED", domain.ErrInvalidTransition))

	rec := api.do("POST", "/api/v1/admin/review/case/10/approve", api.adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_transition", resp["kind"])
}

func TestAdminApprove_BadCaseID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do("POST", "/api/v1/admin/review/case/abc/approve", api.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	api.reviewSvc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminReject(t *testing.T) {
	api := newTestAPI(t)

	api.reviewSvc.On("Reject", mock.Anything, int32(10), "ops@tradelink.example", "Bank statement illegible").
		Return(&domain.VerificationCase{ID: 10, Status: domain.CaseStatusRejected}, nil)

	rec := api.do("POST", "/api/v1/admin/review/case/10/reject", api.adminToken, map[string]string{
		"reason": "Bank statement illegible",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	api.reviewSvc.AssertExpectations(t)
}

func TestAdminRequestInfo(t *testing.T) {
	api := newTestAPI(t)

	api.reviewSvc.On("RequestInfo", mock.Anything, int32(10), "ops@tradelink.example",
		"Share the branch code", []string{"bank"}).
		Return(&domain.VerificationCase{ID: 10, Status: domain.CaseStatusInfoRequested}, nil)

	rec := api.do("POST", "/api/v1/admin/review/case/10/request-info", api.adminToken, map[string]any{
		"message": "Share the branch code",
		"fields":  []string{"bank"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	api.reviewSvc.AssertExpectations(t)
}

func TestAdminWatchlist(t *testing.T) {
	api := newTestAPI(t)

	api.reviewSvc.On("AddToWatchlist", mock.Anything, int32(10), "ops@tradelink.example", "monitor").
		Return(&domain.VerificationCase{ID: 10, Status: domain.CaseStatusApproved}, nil)

	rec := api.do("POST", "/api/v1/admin/review/case/10/watchlist", api.adminToken, map[string]string{
		"remarks": "monitor",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHistory_EmptyIsJSONArray(t *testing.T) {
	api := newTestAPI(t)

	api.queueSvc.On("History", mock.Anything, int32(3)).Return([]domain.VerificationCase(nil), nil)

	rec := api.do("GET", "/api/v1/admin/review/history/3", api.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAdminCaseDetail(t *testing.T) {
	api := newTestAPI(t)

	api.queueSvc.On("CaseDetail", mock.Anything, int32(10)).Return(&service.CaseDetail{
		Case:         &domain.VerificationCase{ID: 10, Status: domain.CaseStatusSubmitted},
		Organization: &domain.Organization{ID: 3, LegalName: "Acme Metals Pvt Ltd"},
		Age:          "02:15",
	}, nil)

	rec := api.do("GET", "/api/v1/admin/review/case/10", api.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var detail service.CaseDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "02:15", detail.Age)
	assert.Equal(t, "Acme Metals Pvt Ltd", detail.Organization.LegalName)
}
