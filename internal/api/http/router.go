package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tradelink-backend/internal/security"
	"tradelink-backend/internal/service"
)

// NewRouter wires the full HTTP surface.
func NewRouter(
	tokenManager security.TokenManager,
	onboardingSvc service.OnboardingService,
	reviewSvc service.ReviewService,
	queueSvc service.ReviewQueueService,
) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokenManager))

	onboarding := NewOnboardingHandler(onboardingSvc)
	api.HandleFunc("/onboarding/submit", onboarding.Submit).Methods("POST")
	api.HandleFunc("/onboarding/progress", onboarding.GetProgress).Methods("GET")
	api.HandleFunc("/onboarding/{step}", onboarding.SaveStep).Methods("PUT")

	admin := NewAdminReviewHandler(reviewSvc, queueSvc)
	adminRoutes := api.PathPrefix("/admin/review").Subrouter()
	adminRoutes.Use(RequireAdmin)
	adminRoutes.HandleFunc("/queue", admin.Queue).Methods("GET")
	adminRoutes.HandleFunc("/case/{caseId}", admin.CaseDetail).Methods("GET")
	adminRoutes.HandleFunc("/case/{caseId}/approve", admin.Approve).Methods("POST")
	adminRoutes.HandleFunc("/case/{caseId}/reject", admin.Reject).Methods("POST")
	adminRoutes.HandleFunc("/case/{caseId}/request-info", admin.RequestInfo).Methods("POST")
	adminRoutes.HandleFunc("/case/{caseId}/unlock", admin.Unlock).Methods("POST")
	adminRoutes.HandleFunc("/case/{caseId}/watchlist", admin.Watchlist).Methods("POST")
	adminRoutes.HandleFunc("/history/{organizationId}", admin.History).Methods("GET")

	return r
}
