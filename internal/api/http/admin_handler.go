package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/service"
)

// AdminReviewHandler exposes the review queue and case transitions.
type AdminReviewHandler struct {
	reviewSvc service.ReviewService
	queueSvc  service.ReviewQueueService
}

func NewAdminReviewHandler(reviewSvc service.ReviewService, queueSvc service.ReviewQueueService) *AdminReviewHandler {
	return &AdminReviewHandler{
		reviewSvc: reviewSvc,
		queueSvc:  queueSvc,
	}
}

// Queue handles GET /admin/review/queue?status=&role=&search=&page=&limit=.
func (h *AdminReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.QueueFilter{
		Status: domain.CaseStatus(q.Get("status")),
		Role:   domain.OrgRole(q.Get("role")),
		Search: q.Get("search"),
	}
	if v, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil {
		filter.Page = int32(v)
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil {
		filter.Limit = int32(v)
	}

	page, err := h.queueSvc.Queue(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CaseDetail handles GET /admin/review/case/{caseId}.
func (h *AdminReviewHandler) CaseDetail(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathID(r, "caseId")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.queueSvc.CaseDetail(r.Context(), caseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// History handles GET /admin/review/history/{organizationId}.
func (h *AdminReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, "organizationId")
	if err != nil {
		writeError(w, err)
		return
	}

	cases, err := h.queueSvc.History(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cases == nil {
		cases = []domain.VerificationCase{}
	}
	writeJSON(w, http.StatusOK, cases)
}

type reviewActionRequest struct {
	Reason  string   `json:"reason,omitempty"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Remarks string   `json:"remarks,omitempty"`
}

// Approve handles POST /admin/review/case/{caseId}/approve.
func (h *AdminReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(caseID int32, reviewer string, _ reviewActionRequest) (*domain.VerificationCase, error) {
		return h.reviewSvc.Approve(r.Context(), caseID, reviewer)
	})
}

// Reject handles POST /admin/review/case/{caseId}/reject.
func (h *AdminReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(caseID int32, reviewer string, body reviewActionRequest) (*domain.VerificationCase, error) {
		return h.reviewSvc.Reject(r.Context(), caseID, reviewer, body.Reason)
	})
}

// RequestInfo handles POST /admin/review/case/{caseId}/request-info.
func (h *AdminReviewHandler) RequestInfo(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(caseID int32, reviewer string, body reviewActionRequest) (*domain.VerificationCase, error) {
		return h.reviewSvc.RequestInfo(r.Context(), caseID, reviewer, body.Message, body.Fields)
	})
}

// Unlock handles POST /admin/review/case/{caseId}/unlock.
func (h *AdminReviewHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(caseID int32, reviewer string, body reviewActionRequest) (*domain.VerificationCase, error) {
		return h.reviewSvc.UnlockForRevision(r.Context(), caseID, reviewer, body.Remarks)
	})
}

// Watchlist handles POST /admin/review/case/{caseId}/watchlist.
func (h *AdminReviewHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(caseID int32, reviewer string, body reviewActionRequest) (*domain.VerificationCase, error) {
		return h.reviewSvc.AddToWatchlist(r.Context(), caseID, reviewer, body.Remarks)
	})
}

func (h *AdminReviewHandler) runAction(w http.ResponseWriter, r *http.Request, action func(int32, string, reviewActionRequest) (*domain.VerificationCase, error)) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	caseID, err := pathID(r, "caseId")
	if err != nil {
		writeError(w, err)
		return
	}

	var body reviewActionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidArgument, err))
			return
		}
	}

	reviewer := claims.Email
	if reviewer == "" {
		reviewer = claims.Subject
	}

	vc, err := action(caseID, reviewer, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vc)
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrInvalidArgument, name, raw)
	}
	return int32(id), nil
}
