package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"tradelink-backend/internal/domain"
	"tradelink-backend/internal/service"
)

// OnboardingHandler exposes the disclosure step engine over HTTP.
type OnboardingHandler struct {
	onboardingSvc service.OnboardingService
}

func NewOnboardingHandler(onboardingSvc service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingSvc: onboardingSvc}
}

type stepResponse struct {
	OrgCode        string           `json:"org_code"`
	LegalName      string           `json:"legal_name"`
	Role           domain.OrgRole   `json:"role"`
	CompletedSteps []domain.Step    `json:"completed_steps"`
	NextStep       domain.Step      `json:"next_step,omitempty"`
	KYCStatus      domain.KYCStatus `json:"kyc_status"`
}

// SaveStep handles PUT /onboarding/{step}. The body is the step's section
// payload; the section is replaced wholesale.
func (h *OnboardingHandler) SaveStep(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	step := domain.Step(mux.Vars(r)["step"])
	payload, err := decodeStepPayload(r, step)
	if err != nil {
		writeError(w, err)
		return
	}

	org, err := h.onboardingSvc.SaveStep(r.Context(), claims.UserID, domain.OrgRole(claims.OrgRole), step, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stepResponse{
		OrgCode:        org.OrgCode,
		LegalName:      org.LegalName,
		Role:           org.Role,
		CompletedSteps: org.CompletedSteps,
		NextStep:       domain.NextStep(org),
		KYCStatus:      org.KYCStatus,
	})
}

// decodeStepPayload parses the request body into the section the step
// fills. Unknown steps fall through to the service, which rejects them.
func decodeStepPayload(r *http.Request, step domain.Step) (domain.Disclosure, error) {
	var payload domain.Disclosure
	var err error

	dec := json.NewDecoder(r.Body)
	switch step {
	case domain.StepProfile:
		var v domain.KYCProfile
		if err = dec.Decode(&v); err == nil {
			payload.Profile = &v
		}
	case domain.StepBank:
		var v domain.BankDetails
		if err = dec.Decode(&v); err == nil {
			payload.Bank = &v
		}
	case domain.StepCompliance:
		var v domain.ComplianceInfo
		if err = dec.Decode(&v); err == nil {
			payload.Compliance = &v
		}
	case domain.StepPreferences:
		var v domain.BuyerPreferences
		if err = dec.Decode(&v); err == nil {
			payload.Preferences = &v
		}
	case domain.StepCatalog:
		var v domain.SellerCatalog
		if err = dec.Decode(&v); err == nil {
			payload.Catalog = &v
		}
	case domain.StepFleetCompliance:
		var v domain.FleetCompliance
		if err = dec.Decode(&v); err == nil {
			payload.Fleet = &v
		}
	}
	if err != nil {
		return domain.Disclosure{}, fmt.Errorf("%w: malformed payload: %v", domain.ErrInvalidArgument, err)
	}
	return payload, nil
}

// Submit handles POST /onboarding/submit.
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	result, err := h.onboardingSvc.Submit(r.Context(), claims.UserID, claims.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetProgress handles GET /onboarding/progress.
func (h *OnboardingHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	progress, err := h.onboardingSvc.GetProgress(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
