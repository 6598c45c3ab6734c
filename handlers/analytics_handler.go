package handlers

import (
	"net/http"

	"github.com/ishikisiko/match-telemetry/middleware"
	"github.com/ishikisiko/match-telemetry/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Summary reports K/D, performance score and win rate over the caller's
// recent window.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	summary, err := h.analyticsService.Summary(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
