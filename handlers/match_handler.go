package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ishikisiko/match-telemetry/middleware"
	"github.com/ishikisiko/match-telemetry/services"
)

type MatchHandler struct {
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewMatchHandler(analyticsService services.AnalyticsService, exportService services.ExportService) *MatchHandler {
	return &MatchHandler{analyticsService: analyticsService, exportService: exportService}
}

// ListMatches returns the caller's most recent matches, newest first.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid limit %q", raw))
			return
		}
	}

	matches, err := h.analyticsService.RecentMatches(r.Context(), userID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches, "limit": services.ClampLimit(limit)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.matchRequest(w, r)
	if !ok {
		return
	}

	detail, err := h.analyticsService.MatchDetail(r.Context(), userID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, detail, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetTTDCurve(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.matchRequest(w, r)
	if !ok {
		return
	}

	curve, err := h.analyticsService.TTDCurve(r.Context(), userID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, curve, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ExportMatch(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := h.matchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.exportService.ExportMatch(r.Context(), userID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) matchRequest(w http.ResponseWriter, r *http.Request) (userID, matchID int, ok bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, 0, false
	}
	matchID, err = readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return userID, matchID, true
}
