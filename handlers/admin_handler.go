package handlers

import (
	"errors"
	"net/http"

	"github.com/ishikisiko/match-telemetry/services"
)

const maxMatchesPerRequest = 100

type AdminHandler struct {
	generatorService    services.GeneratorService
	regenerationService services.TTDRegenerationService
	defaultOwner        string
}

func NewAdminHandler(generatorService services.GeneratorService, regenerationService services.TTDRegenerationService, defaultOwner string) *AdminHandler {
	return &AdminHandler{
		generatorService:    generatorService,
		regenerationService: regenerationService,
		defaultOwner:        defaultOwner,
	}
}

func (h *AdminHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input services.GenerateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.OwnerKey == "" {
		input.OwnerKey = h.defaultOwner
	}
	if input.Matches > maxMatchesPerRequest {
		badRequestResponse(w, r, errors.New("at most 100 matches can be generated per request"))
		return
	}

	report, err := h.generatorService.Generate(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type regenerateInput struct {
	OwnerKey string `json:"owner"`
	Seed     int64  `json:"seed"`
}

func (h *AdminHandler) RegenerateTTD(w http.ResponseWriter, r *http.Request) {
	var input regenerateInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	if input.OwnerKey == "" {
		input.OwnerKey = h.defaultOwner
	}

	report, err := h.regenerationService.RegenerateRoundLevel(r.Context(), input.OwnerKey, input.Seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
