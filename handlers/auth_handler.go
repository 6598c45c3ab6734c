package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ishikisiko/match-telemetry/middleware"
	"github.com/ishikisiko/match-telemetry/services"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
	now         func() time.Time
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
		now:         time.Now,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user, h.now())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token, "user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
