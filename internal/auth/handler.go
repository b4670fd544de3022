package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

const minPasswordLen = 8

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerPayload struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (p registerPayload) validate() string {
	switch {
	case !strings.Contains(p.Email, "@"):
		return "a valid email is required"
	case len(p.Password) < minPasswordLen:
		return "password must be at least 8 characters"
	case strings.TrimSpace(p.DisplayName) == "":
		return "displayName is required"
	}
	return ""
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := in.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	creds, err := h.service.Register(r.Context(), in.Email, in.Password, in.DisplayName)
	switch {
	case errors.Is(err, ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered")
	case err != nil:
		slog.Error("register failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respond(w, http.StatusCreated, creds)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Email == "" || in.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	creds, err := h.service.Login(r.Context(), in.Email, in.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respond(w, http.StatusOK, creds)
	}
}

// Me returns the account behind the bearer token. Mounted behind
// AuthMiddleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Account(r.Context(), UserIDFromContext(r.Context()))
	switch {
	case errors.Is(err, ErrUnknownAccount):
		respondError(w, http.StatusNotFound, "account not found")
	case err != nil:
		slog.Error("account lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respond(w, http.StatusOK, account)
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}
