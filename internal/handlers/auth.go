package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"library-loan-tracker/internal/identity"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	gate *identity.Gate
	log  *zap.Logger
}

func NewAuthHandler(gate *identity.Gate, log *zap.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, log: log}
}

type registerRequest struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	PhotoURL *string `json:"photoUrl"`
}

// Register creates a borrower account (POST /auth/register).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	borrower, err := h.gate.RegisterBorrower(r.Context(), identity.Registration{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, borrower)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token      string        `json:"token"`
	Role       identity.Role `json:"role"`
	BorrowerID string        `json:"borrowerId,omitempty"`
	Name       string        `json:"name"`
}

// Login authenticates a username/password pair and returns a session token
// (POST /auth/login).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	id, token, err := h.gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:      token,
		Role:       id.Role,
		BorrowerID: id.BorrowerID,
		Name:       id.Name,
	})
}

// Logout ends the session (POST /auth/logout). Sessions live in the
// client-held token, so the server side has nothing to tear down.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the resolved identity of the current caller (GET /auth/me).
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "no active session", Code: "UNAUTHENTICATED"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"role":       id.Role,
		"borrowerId": id.BorrowerID,
		"name":       id.Name,
	})
}
