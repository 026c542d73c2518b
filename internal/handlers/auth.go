package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/benvon/taskify/internal/identity"
	"github.com/benvon/taskify/internal/validation"
)

// AuthHandler handles registration, login and session requests
type AuthHandler struct {
	ids *identity.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(ids *identity.Store) *AuthHandler {
	return &AuthHandler{ids: ids}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /api/v1/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name is required and cannot be empty after sanitization")
		return
	}

	ctx := r.Context()
	session, err := h.ids.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateAccount) {
			respondJSONError(w, http.StatusConflict, "Conflict", "Email already registered")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to register")
		return
	}

	if err := h.ids.SetCurrentSession(ctx, session); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to persist session")
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// Login verifies credentials and records the session pointer
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	ctx := r.Context()
	session, err := h.ids.Login(ctx, req.Email, req.Password)
	if err != nil {
		// Deliberately the same message for unknown email and wrong secret
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	if err := h.ids.SetCurrentSession(ctx, session); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to persist session")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Logout clears the current-session pointer
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.ids.Logout(r.Context()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"logged_out": true})
}

// GetMe returns the current session, if any
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session, err := h.ids.CurrentSession(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load session")
		return
	}
	if session == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No active session")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// decodeBody decodes a JSON request body, writing the error response itself
// and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// validateStruct runs the shared validator, writing the error response
// itself and returning false on failure.
func validateStruct(w http.ResponseWriter, v any) bool {
	if err := validation.Validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", validationErrors[0].Error()))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}
