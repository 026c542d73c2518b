package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestAuthHandler_RegisterLoginFlow(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec, envelope := api.do(t, "POST", "/api/v1/auth/register", uuid.Nil, map[string]any{
		"name":     "Ann",
		"email":    "ann@x.com",
		"password": "pw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"pw"`) {
		t.Error("register response leaked the secret")
	}
	if dataField(t, envelope)["email"] != "ann@x.com" {
		t.Errorf("unexpected register response: %v", envelope)
	}

	rec, _ = api.do(t, "POST", "/api/v1/auth/register", uuid.Nil, map[string]any{
		"name":     "Ann2",
		"email":    "ann@x.com",
		"password": "pw2",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
	}

	rec, _ = api.do(t, "POST", "/api/v1/auth/login", uuid.Nil, map[string]any{
		"email":    "ann@x.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec, envelope = api.do(t, "POST", "/api/v1/auth/login", uuid.Nil, map[string]any{
		"email":    "ann@x.com",
		"password": "pw",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if dataField(t, envelope)["name"] != "Ann" {
		t.Errorf("unexpected login response: %v", envelope)
	}
}

func TestAuthHandler_UnknownEmailSameErrorAsWrongSecret(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.do(t, "POST", "/api/v1/auth/register", uuid.Nil, map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw",
	})

	recUnknown, envUnknown := api.do(t, "POST", "/api/v1/auth/login", uuid.Nil, map[string]any{
		"email": "nobody@x.com", "password": "pw",
	})
	recWrong, envWrong := api.do(t, "POST", "/api/v1/auth/login", uuid.Nil, map[string]any{
		"email": "ann@x.com", "password": "wrong",
	})

	if recUnknown.Code != recWrong.Code {
		t.Errorf("status codes differ: %d vs %d", recUnknown.Code, recWrong.Code)
	}
	if envUnknown["message"] != envWrong["message"] {
		t.Error("error messages should not reveal whether the email exists")
	}
}

func TestAuthHandler_SessionPointer(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec, _ := api.do(t, "GET", "/api/v1/auth/me", uuid.Nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 before login, got %d", rec.Code)
	}

	api.do(t, "POST", "/api/v1/auth/register", uuid.Nil, map[string]any{
		"name": "Ann", "email": "ann@x.com", "password": "pw",
	})

	// Registration signs the account in.
	rec, envelope := api.do(t, "GET", "/api/v1/auth/me", uuid.Nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after register, got %d", rec.Code)
	}
	if dataField(t, envelope)["email"] != "ann@x.com" {
		t.Errorf("unexpected session: %v", envelope)
	}

	rec, _ = api.do(t, "POST", "/api/v1/auth/logout", uuid.Nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", rec.Code)
	}
	rec, _ = api.do(t, "GET", "/api/v1/auth/me", uuid.Nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"email": "a@x.com", "password": "pw"}},
		{"bad email", map[string]any{"name": "A", "email": "not-an-email", "password": "pw"}},
		{"missing password", map[string]any{"name": "A", "email": "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := api.do(t, "POST", "/api/v1/auth/register", uuid.Nil, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}
