package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/taskify/internal/identity"
	"github.com/benvon/taskify/internal/storage"
)

func newSessionMiddleware(t *testing.T) (func(http.Handler) http.Handler, *identity.Store) {
	t.Helper()
	ids, err := identity.NewStore(context.Background(), storage.NewMemStore(), zap.NewNop())
	if err != nil {
		t.Fatalf("identity.NewStore failed: %v", err)
	}
	return Session(ids), ids
}

func TestSession_HeaderWins(t *testing.T) {
	t.Parallel()

	mw, _ := newSessionMiddleware(t)
	want := uuid.New()

	var got uuid.UUID
	var ok bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-User", want.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || got != want {
		t.Errorf("expected user id %s from header, got (%s, %v)", want, got, ok)
	}
}

func TestSession_InvalidHeaderRejected(t *testing.T) {
	t.Parallel()

	mw, _ := newSessionMiddleware(t)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a malformed header")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Session-User", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSession_FallsBackToPersistedPointer(t *testing.T) {
	t.Parallel()

	mw, ids := newSessionMiddleware(t)
	ctx := context.Background()

	session, err := ids.Register(ctx, "Ann", "ann@x.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := ids.SetCurrentSession(ctx, session); err != nil {
		t.Fatalf("SetCurrentSession failed: %v", err)
	}

	var got uuid.UUID
	var ok bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if !ok || got != session.ID {
		t.Errorf("expected persisted session user %s, got (%s, %v)", session.ID, got, ok)
	}
}

func TestSession_AnonymousWhenNothingSet(t *testing.T) {
	t.Parallel()

	mw, _ := newSessionMiddleware(t)

	var ok bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = UserIDFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if ok {
		t.Error("expected no user id for an anonymous request")
	}
}
