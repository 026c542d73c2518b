package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestTaskHandler_CreateAndGet(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	rec, envelope := api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{
		"title":    "buy milk",
		"due_date": "2030-06-15",
		"priority": "high",
		"category": "Errands",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	data := dataField(t, envelope)
	if data["title"] != "buy milk" {
		t.Errorf("unexpected title %v", data["title"])
	}
	if data["priority"] != "high" {
		t.Errorf("unexpected priority %v", data["priority"])
	}
	if data["category"] != "errands" {
		t.Errorf("expected category lowercased, got %v", data["category"])
	}
	if data["status"] != "pending" {
		t.Errorf("expected default status pending, got %v", data["status"])
	}

	id := taskID(t, envelope)
	rec, envelope = api.do(t, "GET", "/api/v1/tasks/"+id.String(), userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if dataField(t, envelope)["title"] != "buy milk" {
		t.Error("GET returned a different task")
	}
}

func TestTaskHandler_CreateValidation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"priority": "high"}},
		{"bad priority", map[string]any{"title": "x", "priority": "urgent"}},
		{"bad status", map[string]any{"title": "x", "status": "done"}},
		{"bad due date", map[string]any{"title": "x", "due_date": "next tuesday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := api.do(t, "POST", "/api/v1/tasks", userID, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTaskHandler_RequiresActingUser(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec, _ := api.do(t, "GET", "/api/v1/tasks", uuid.Nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session, got %d", rec.Code)
	}
}

func TestTaskHandler_UpdatePartial(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	_, envelope := api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{
		"title":    "original",
		"due_date": "2030-06-15",
	})
	id := taskID(t, envelope)

	// Only the title changes; the due date must survive.
	rec, envelope := api.do(t, "PATCH", "/api/v1/tasks/"+id.String(), userID, map[string]any{
		"title": "renamed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := dataField(t, envelope)
	if data["title"] != "renamed" {
		t.Errorf("expected renamed title, got %v", data["title"])
	}
	if data["due_date"] == nil {
		t.Error("omitted due_date was cleared by a partial update")
	}

	// An empty due_date clears it.
	rec, envelope = api.do(t, "PATCH", "/api/v1/tasks/"+id.String(), userID, map[string]any{
		"due_date": "",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if dataField(t, envelope)["due_date"] != nil {
		t.Error("empty due_date should clear the due date")
	}
}

func TestTaskHandler_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	owner := uuid.New()
	stranger := uuid.New()

	_, envelope := api.do(t, "POST", "/api/v1/tasks", owner, map[string]any{"title": "mine"})
	id := taskID(t, envelope)

	rec, _ := api.do(t, "GET", "/api/v1/tasks/"+id.String(), stranger, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another user's task, got %d", rec.Code)
	}
	rec, _ = api.do(t, "DELETE", "/api/v1/tasks/"+id.String(), stranger, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 deleting another user's task, got %d", rec.Code)
	}
}

func TestTaskHandler_NotFound(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	rec, _ := api.do(t, "GET", "/api/v1/tasks/"+uuid.NewString(), userID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	rec, _ = api.do(t, "GET", "/api/v1/tasks/not-a-uuid", userID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestTaskHandler_ListFilterAndSort(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "low", "priority": "low"})
	api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "high", "priority": "high"})
	api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "done", "status": "completed", "category": "work"})

	rec, envelope := api.do(t, "GET", "/api/v1/tasks?sort=priority", userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list, ok := envelope["data"].([]any)
	if !ok || len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %v", envelope["data"])
	}
	first, _ := list[0].(map[string]any)
	if first["title"] != "high" {
		t.Errorf("priority sort should put the high task first, got %v", first["title"])
	}

	rec, envelope = api.do(t, "GET", "/api/v1/tasks?filter=completed", userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list, _ = envelope["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 completed task, got %d", len(list))
	}

	rec, _ = api.do(t, "GET", "/api/v1/tasks?filter=bogus", userID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown filter, got %d", rec.Code)
	}
	rec, _ = api.do(t, "GET", "/api/v1/tasks?sort=bogus", userID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown sort, got %d", rec.Code)
	}
}

func TestTaskHandler_StatsAndCategories(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "a", "category": "work"})
	api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "b", "category": "work"})
	api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "c", "status": "completed", "category": "errands"})

	rec, envelope := api.do(t, "GET", "/api/v1/tasks/stats", userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataField(t, envelope)
	if data["pending"] != float64(2) {
		t.Errorf("expected 2 pending, got %v", data["pending"])
	}
	if data["completed_today"] != float64(1) {
		t.Errorf("expected 1 completed today, got %v", data["completed_today"])
	}

	rec, envelope = api.do(t, "GET", "/api/v1/tasks/categories", userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	categories, _ := envelope["data"].([]any)
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %v", categories)
	}
}

func TestTaskHandler_Toggle(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	_, envelope := api.do(t, "POST", "/api/v1/tasks", userID, map[string]any{"title": "flip"})
	id := taskID(t, envelope)

	rec, envelope := api.do(t, "POST", fmt.Sprintf("/api/v1/tasks/%s/toggle", id), userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if dataField(t, envelope)["status"] != "completed" {
		t.Errorf("expected completed after toggle, got %v", dataField(t, envelope)["status"])
	}
}

func TestTaskHandler_Cleanup(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	userID := uuid.New()

	rec, envelope := api.do(t, "POST", "/api/v1/tasks/cleanup", userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if dataField(t, envelope)["deleted"] != float64(0) {
		t.Errorf("expected 0 deleted on empty table, got %v", envelope)
	}

	rec, _ = api.do(t, "POST", "/api/v1/tasks/cleanup?retention_days=-1", userID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative retention, got %d", rec.Code)
	}
}
