package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/benvon/taskify/internal/middleware"
	"github.com/benvon/taskify/internal/models"
	"github.com/benvon/taskify/internal/tasks"
	"github.com/benvon/taskify/internal/validation"
)

const (
	// MaxTitleLength is the maximum length for task titles
	MaxTitleLength = 500
	// MaxDescriptionLength is the maximum length for task descriptions
	MaxDescriptionLength = 10000
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	engine *tasks.Engine
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(engine *tasks.Engine) *TaskHandler {
	return &TaskHandler{engine: engine}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/categories", h.ListCategories).Methods("GET")
	r.HandleFunc("/cleanup", h.Cleanup).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=500"`
	Description string  `json:"description" validate:"max=10000"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    string  `json:"priority" validate:"omitempty,task_priority"`
	Status      string  `json:"status" validate:"omitempty,task_status"`
	Category    string  `json:"category" validate:"max=100"`
}

// UpdateTaskRequest represents a partial update. A missing field means
// "leave unchanged"; due_date set to the empty string clears the due date.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=10000"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Status      *string `json:"status,omitempty" validate:"omitempty,task_status"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
}

// TaskResponse wraps a task with its derived flags for rendering
type TaskResponse struct {
	*models.Task
	IsOverdue  bool `json:"is_overdue"`
	IsDueToday bool `json:"is_due_today"`
}

// StatsResponse carries the simple completion analytics
type StatsResponse struct {
	CompletedToday int `json:"completed_today"`
	Pending        int `json:"pending"`
}

// ListTasks lists the acting user's tasks, filtered and sorted per query
// parameters (filter, category, sort).
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No acting user")
		return
	}

	filter := models.FilterAll
	if f := r.URL.Query().Get("filter"); f != "" {
		if err := validation.ValidateFilter(f); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		filter = models.Filter(f)
	}

	category := r.URL.Query().Get("category")

	sortKey := models.SortByCreated
	if s := r.URL.Query().Get("sort"); s != "" {
		if err := validation.ValidateSortKey(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sortKey = models.SortKey(s)
	}

	ctx := r.Context()
	list := h.engine.ListByUser(ctx, userID, filter, category)
	list = h.engine.Sort(list, sortKey)

	respondJSON(w, http.StatusOK, taskResponses(list))
}

// CreateTask creates a new task for the acting user
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No acting user")
		return
	}

	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	input := tasks.CreateInput{
		Title:       req.Title,
		Description: validation.SanitizeText(req.Description),
		Priority:    models.Priority(req.Priority),
		Status:      models.TaskStatus(req.Status),
		Category:    req.Category,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Invalid due_date: expected %s", dueDateLayout))
			return
		}
		input.DueDate = &due
	}

	task, err := h.engine.Create(r.Context(), userID, input)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, taskResponse(task))
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, taskResponse(task))
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	update := models.TaskUpdate{}
	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		update.Title = &title
	}
	if req.Description != nil {
		desc := validation.SanitizeText(*req.Description)
		update.Description = &desc
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			update.ClearDueDate = true
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Invalid due_date: expected %s", dueDateLayout))
				return
			}
			update.DueDate = &due
		}
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		update.Priority = &priority
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.Category != nil {
		update.Category = req.Category
	}

	updated, err := h.engine.Update(r.Context(), task.ID, update)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, taskResponse(updated))
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	if err := h.engine.Delete(r.Context(), task.ID); err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete task")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// ToggleTask flips a task between completed and pending
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ownedTask(w, r)
	if !ok {
		return
	}

	updated, err := h.engine.ToggleComplete(r.Context(), task.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to toggle task")
		return
	}

	respondJSON(w, http.StatusOK, taskResponse(updated))
}

// GetStats returns the acting user's completion analytics
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No acting user")
		return
	}

	ctx := r.Context()
	respondJSON(w, http.StatusOK, StatsResponse{
		CompletedToday: h.engine.CountCompletedToday(ctx, userID),
		Pending:        h.engine.CountPending(ctx, userID),
	})
}

// ListCategories returns the acting user's distinct categories
func (h *TaskHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No acting user")
		return
	}

	categories := h.engine.Categories(r.Context(), userID)
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// Cleanup deletes the acting user's stale completed tasks. The optional
// retention_days query parameter overrides the default retention.
func (h *TaskHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No acting user")
		return
	}

	retentionDays := 0
	if raw := r.URL.Query().Get("retention_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "retention_days must be a positive integer")
			return
		}
		retentionDays = parsed
	}

	deleted, err := h.engine.CleanupStale(r.Context(), userID, retentionDays)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clean up tasks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// ownedTask parses the path id, loads the task, and verifies ownership,
// writing the error response itself on failure.
func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "No acting user")
		return nil, false
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return nil, false
	}

	task, err := h.engine.Get(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return nil, false
	}

	if task.UserID != userID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Task does not belong to user")
		return nil, false
	}

	return task, true
}

func taskResponse(task *models.Task) TaskResponse {
	now := timeNow()
	return TaskResponse{
		Task:       task,
		IsOverdue:  task.IsOverdue(now),
		IsDueToday: task.IsDueToday(now),
	}
}

func taskResponses(list []*models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(list))
	for _, task := range list {
		responses = append(responses, taskResponse(task))
	}
	return responses
}
