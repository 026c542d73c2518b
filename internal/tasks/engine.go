// Package tasks implements the task engine: CRUD, derived views
// (filtering, sorting, categories, counts) and retention cleanup over a
// user's tasks, mirrored in memory and persisted whole to the store.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/taskify/internal/dates"
	"github.com/benvon/taskify/internal/models"
	"github.com/benvon/taskify/internal/storage"
)

// ErrTaskNotFound is returned when an operation references an absent task id.
var ErrTaskNotFound = errors.New("task not found")

// DefaultRetentionDays is how long completed tasks are kept before
// CleanupStale removes them.
const DefaultRetentionDays = 10

// Engine owns the task table. It loads the table from the store once at
// construction and rewrites the whole table on every mutation. The clock is
// injectable so day-boundary behavior is testable.
type Engine struct {
	mu     sync.RWMutex
	store  storage.Store
	logger *zap.Logger
	tasks  map[uuid.UUID]*models.Task
	now    func() time.Time
}

// NewEngine creates an engine backed by store, loading any persisted tasks.
func NewEngine(ctx context.Context, store storage.Store, logger *zap.Logger) (*Engine, error) {
	e := &Engine{
		store:  store,
		logger: logger,
		tasks:  make(map[uuid.UUID]*models.Task),
		now:    time.Now,
	}
	if err := e.load(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// load rehydrates the task table from the store.
func (e *Engine) load(ctx context.Context) error {
	raw, found, err := e.store.Get(ctx, storage.KeyTasks)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if !found || raw == "" {
		return nil
	}

	var table map[uuid.UUID]*models.Task
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return fmt.Errorf("failed to parse task table: %w", err)
	}
	e.tasks = table
	return nil
}

// persist writes the full task table back to the store. Caller must hold e.mu.
func (e *Engine) persist(ctx context.Context) error {
	data, err := json.Marshal(e.tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal task table: %w", err)
	}
	if err := e.store.Set(ctx, storage.KeyTasks, string(data)); err != nil {
		return fmt.Errorf("failed to persist tasks: %w", err)
	}
	return nil
}

// CreateInput carries the attributes for a new task. Zero values fall back
// to the defaults (medium priority, pending status, "personal" category).
type CreateInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    models.Priority
	Status      models.TaskStatus
	Category    string
}

// Create constructs and persists a new task for userId.
func (e *Engine) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	task := &models.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Status:      input.Status,
		Category:    strings.ToLower(input.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Category == "" {
		task.Category = models.DefaultCategory
	}

	e.tasks[task.ID] = task
	if err := e.persist(ctx); err != nil {
		delete(e.tasks, task.ID)
		return nil, err
	}

	e.logger.Debug("task_created",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return task, nil
}

// Get returns the task with the given id.
func (e *Engine) Get(_ context.Context, taskID uuid.UUID) (*models.Task, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	task, ok := e.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// Update overlays the supplied fields onto the task and bumps UpdatedAt.
// Omitted (nil) fields are left unchanged.
func (e *Engine) Update(ctx context.Context, taskID uuid.UUID, update models.TaskUpdate) (*models.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, ok := e.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}

	prev := *task
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.ClearDueDate {
		task.DueDate = nil
	} else if update.DueDate != nil {
		due := *update.DueDate
		task.DueDate = &due
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Category != nil {
		task.Category = strings.ToLower(*update.Category)
	}
	task.UpdatedAt = e.now()

	if err := e.persist(ctx); err != nil {
		*task = prev
		return nil, err
	}

	copied := *task
	return &copied, nil
}

// Delete removes the task with the given id.
func (e *Engine) Delete(ctx context.Context, taskID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, ok := e.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	delete(e.tasks, taskID)
	if err := e.persist(ctx); err != nil {
		e.tasks[taskID] = task
		return err
	}
	return nil
}

// ToggleComplete flips a task between completed and pending.
func (e *Engine) ToggleComplete(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	status := models.TaskStatusCompleted
	e.mu.RLock()
	if task, ok := e.tasks[taskID]; ok && task.IsCompleted() {
		status = models.TaskStatusPending
	}
	e.mu.RUnlock()
	return e.Update(ctx, taskID, models.TaskUpdate{Status: &status})
}

// ListByUser returns userId's tasks restricted by category (unless empty or
// "all") and then by filter. The result order is unspecified; pass it to
// Sort for a rendering-ready sequence.
func (e *Engine) ListByUser(_ context.Context, userID uuid.UUID, filter models.Filter, category string) []*models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	var result []*models.Task
	for _, task := range e.tasks {
		if task.UserID != userID {
			continue
		}
		if category != "" && category != models.CategoryAll && task.Category != category {
			continue
		}
		switch filter {
		case models.FilterToday:
			if !task.IsDueToday(now) {
				continue
			}
		case models.FilterUpcoming:
			if task.DueDate == nil || task.IsCompleted() {
				continue
			}
			if dates.BeforeDay(*task.DueDate, now) {
				continue
			}
		case models.FilterCompleted:
			if !task.IsCompleted() {
				continue
			}
		}
		copied := *task
		result = append(result, &copied)
	}
	return result
}

// Sort returns a new slice ordered by key; the input is never mutated.
// Equal keys keep their input order.
func (e *Engine) Sort(tasks []*models.Task, key models.SortKey) []*models.Task {
	sorted := make([]*models.Task, len(tasks))
	copy(sorted, tasks)

	switch key {
	case models.SortByDate:
		// Tasks without a due date sort after every dated task.
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].DueDate, sorted[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case models.SortByPriority:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PriorityRank() > sorted[j].PriorityRank()
		})
	case models.SortByStatus:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StatusRank() < sorted[j].StatusRank()
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})
	}
	return sorted
}

// CountCompletedToday counts userId's completed tasks whose UpdatedAt falls
// on today's calendar day. UpdatedAt stands in for a completion timestamp,
// so a completed task edited today counts too.
func (e *Engine) CountCompletedToday(_ context.Context, userID uuid.UUID) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	count := 0
	for _, task := range e.tasks {
		if task.UserID != userID || !task.IsCompleted() {
			continue
		}
		if dates.SameDay(task.UpdatedAt, now) {
			count++
		}
	}
	return count
}

// CountPending counts userId's tasks that are not completed.
func (e *Engine) CountPending(_ context.Context, userID uuid.UUID) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	count := 0
	for _, task := range e.tasks {
		if task.UserID == userID && !task.IsCompleted() {
			count++
		}
	}
	return count
}

// Categories returns the distinct category values across userId's tasks,
// in no particular order.
func (e *Engine) Categories(_ context.Context, userID uuid.UUID) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[string]struct{})
	var categories []string
	for _, task := range e.tasks {
		if task.UserID != userID {
			continue
		}
		if _, ok := seen[task.Category]; ok {
			continue
		}
		seen[task.Category] = struct{}{}
		categories = append(categories, task.Category)
	}
	return categories
}

// UserIDs returns every distinct owner id present in the task table. The
// periodic retention sweep uses it to know whose tasks to clean.
func (e *Engine) UserIDs(_ context.Context) []uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, task := range e.tasks {
		if _, ok := seen[task.UserID]; ok {
			continue
		}
		seen[task.UserID] = struct{}{}
		ids = append(ids, task.UserID)
	}
	return ids
}

// CleanupStale deletes userId's completed tasks whose UpdatedAt is strictly
// older than retentionDays before now and returns how many were deleted.
// retentionDays <= 0 falls back to DefaultRetentionDays.
func (e *Engine) CleanupStale(ctx context.Context, userID uuid.UUID, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := dates.DaysAgo(e.now(), retentionDays)
	var stale []uuid.UUID
	for id, task := range e.tasks {
		if task.UserID != userID || !task.IsCompleted() {
			continue
		}
		if task.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	removed := make(map[uuid.UUID]*models.Task, len(stale))
	for _, id := range stale {
		removed[id] = e.tasks[id]
		delete(e.tasks, id)
	}
	if err := e.persist(ctx); err != nil {
		for id, task := range removed {
			e.tasks[id] = task
		}
		return 0, err
	}

	e.logger.Info("stale_tasks_cleaned",
		zap.String("user_id", userID.String()),
		zap.Int("deleted", len(stale)),
		zap.Int("retention_days", retentionDays),
	)
	return len(stale), nil
}
