package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/benvon/taskify/internal/dates"
)

// Priority represents how urgent a task is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Filter selects a derived view of a user's tasks
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterCompleted Filter = "completed"
)

// SortKey selects the ordering of a task list
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByPriority SortKey = "priority"
	SortByStatus   SortKey = "status"
	SortByCreated  SortKey = "created"
)

// DefaultCategory is assigned when a task is created without a category.
const DefaultCategory = "personal"

// CategoryAll is the sentinel meaning "do not restrict by category".
const CategoryAll = "all"

// priorityRank orders priorities for sorting, highest first.
var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// statusRank orders statuses for sorting, completed first.
var statusRank = map[TaskStatus]int{
	TaskStatusCompleted:  0,
	TaskStatusInProgress: 1,
	TaskStatusPending:    2,
}

// Task represents one unit of work owned by a user
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsCompleted reports whether the task's status is completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsOverdue reports whether the task has a due date on a calendar day
// strictly before now's day and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return dates.BeforeDay(*t.DueDate, now) && t.Status != TaskStatusCompleted
}

// IsDueToday reports whether the task's due date falls on now's calendar
// day, regardless of status.
func (t *Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return dates.SameDay(*t.DueDate, now)
}

// PriorityRank returns the sort rank of the task's priority. Unknown
// priorities rank as zero.
func (t *Task) PriorityRank() int {
	return priorityRank[t.Priority]
}

// StatusRank returns the sort rank of the task's status. Unknown statuses
// rank after pending.
func (t *Task) StatusRank() int {
	rank, ok := statusRank[t.Status]
	if !ok {
		return len(statusRank)
	}
	return rank
}

// TaskUpdate carries a partial update for a task. A nil field means "leave
// unchanged". ClearDueDate removes the due date; it wins over DueDate so
// callers can distinguish "omitted" from "reset to none".
type TaskUpdate struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	DueDate      *time.Time  `json:"due_date,omitempty"`
	ClearDueDate bool        `json:"clear_due_date,omitempty"`
	Priority     *Priority   `json:"priority,omitempty"`
	Status       *TaskStatus `json:"status,omitempty"`
	Category     *string     `json:"category,omitempty"`
}
