package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/benvon/taskify/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("task_priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register task_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_filter", validateFilter); err != nil {
		panic(fmt.Sprintf("failed to register task_filter validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_sort", validateSortKey); err != nil {
		panic(fmt.Sprintf("failed to register task_sort validator: %v", err))
	}
}

// validatePriority validates that a string is a valid Priority enum value
func validatePriority(fl validator.FieldLevel) bool {
	switch models.Priority(fl.Field().String()) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	default:
		return false
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	switch models.TaskStatus(fl.Field().String()) {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// validateFilter validates that a string is a valid Filter value
func validateFilter(fl validator.FieldLevel) bool {
	switch models.Filter(fl.Field().String()) {
	case models.FilterAll, models.FilterToday, models.FilterUpcoming, models.FilterCompleted:
		return true
	default:
		return false
	}
}

// validateSortKey validates that a string is a valid SortKey value
func validateSortKey(fl validator.FieldLevel) bool {
	switch models.SortKey(fl.Field().String()) {
	case models.SortByDate, models.SortByPriority, models.SortByStatus, models.SortByCreated:
		return true
	default:
		return false
	}
}

// ValidatePriority validates a priority query/body value
func ValidatePriority(value string) error {
	if err := Validate.Var(value, "task_priority"); err != nil {
		return fmt.Errorf("invalid priority: must be one of low, medium, high")
	}
	return nil
}

// ValidateTaskStatus validates a status query/body value
func ValidateTaskStatus(value string) error {
	if err := Validate.Var(value, "task_status"); err != nil {
		return fmt.Errorf("invalid status: must be one of pending, in-progress, completed")
	}
	return nil
}

// ValidateFilter validates a filter query value
func ValidateFilter(value string) error {
	if err := Validate.Var(value, "task_filter"); err != nil {
		return fmt.Errorf("invalid filter: must be one of all, today, upcoming, completed")
	}
	return nil
}

// ValidateSortKey validates a sort query value
func ValidateSortKey(value string) error {
	if err := Validate.Var(value, "task_sort"); err != nil {
		return fmt.Errorf("invalid sort: must be one of date, priority, status, created")
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing
// control characters except newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}
