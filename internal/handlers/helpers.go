package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONError sends a JSON error response
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if len(message) > 200 {
		message = message[:200] + "..."
	}

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// dueDateLayout is the wire format for due dates: a calendar date with no
// time component, interpreted in the server's local time zone.
const dueDateLayout = "2006-01-02"

func parseDueDate(value string) (time.Time, error) {
	return time.ParseInLocation(dueDateLayout, value, time.Local)
}

var timeNow = time.Now
