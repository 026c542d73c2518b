package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxErrorMessageLength is the maximum length for error messages in logs
	MaxErrorMessageLength = 1000
)

// SanitizePath sanitizes a URL path for safe logging: validates UTF-8,
// strips control characters, truncates to MaxPathLength.
func SanitizePath(path string) string {
	return sanitize(path, MaxPathLength)
}

// SanitizeError sanitizes an error message for safe logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error(), MaxErrorMessageLength)
}

func sanitize(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	s = builder.String()

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}
