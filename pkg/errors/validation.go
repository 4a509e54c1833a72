package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxColumnNameLength bounds column names; BRO identifiers are 15 characters.
const maxColumnNameLength = 256

// ValidateColumnName validates a column name for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidColumn, "column name cannot be empty")
	}

	if len(name) > maxColumnNameLength {
		return New(ErrCodeInvalidColumn, "column name too long (max %d characters)", maxColumnNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidColumn, "column name %q contains invalid control characters", name)
		}
	}

	return nil
}

// ValidateCoordinate rejects NaN and infinite coordinates.
// The label names the offending value in the message (e.g. "column CPT01 x").
func ValidateCoordinate(label string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s is not a finite number", label)
	}
	return nil
}

// ValidatePath validates a file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
