package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds item identifiers accepted from files and URLs.
const maxIDLength = 128

// ValidateDimension checks that a frame dimension is a finite, positive number.
// name is used in the message ("width", "height").
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidDimensions, "%s must be a finite number, got %v", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidDimensions, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateWeight checks that an item weight is finite and non-negative.
// Zero is allowed: zero-weight items simply occupy no area.
func ValidateWeight(id string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidWeight, "item %q: weight must be a finite number, got %v", id, w)
	}
	if w < 0 {
		return New(ErrCodeInvalidWeight, "item %q: weight must not be negative, got %v", id, w)
	}
	return nil
}

// ValidateID validates an item identifier for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path separators (identifiers end up in URLs and cache keys)
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "item id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "item id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "item id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "item id cannot contain path separators: %q", id)
	}
	return nil
}
