package social

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cinevibe/cinevibe/internal/apperr"
)

const (
	// MaxContentLength bounds review and comment bodies, in runes.
	MaxContentLength = 1000
	MinRating        = 1
	MaxRating        = 10
)

// ValidateContent trims s and rejects empty or over-long bodies.
func ValidateContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("content cannot be empty")
	}
	if n := utf8.RuneCountInString(s); n > MaxContentLength {
		return "", apperr.Validation(fmt.Sprintf("content is %d characters, max %d", n, MaxContentLength))
	}
	return s, nil
}

func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return apperr.Validation(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	return nil
}

func validateID(id int64, what string) error {
	if id <= 0 {
		return apperr.Validation(what + " id is required")
	}
	return nil
}

func validateKey(id, what string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation(what + " id is required")
	}
	return nil
}
