package errors

import (
	"strings"
	"unicode"
)

// MaxTitleLength bounds quiz titles.
const MaxTitleLength = 200

// ValidateID validates a quiz or component identifier.
// IDs end up in URLs, cache keys and file names, so the rules are
// conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - Only letters, digits, '-' and '_'
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "id too long (max 128 characters)")
	}

	for _, r := range id {
		if r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return New(ErrCodeInvalidID, "id contains invalid character %q", r)
	}

	return nil
}

// ValidateTitle validates a quiz title.
// Titles are free text but must be non-blank and free of control characters.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "title cannot be empty")
	}

	if len(title) > MaxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", MaxTitleLength)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}

	return nil
}
