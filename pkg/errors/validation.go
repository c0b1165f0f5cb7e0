package errors

import (
	"strings"
	"unicode"
)

// ValidateItemID validates an item identifier supplied by a client.
// IDs end up in file names, Redis keys and URL paths, so the rules are
// conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters, whitespace or path separators
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "item id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "item id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "item id contains invalid characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "item id cannot contain path separators")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateColor validates a spine colour in #rgb or #rrggbb form.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidInput, "color cannot be empty")
	}
	if !strings.HasPrefix(color, "#") || (len(color) != 4 && len(color) != 7) {
		return New(ErrCodeInvalidInput, "color must be a hex code like #fce1e4: %q", color)
	}
	for _, r := range color[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return New(ErrCodeInvalidInput, "color must be a hex code like #fce1e4: %q", color)
		}
	}
	return nil
}
