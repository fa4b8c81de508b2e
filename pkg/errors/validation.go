package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// codeRegex matches World Bank economy and region codes ("USA", "ECS", "WLD").
var codeRegex = regexp.MustCompile(`^[A-Z0-9]{2,3}$`)

// ValidateCode validates a node code received from users (query strings,
// TUI input). An empty code is valid and means the root of the hierarchy.
func ValidateCode(code string) error {
	if code == "" {
		return nil
	}
	if !codeRegex.MatchString(code) {
		return New(ErrCodeInvalidInput, "invalid node code: %q", code)
	}
	return nil
}

// ValidateURL validates a data source URL. Only http and https are fetched.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// IsURL reports whether a data source refers to a remote location.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ValidateWidth validates a requested frame width in pixels.
func ValidateWidth(width float64) error {
	const maxWidth = 16384
	if width <= 0 {
		return New(ErrCodeInvalidInput, "width must be positive, got %g", width)
	}
	if width > maxWidth {
		return New(ErrCodeInvalidInput, "width too large (max %d)", maxWidth)
	}
	return nil
}

// ValidateSource validates a local data or font file path.
func ValidateSource(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
