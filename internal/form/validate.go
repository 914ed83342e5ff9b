package form

import (
	"net/url"
	"strings"
)

// Validate сообщает, является ли input абсолютным http(s) URL.
func Validate(input string) bool {
	return validateInput(input) == nil
}

func validateInput(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ErrEmptyInput
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}
