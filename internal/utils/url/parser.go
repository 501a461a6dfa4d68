package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/law-makers/datalayer/internal/engine"
)

// ValidateURL checks that urlStr is an absolute http(s) URL with a host.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrInvalidURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", engine.ErrInvalidURL, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", engine.ErrInvalidURL)
	}

	return nil
}

// Normalize trims raw, assumes https when no scheme is given, and validates
// the result.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", engine.ErrMissingURL
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "//") {
		raw = "https://" + raw
	}
	if err := ValidateURL(raw); err != nil {
		return "", err
	}
	return raw, nil
}
