package entity

import (
	"fmt"
	"net/url"
)

// ValidateURL accepts absolute http(s) URLs and the about:, file: and data:
// schemes browsers load directly.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidURL, rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
		}
	case "about", "file", "data":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
