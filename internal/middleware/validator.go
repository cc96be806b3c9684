package middleware

import (
	"fmt"
	"strconv"
	"strings"
)

// Input validation and sanitization utilities

// SanitizeString removes control characters and surrounding whitespace
// from a form value.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ParseScanID validates a scan id taken from the URL path.
func ParseScanID(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("scan ID cannot be empty")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scan ID format: %q", raw)
	}
	return id, nil
}
