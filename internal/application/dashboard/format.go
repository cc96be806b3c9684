package dashboard

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
)

const (
	// EmptyValue marks a cell with nothing to show.
	EmptyValue = "—"
	// FinishedPlaceholder is shown for finished scans that report no tokens.
	FinishedPlaceholder = "~1,200"
	// ApproxPrefix marks a token figure that may include an estimate.
	ApproxPrefix = "~"
	// InvalidDate mirrors what browsers print for unparsable timestamps.
	InvalidDate = "Invalid Date"
)

// createdAtLayouts covers what the backend has been seen to send: RFC 3339
// with or without zone, and Python's isoformat with a space separator.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// displayLayout is the en-US toLocaleString shape.
const displayLayout = "1/2/2006, 3:04:05 PM"

// FormatNumber renders n with thousands separators.
func FormatNumber(n int) string {
	return humanize.Comma(int64(n))
}

// FormatApprox renders a positive token figure as "~1,234", otherwise the
// empty marker.
func FormatApprox(n int) string {
	if n > 0 {
		return ApproxPrefix + FormatNumber(n)
	}
	return EmptyValue
}

// FormatTokensUsed is the token cell of the scan history table.
func FormatTokensUsed(s scans.ScanResult) string {
	if s.TokensUsed > 0 {
		return FormatNumber(s.TokensUsed)
	}
	if s.Status.Finished() {
		return FinishedPlaceholder
	}
	return EmptyValue
}

// StatusClass is the style key derived from the status.
func StatusClass(status scans.Status) string {
	return "status-" + strings.ToLower(string(status))
}

// FormatCreatedAt parses the backend timestamp and renders it in loc.
// Timestamps without a zone are read as UTC.
func FormatCreatedAt(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.In(loc).Format(displayLayout)
		}
	}
	return InvalidDate
}
