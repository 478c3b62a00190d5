package feedparse

import (
	"strings"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

// Layouts seen across real feeds, tried in order. RFC1123 variants dominate
// RSS; RFC3339 dominates Atom.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate converts a feed-supplied date string to the canonical ISO
// form. Empty or unparsable input falls back to now, an approximation that
// can misorder undated articles within a pass.
func NormalizeDate(raw string, now func() time.Time) string {
	if now == nil {
		now = time.Now
	}

	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC().Format(domain.ISOLayout)
			}
		}
	}

	return now().UTC().Format(domain.ISOLayout)
}
