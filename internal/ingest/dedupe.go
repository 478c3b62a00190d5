package ingest

import (
	"net/url"
	"strings"
)

// Query parameters stripped before comparing links across feeds. These are
// tracking decorations that vary per syndication channel without changing
// the underlying story.
var trackedQueryParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"source":       true,
	"cmpid":        true,
	"ocid":         true,
	"ftag":         true,
}

// DedupeKey derives the merge-set membership key: the normalized link, or
// the lowercased trimmed title when the link is absent or unparseable.
func DedupeKey(link, title string) string {
	if key := normalizeLink(link); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(title))
}

// normalizeLink strips tracking query parameters and the trailing slash so
// the same story syndicated with different decorations collapses to one key.
func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return ""
	}

	q := parsed.Query()
	for param := range q {
		if trackedQueryParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	parsed.RawQuery = q.Encode()
	parsed.Fragment = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host) + parsed.Path + queryTail(parsed.RawQuery)
}

func queryTail(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	return "?" + rawQuery
}
