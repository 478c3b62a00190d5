package feedparse

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const snippetMaxRunes = 150

var stripPolicy = bluemonday.StrictPolicy()

// Snippet strips all HTML from the given body and bounds it to 150
// characters, appending an ellipsis only when truncation occurred.
func Snippet(body string) string {
	text := stripPolicy.Sanitize(body)
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= snippetMaxRunes {
		return text
	}
	return string(runes[:snippetMaxRunes]) + "..."
}
