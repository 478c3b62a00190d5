package feedparse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExcludedImagePattern filters tracker, ad, pixel and emoji URLs from the
// inline-image scan. Heuristic and hand-tuned; override as configuration,
// not by editing the resolution logic.
var ExcludedImagePattern = regexp.MustCompile(`(?i)(doubleclick|feedburner|pixel|tracker|advert|banner|emoji|badge|1x1|spacer|\.svg(\?|$))`)

// MediaRef is one thumbnail candidate with its declared MIME type.
type MediaRef struct {
	URL  string
	Type string
}

// MediaSignals carries every thumbnail source one entry can offer.
type MediaSignals struct {
	MediaContents   []MediaRef
	Enclosures      []MediaRef
	MediaThumbnails []MediaRef
	HTML            string
}

// ResolveThumbnail walks the extraction ladder in strict priority order:
// media:content, then image enclosures, then media:thumbnail, then the
// first acceptable <img> in the HTML body. At every stage a GIF beats any
// static image already found; otherwise the first hit wins.
func ResolveThumbnail(sig MediaSignals) string {
	thumb := ""

	consider := func(u string) bool {
		u = strings.TrimSpace(u)
		if u == "" {
			return false
		}
		switch {
		case thumb == "":
			thumb = u
		case IsGIF(u) && !IsGIF(thumb):
			thumb = u
		}
		return IsGIF(thumb)
	}

	for _, ref := range sig.MediaContents {
		if ref.Type == "" || strings.HasPrefix(ref.Type, "image/") {
			if consider(ref.URL) {
				return thumb
			}
		}
	}
	for _, ref := range sig.Enclosures {
		if strings.HasPrefix(ref.Type, "image/") {
			if consider(ref.URL) {
				return thumb
			}
		}
	}
	for _, ref := range sig.MediaThumbnails {
		if consider(ref.URL) {
			return thumb
		}
	}
	if src := scanInlineImage(sig.HTML); src != "" {
		consider(src)
	}

	return thumb
}

// scanInlineImage returns the first <img src> in the HTML body that does not
// match the exclusion pattern.
func scanInlineImage(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	found := ""
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok {
			return true
		}
		src = strings.TrimSpace(src)
		if src == "" || ExcludedImagePattern.MatchString(src) {
			return true
		}
		found = src
		return false
	})
	return found
}

// IsGIF reports whether the URL path points at a GIF.
func IsGIF(u string) bool {
	u = strings.ToLower(u)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".gif")
}
