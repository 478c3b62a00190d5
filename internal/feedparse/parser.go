package feedparse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
)

// ErrNoItems marks a structurally valid document that contains neither RSS
// items nor Atom entries. Callers treat it like a parse failure and move to
// the fallback chain.
var ErrNoItems = errors.New("feed has no items or entries")

// Dialect identifies the feed format resolved once per document.
type Dialect string

const (
	DialectRSS  Dialect = "rss"
	DialectAtom Dialect = "atom"
)

// Parser normalizes raw feed XML into canonical articles. The clock is
// injectable so undated items stay deterministic under test.
type Parser struct {
	now func() time.Time
}

// NewParser returns a parser using the real clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock returns a parser with an injected clock.
func NewParserWithClock(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse decodes raw feed text, detects the dialect, and maps every entry to
// the canonical Article shape, denormalizing the owning feed's identity.
// A structural XML error or an item-less document is a hard failure.
func (p *Parser) Parse(raw string, feed domain.Feed) ([]domain.Article, error) {
	var probe feedProbe
	if err := xml.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("decode feed xml: %w", err)
	}

	dialect, err := detectDialect(probe)
	if err != nil {
		return nil, err
	}

	var articles []domain.Article
	switch dialect {
	case DialectAtom:
		articles = make([]domain.Article, 0, len(probe.Entries))
		for _, entry := range probe.Entries {
			articles = append(articles, p.mapAtomEntry(entry, feed))
		}
	default:
		articles = make([]domain.Article, 0, len(probe.Channel.Items))
		for _, item := range probe.Channel.Items {
			articles = append(articles, p.mapRSSItem(item, feed))
		}
	}

	return articles, nil
}

// detectDialect applies the item/entry rule: no <item> but some <entry>
// means Atom, any <item> means RSS, neither is a hard failure.
func detectDialect(probe feedProbe) (Dialect, error) {
	switch {
	case len(probe.Channel.Items) > 0:
		return DialectRSS, nil
	case len(probe.Entries) > 0:
		return DialectAtom, nil
	default:
		return "", ErrNoItems
	}
}

// mapRSSItem applies the RSS 2.0 field mapping. The encoded-content variant
// wins over the plain description only when it is longer.
func (p *Parser) mapRSSItem(item rssItem, feed domain.Feed) domain.Article {
	content := strings.TrimSpace(item.Description)
	if encoded := strings.TrimSpace(item.Encoded); len(encoded) > len(content) {
		content = encoded
	}

	author := strings.TrimSpace(item.Creator)
	if author == "" {
		author = strings.TrimSpace(item.Author)
	}

	link := strings.TrimSpace(item.Link)

	return p.buildArticle(feed, articleFields{
		Title:   strings.TrimSpace(item.Title),
		Link:    link,
		Content: content,
		PubDate: strings.TrimSpace(item.PubDate),
		Author:  author,
		Thumbnail: ResolveThumbnail(MediaSignals{
			MediaContents:   refs(item.MediaContents),
			Enclosures:      enclosureRefs(item.Enclosures),
			MediaThumbnails: refs(item.MediaThumbnails),
			HTML:            content,
		}),
	})
}

// mapAtomEntry applies the Atom field mapping. The alternate-relation link
// wins over any other link element.
func (p *Parser) mapAtomEntry(entry atomEntry, feed domain.Feed) domain.Article {
	content := strings.TrimSpace(entry.Content)
	if content == "" {
		content = strings.TrimSpace(entry.Summary)
	}

	pubDate := strings.TrimSpace(entry.Published)
	if pubDate == "" {
		pubDate = strings.TrimSpace(entry.Updated)
	}

	return p.buildArticle(feed, articleFields{
		Title:   strings.TrimSpace(entry.Title),
		Link:    alternateLink(entry.Links),
		Content: content,
		PubDate: pubDate,
		Author:  strings.TrimSpace(entry.Author.Name),
		Thumbnail: ResolveThumbnail(MediaSignals{
			MediaContents:   refs(entry.MediaContents),
			MediaThumbnails: refs(entry.MediaThumbnails),
			HTML:            content,
		}),
	})
}

// articleFields is the per-dialect mapping output fed into buildArticle.
type articleFields struct {
	Title     string
	Link      string
	Content   string
	PubDate   string
	Author    string
	Thumbnail string
}

func (p *Parser) buildArticle(feed domain.Feed, f articleFields) domain.Article {
	id := f.Link
	if id == "" {
		id = uuid.NewString()
	}

	return domain.Article{
		ID:             id,
		FeedID:         feed.ID,
		FeedTitle:      feed.Title,
		FeedColor:      feed.Color,
		Title:          f.Title,
		Link:           f.Link,
		Content:        f.Content,
		ContentSnippet: Snippet(f.Content),
		PubDate:        f.PubDate,
		ISODate:        NormalizeDate(f.PubDate, p.now),
		Thumbnail:      f.Thumbnail,
		Author:         f.Author,
	}
}

// alternateLink prefers the rel="alternate" link, then the first href.
func alternateLink(links []atomLink) string {
	for _, l := range links {
		if strings.EqualFold(l.Rel, "alternate") && strings.TrimSpace(l.Href) != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	for _, l := range links {
		if strings.TrimSpace(l.Href) != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}

func refs(media []mediaMedia) []MediaRef {
	out := make([]MediaRef, 0, len(media))
	for _, m := range media {
		out = append(out, MediaRef{URL: m.URL, Type: strings.TrimSpace(m.Type)})
	}
	return out
}

func enclosureRefs(encs []enclosure) []MediaRef {
	out := make([]MediaRef, 0, len(encs))
	for _, e := range encs {
		out = append(out, MediaRef{URL: e.URL, Type: strings.TrimSpace(e.Type)})
	}
	return out
}
