package domain

import "time"

// Domain contains the canonical records shared across the pipeline.

// Feed is a subscribed source. Identity is ID; records are immutable except
// for removal in the subscription store.
type Feed struct {
	ID    string `json:"id" yaml:"id"`
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Article is the normalized record produced by the parser regardless of the
// source dialect. Articles are created fresh on every ingestion pass and
// never mutated afterwards.
type Article struct {
	// ID is the link when present, otherwise a random token. It is not
	// guaranteed globally unique across feeds.
	ID        string `json:"id"`
	FeedID    string `json:"feedId"`
	FeedTitle string `json:"feedTitle"`
	FeedColor string `json:"feedColor,omitempty"`

	Title string `json:"title"`
	Link  string `json:"link"`

	// Content is the raw HTML body, full or best-available.
	Content string `json:"content"`
	// ContentSnippet is always HTML-stripped and bounded to 150 characters
	// plus an ellipsis when truncated.
	ContentSnippet string `json:"contentSnippet"`

	// PubDate keeps the feed-supplied date text verbatim.
	PubDate string `json:"pubDate"`
	// ISODate is always a valid ISO-8601 timestamp; undated or unparsable
	// items carry the fetch time instead. Downstream sorting depends on it.
	ISODate string `json:"isoDate"`

	Thumbnail string `json:"thumbnail,omitempty"`
	Author    string `json:"author,omitempty"`
}

// ISOLayout is the timestamp format used for Article.ISODate.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// PublishedAt parses the article's ISODate. The zero time is returned only
// when the record was built outside the parser and violates the invariant.
func (a Article) PublishedAt() time.Time {
	t, err := time.Parse(ISOLayout, a.ISODate)
	if err != nil {
		t, err = time.Parse(time.RFC3339, a.ISODate)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// TrendTopic is one ranked keyword with the articles that mention it.
// Recomputed in full on every corpus change, never persisted.
type TrendTopic struct {
	Keyword         string    `json:"keyword"`
	Count           int       `json:"count"`
	RelatedArticles []Article `json:"relatedArticles"`
}

// TrendingStory is a group of articles from different sources judged by
// title-token overlap to cover the same event.
type TrendingStory struct {
	// Lead is the most recent member and serves as the display headline.
	Lead         Article   `json:"lead"`
	Articles     []Article `json:"articles"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	RelatedCount int       `json:"relatedCount"`
	// Sources lists up to three distinct feed titles among the members.
	Sources []string `json:"sources"`
}

// IngestState describes the orchestrator lifecycle.
type IngestState string

const (
	IngestIdle    IngestState = "idle"
	IngestRunning IngestState = "running"
	IngestDone    IngestState = "done"
)

// IngestStatus is the progress view exposed to consumers. FirstBatchDone
// lets callers clear a bulk-loading indicator while Percent keeps moving
// until every batch has finished.
type IngestStatus struct {
	State          IngestState `json:"state"`
	BatchesDone    int         `json:"batchesDone"`
	TotalBatches   int         `json:"totalBatches"`
	Percent        int         `json:"percent"`
	FirstBatchDone bool        `json:"firstBatchDone"`
	ArticleCount   int         `json:"articleCount"`
	StartedAt      time.Time   `json:"startedAt"`
}
