package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feedparse"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
	"github.com/newsdeck-hq/newsdeck-aggregator/pkg/httpclient"
)

// DefaultBridgeEndpoint is the feed-to-JSON conversion service queried once
// every raw-XML attempt has failed for a feed.
const DefaultBridgeEndpoint = "https://api.rss2json.com/v1/api.json"

// bridgeResponse mirrors the conversion service's payload. A status other
// than "ok" is a hard failure for the call.
type bridgeResponse struct {
	Status string       `json:"status"`
	Items  []bridgeItem `json:"items"`
}

type bridgeItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PubDate     string `json:"pubDate"`
	Author      string `json:"author"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Enclosure   struct {
		Link string `json:"link"`
		Type string `json:"type"`
	} `json:"enclosure"`
}

// JSONBridge converts a feed through the third-party bridge into the same
// canonical schema the XML parser produces. It is the last rung of the
// fallback chain and never fails past its boundary: any error degrades to
// an empty article list.
type JSONBridge struct {
	client   httpclient.Client
	endpoint string
	now      func() time.Time
	log      logger.Logger
}

// NewJSONBridge builds a bridge adapter. Empty endpoint uses the default
// conversion service.
func NewJSONBridge(client httpclient.Client, endpoint string, log logger.Logger) *JSONBridge {
	if client == nil {
		client = httpclient.NewRestyClient(defaultAttemptTimeout)
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultBridgeEndpoint
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &JSONBridge{client: client, endpoint: endpoint, now: time.Now, log: log}
}

// Fetch converts the feed and maps its items onto canonical articles. The
// returned slice is empty (never nil-with-error) on any failure.
func (b *JSONBridge) Fetch(ctx context.Context, feed domain.Feed) []domain.Article {
	resp, err := b.call(ctx, feed.URL)
	if err != nil {
		b.log.WarnObj("json bridge fetch failed", "bridge_error", map[string]any{
			"feed_id": feed.ID,
			"url":     feed.URL,
			"error":   err.Error(),
		})
		return []domain.Article{}
	}

	articles := make([]domain.Article, 0, len(resp.Items))
	for _, item := range resp.Items {
		articles = append(articles, b.mapItem(item, feed))
	}
	return articles
}

func (b *JSONBridge) call(ctx context.Context, feedURL string) (*bridgeResponse, error) {
	target := b.endpoint + "?rss_url=" + url.QueryEscape(feedURL)

	resp, err := b.client.Get(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode())
	}

	var decoded bridgeResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decode bridge response: %w", err)
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("bridge status %q", decoded.Status)
	}
	return &decoded, nil
}

// mapItem applies the same snippet and thumbnail rules the XML parser uses.
func (b *JSONBridge) mapItem(item bridgeItem, feed domain.Feed) domain.Article {
	content := strings.TrimSpace(item.Content)
	if content == "" {
		content = strings.TrimSpace(item.Description)
	}

	var enclosures []feedparse.MediaRef
	if item.Enclosure.Link != "" {
		enclosures = append(enclosures, feedparse.MediaRef{
			URL:  item.Enclosure.Link,
			Type: strings.TrimSpace(item.Enclosure.Type),
		})
	}

	thumbnail := strings.TrimSpace(item.Thumbnail)
	if thumbnail == "" {
		thumbnail = feedparse.ResolveThumbnail(feedparse.MediaSignals{
			Enclosures: enclosures,
			HTML:       content,
		})
	}

	link := strings.TrimSpace(item.Link)
	id := link
	if id == "" {
		id = uuid.NewString()
	}

	return domain.Article{
		ID:             id,
		FeedID:         feed.ID,
		FeedTitle:      feed.Title,
		FeedColor:      feed.Color,
		Title:          strings.TrimSpace(item.Title),
		Link:           link,
		Content:        content,
		ContentSnippet: feedparse.Snippet(content),
		PubDate:        strings.TrimSpace(item.PubDate),
		ISODate:        feedparse.NormalizeDate(item.PubDate, b.now),
		Thumbnail:      thumbnail,
		Author:         strings.TrimSpace(item.Author),
	}
}
