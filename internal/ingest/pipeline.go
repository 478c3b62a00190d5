package ingest

import (
	"context"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feedparse"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/fetch"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
)

// FeedFetcher retrieves the canonical article list for one feed. A total
// failure yields an empty list, never an error past this boundary.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feed domain.Feed) []domain.Article
}

// Pipeline is the per-feed fallback chain: each proxy relay's body is parsed
// in turn, and when every proxy/parse combination has failed the feed is
// converted through the JSON bridge.
type Pipeline struct {
	proxies *fetch.ProxyFetcher
	parser  *feedparse.Parser
	bridge  *fetch.JSONBridge
	log     logger.Logger
}

// NewPipeline wires the fallback chain for per-feed fetching.
func NewPipeline(proxies *fetch.ProxyFetcher, parser *feedparse.Parser, bridge *fetch.JSONBridge, log logger.Logger) *Pipeline {
	if parser == nil {
		parser = feedparse.NewParser()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{proxies: proxies, parser: parser, bridge: bridge, log: log}
}

// FetchFeed runs the chain for one feed. Proxy bodies that fail to parse
// send the fetcher on to the next relay; exhaustion falls through to the
// bridge, whose own failure degrades to zero articles for this feed.
func (p *Pipeline) FetchFeed(ctx context.Context, feed domain.Feed) []domain.Article {
	var articles []domain.Article

	if p.proxies != nil {
		_, err := p.proxies.FetchAccepted(ctx, feed.URL, func(raw string) error {
			parsed, perr := p.parser.Parse(raw, feed)
			if perr != nil {
				return perr
			}
			articles = parsed
			return nil
		})
		if err == nil {
			return articles
		}
		if ctx.Err() != nil {
			return []domain.Article{}
		}
		p.log.WarnObj("raw feed fetch exhausted, trying json bridge", "feed_fallback", map[string]any{
			"feed_id": feed.ID,
			"url":     feed.URL,
			"error":   err.Error(),
		})
	}

	if p.bridge != nil {
		return p.bridge.Fetch(ctx, feed)
	}
	return []domain.Article{}
}
