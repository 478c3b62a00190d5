package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/logger"
	"github.com/newsdeck-hq/newsdeck-aggregator/pkg/httpclient"
)

// ErrAllProxiesFailed signals that every relay strategy was exhausted for a
// target URL without producing acceptable content.
var ErrAllProxiesFailed = errors.New("all proxy strategies failed")

const defaultAttemptTimeout = 5 * time.Second

// Strategy rewrites a target URL into a request against one public relay.
type Strategy struct {
	Name    string
	Rewrite func(target string) string
}

// DefaultStrategies returns the ordered relay chain. Relays are unreliable
// and interchangeable; order only sets who gets asked first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "allorigins",
			Rewrite: func(target string) string {
				return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
			},
		},
		{
			Name: "corsproxy",
			Rewrite: func(target string) string {
				return "https://corsproxy.io/?url=" + url.QueryEscape(target)
			},
		},
		{
			Name: "codetabs",
			Rewrite: func(target string) string {
				return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
			},
		},
	}
}

// ProxyFetcher retrieves feed content through an ordered chain of relay
// strategies, trying each sequentially and short-circuiting on the first
// acceptable response.
type ProxyFetcher struct {
	client     httpclient.Client
	strategies []Strategy
	timeout    time.Duration
	log        logger.Logger
}

// NewProxyFetcher builds a fetcher over the given client and strategies.
// A nil strategies slice gets the default relay chain.
func NewProxyFetcher(client httpclient.Client, strategies []Strategy, timeout time.Duration, log logger.Logger) *ProxyFetcher {
	if client == nil {
		client = httpclient.NewRestyClient(defaultAttemptTimeout)
	}
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &ProxyFetcher{client: client, strategies: strategies, timeout: timeout, log: log}
}

// Fetch returns the first strategy's raw body that passes the acceptance
// checks. It returns ErrAllProxiesFailed once the chain is exhausted.
func (f *ProxyFetcher) Fetch(ctx context.Context, target string) (string, error) {
	return f.FetchAccepted(ctx, target, nil)
}

// FetchAccepted tries each strategy in order and additionally runs accept
// over the raw body; an accept error moves on to the next strategy. This is
// how callers retry downstream parse failures against the remaining relays.
func (f *ProxyFetcher) FetchAccepted(ctx context.Context, target string, accept func(raw string) error) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("fetch target url is empty")
	}

	for _, strat := range f.strategies {
		raw, err := f.attempt(ctx, strat, target)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			f.log.DebugObj("proxy attempt failed", "proxy_attempt", map[string]any{
				"strategy": strat.Name,
				"target":   target,
				"error":    err.Error(),
			})
			continue
		}
		if accept != nil {
			if err := accept(raw); err != nil {
				f.log.DebugObj("proxy body rejected", "proxy_attempt", map[string]any{
					"strategy": strat.Name,
					"target":   target,
					"error":    err.Error(),
				})
				continue
			}
		}
		return raw, nil
	}

	return "", fmt.Errorf("fetch %s: %w", target, ErrAllProxiesFailed)
}

// attempt issues one timed GET through the given strategy. A timeout cancels
// only this attempt; the caller proceeds to the next relay.
func (f *ProxyFetcher) attempt(ctx context.Context, strat Strategy, target string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.Get(attemptCtx, strat.Rewrite(target), nil)
	if err != nil {
		return "", fmt.Errorf("%s relay: %w", strat.Name, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%s relay returned status %d", strat.Name, resp.StatusCode())
	}
	if looksLikeHTMLDocument(body) {
		return "", fmt.Errorf("%s relay returned an html page instead of feed content", strat.Name)
	}

	return string(body), nil
}

// looksLikeHTMLDocument sniffs proxy error pages: relays answer 200 with a
// branded HTML page when the upstream fetch failed.
func looksLikeHTMLDocument(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(leading(body, 256))))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func leading(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
