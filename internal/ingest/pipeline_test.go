package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/feedparse"
	"github.com/newsdeck-hq/newsdeck-aggregator/internal/fetch"
	"github.com/newsdeck-hq/newsdeck-aggregator/pkg/httpclient"
)

type cannedResponse struct {
	body   string
	status int
}

func (r cannedResponse) Body() []byte    { return []byte(r.body) }
func (r cannedResponse) StatusCode() int { return r.status }

// seqClient serves canned responses in request order.
type seqClient struct {
	responses []cannedResponse
	calls     int
}

func (c *seqClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	if c.calls >= len(c.responses) {
		return nil, errors.New("unexpected request")
	}
	r := c.responses[c.calls]
	c.calls++
	return r, nil
}

func singleStrategy(name string) []fetch.Strategy {
	return []fetch.Strategy{{Name: name, Rewrite: func(t string) string { return "https://" + name + "/" + t }}}
}

const validRSS = `<rss version="2.0"><channel><item><title>Story</title><link>https://example.org/s</link><pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item></channel></rss>`

func pipelineFeed() domain.Feed {
	return domain.Feed{ID: "f1", URL: "https://example.org/rss", Title: "Feed One"}
}

func TestPipelineParsesFirstAcceptableBody(t *testing.T) {
	client := &seqClient{responses: []cannedResponse{{body: validRSS, status: 200}}}
	proxies := fetch.NewProxyFetcher(client, singleStrategy("relay"), time.Second, nil)
	p := NewPipeline(proxies, feedparse.NewParser(), nil, nil)

	articles := p.FetchFeed(context.Background(), pipelineFeed())
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	if articles[0].Title != "Story" {
		t.Errorf("Title = %q", articles[0].Title)
	}
	if articles[0].FeedID != "f1" {
		t.Errorf("FeedID = %q", articles[0].FeedID)
	}
}

func TestPipelineParseFailureAdvancesToNextRelay(t *testing.T) {
	strategies := []fetch.Strategy{
		{Name: "bad", Rewrite: func(t string) string { return "https://bad/" + t }},
		{Name: "good", Rewrite: func(t string) string { return "https://good/" + t }},
	}
	client := &seqClient{responses: []cannedResponse{
		{body: "<rss version=\"2.0\"><channel><title>no items</title></channel></rss>", status: 200},
		{body: validRSS, status: 200},
	}}
	proxies := fetch.NewProxyFetcher(client, strategies, time.Second, nil)
	p := NewPipeline(proxies, feedparse.NewParser(), nil, nil)

	articles := p.FetchFeed(context.Background(), pipelineFeed())
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want the second relay's body parsed", len(articles))
	}
	if client.calls != 2 {
		t.Errorf("requests = %d, want 2", client.calls)
	}
}

func TestPipelineFallsThroughToBridge(t *testing.T) {
	// One relay answering garbage, then the bridge answering a valid payload.
	client := &seqClient{responses: []cannedResponse{
		{body: "not xml at all", status: 200},
		{body: `{"status":"ok","items":[{"title":"Bridged","link":"https://example.org/b"}]}`, status: 200},
	}}
	proxies := fetch.NewProxyFetcher(client, singleStrategy("relay"), time.Second, nil)
	bridge := fetch.NewJSONBridge(client, "", nil)
	p := NewPipeline(proxies, feedparse.NewParser(), bridge, nil)

	articles := p.FetchFeed(context.Background(), pipelineFeed())
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want the bridged item", len(articles))
	}
	if articles[0].Title != "Bridged" {
		t.Errorf("Title = %q", articles[0].Title)
	}
}

func TestPipelineTotalFailureYieldsEmptySet(t *testing.T) {
	client := &seqClient{responses: []cannedResponse{
		{body: "nope", status: 500},
		{body: "down", status: 502},
	}}
	proxies := fetch.NewProxyFetcher(client, singleStrategy("relay"), time.Second, nil)
	bridge := fetch.NewJSONBridge(client, "", nil)
	p := NewPipeline(proxies, feedparse.NewParser(), bridge, nil)

	articles := p.FetchFeed(context.Background(), pipelineFeed())
	if articles == nil {
		t.Fatal("articles = nil, want an empty slice")
	}
	if len(articles) != 0 {
		t.Errorf("articles = %d, want 0", len(articles))
	}
}
