package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// defaultUserAgent identifies the aggregator to relays and feed origins.
// Some feed hosts reject the Go default agent outright.
const defaultUserAgent = "newsdeck-aggregator/1.0 (+https://github.com/newsdeck-hq/newsdeck-aggregator)"

// RestyClient adapts resty.Client to the Client interface used by the fetch
// layer.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient builds a feed-fetching client with the given total timeout.
// Retries stay off: the relay chain is the retry mechanism, and stacking
// client retries under it multiplies worst-case latency per feed.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers that need
// verbs beyond GET, such as the HTTP publisher.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", defaultUserAgent)
	c.SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, application/json, */*")
	return c
}

// Get issues a GET with the given context and optional extra headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r *restyResponse) Body() []byte    { return r.resp.Body() }
func (r *restyResponse) StatusCode() int { return r.resp.StatusCode() }
