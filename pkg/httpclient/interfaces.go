package httpclient

import "context"

// Response is the slice of an HTTP response the fetch layer needs: the raw
// body for parsing and the status code for relay error detection.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues GET requests. The fetch layer and the JSON bridge depend on
// this rather than a concrete transport so tests can script responses.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
