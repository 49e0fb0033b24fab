package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract. Implementations must have
// fully read and closed the underlying body before returning it.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// A non-nil error means no HTTP response was received.
type Client interface {
	Get(ctx context.Context, url string, headers, query map[string]string) (Response, error)
}
