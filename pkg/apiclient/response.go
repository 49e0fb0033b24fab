package apiclient

import (
	"net/http"
	"strings"
)

const (
	// RawContentKey wraps a non-JSON success body.
	RawContentKey = "raw_content"
	// ErrorKey wraps a non-JSON error body.
	ErrorKey = "error"
)

// Response is the normalized result of a successful GET. It is immutable.
type Response struct {
	statusCode int
	data       Value
	headers    map[string]string
	success    bool
}

// NewResponse builds an envelope. Success is derived from the status code so
// that a successful envelope never carries a 4xx/5xx status.
func NewResponse(statusCode int, data Value, headers map[string]string) *Response {
	cp := make(map[string]string, len(headers))
	for k, v := range headers {
		cp[http.CanonicalHeaderKey(k)] = v
	}
	return &Response{
		statusCode: statusCode,
		data:       data,
		headers:    cp,
		success:    statusCode > 0 && statusCode < http.StatusBadRequest,
	}
}

func (r *Response) StatusCode() int { return r.statusCode }
func (r *Response) Data() Value     { return r.data }
func (r *Response) Success() bool   { return r.success }

// Headers returns a copy of the response headers keyed in canonical form.
func (r *Response) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// Header looks up a header case-insensitively.
func (r *Response) Header(name string) (string, bool) {
	v, ok := r.headers[http.CanonicalHeaderKey(name)]
	return v, ok
}

// Field returns the value at a dot path, or def when any segment is missing
// or crosses a non-object. A path without dots is a plain top-level lookup.
func (r *Response) Field(path string, def Value) Value {
	if !strings.Contains(path, PathSeparator) {
		if v, ok := r.data.Member(path); ok {
			return v
		}
		return def
	}
	if v, ok := r.data.Lookup(path); ok {
		return v
	}
	return def
}

// FieldText is Field rendered with Value.Text.
func (r *Response) FieldText(path, def string) string {
	v, ok := r.data.Lookup(path)
	if !ok {
		return def
	}
	return v.Text()
}

// HasField reports whether key is a literal top-level member. Unlike Field it
// does not interpret dots: HasField("a.b") looks for a member named "a.b".
func (r *Response) HasField(key string) bool {
	_, ok := r.data.Member(key)
	return ok
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		out[http.CanonicalHeaderKey(k)] = strings.Join(vals, ", ")
	}
	return out
}
