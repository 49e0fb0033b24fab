package apiclient

import "errors"

// RequestError is the single failure kind returned by Client.Get.
// StatusCode is zero when no HTTP response was received (DNS, connect,
// timeout); otherwise it carries the error status and the decoded body.
type RequestError struct {
	Message    string
	StatusCode int
	Body       Value
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HasStatus reports whether the server answered with an HTTP error status.
func (e *RequestError) HasStatus() bool {
	return e != nil && e.StatusCode != 0
}

// AsRequestError unwraps err into a *RequestError when possible.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
