package sankaku

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFoundViaPrimary means the primary route answered with a status from
	// the fallback set. It never leaves the resolver.
	ErrNotFoundViaPrimary = errors.New("post not found via primary API")
	// ErrNoFileAvailable means the post resolved but carries no original file,
	// either no file_url at all or only a preview. Resolve reports it as a nil result.
	ErrNoFileAvailable = errors.New("no downloadable file for post")
	ErrInvalidURL      = errors.New("not a sankaku post URL")
)

type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: unexpected status %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request could succeed.
func (e *TransportError) Retryable() bool {
	if e.StatusCode != 0 {
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	if e.Err == nil || errors.Is(e.Err, context.Canceled) {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return !errors.As(e.Err, &syntaxErr) && !errors.As(e.Err, &typeErr)
}

// FallbackExhausted is returned when the primary route missed and the /fu
// route failed as well.
type FallbackExhausted struct {
	PostID string
	Err    error
}

func (e *FallbackExhausted) Error() string {
	return fmt.Sprintf("no API produced data for post %s: %v", e.PostID, e.Err)
}

func (e *FallbackExhausted) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable()
}
