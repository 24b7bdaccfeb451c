package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited matches any RateLimitError via errors.Is.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidPayload is wrapped by FetchError when a response does not
	// decode into, or validate against, the expected shape.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrResponseTooLarge is wrapped by FetchError when a body exceeds the
	// fetcher's MaxBody.
	ErrResponseTooLarge = errors.New("response too large")
)

// RateLimitError reports an HTTP 403 from a remote API.
type RateLimitError struct {
	Source string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s API rate limit exceeded. Please try again later.", e.Source)
}

// Is lets errors.Is(err, ErrRateLimited) match.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// FetchError is any other remote failure: a non-2xx status, a transport
// error, or a payload that failed to parse.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int    // zero when no response was received
	Status     string // HTTP status text, if any
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error: %d %s", e.Source, e.StatusCode, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s API error: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("%s API error", e.Source)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
