package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthentication
	KindRateLimit
	KindTimeout
	KindContentFilter
	KindInvalidResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindTimeout:
		return "timeout"
	case KindContentFilter:
		return "content_filter"
	case KindInvalidResponse:
		return "invalid_response"
	default:
		return "provider"
	}
}

var (
	ErrProvider        = errors.New("llm provider error")
	ErrAuthentication  = errors.New("llm authentication failed")
	ErrRateLimited     = errors.New("llm rate limit exceeded")
	ErrTimeout         = errors.New("llm request timed out")
	ErrContentFiltered = errors.New("llm response blocked by content filter")
	ErrInvalidResponse = errors.New("llm returned an invalid response")
)

// ProviderError is the only error type a Provider returns for failed calls.
type ProviderError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	// RetryAfter is set for rate-limit errors when the backend supplied a hint.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is matches ErrProvider for every kind and the kind's own sentinel.
func (e *ProviderError) Is(target error) bool {
	if target == ErrProvider {
		return true
	}
	switch e.Kind {
	case KindAuthentication:
		return target == ErrAuthentication
	case KindRateLimit:
		return target == ErrRateLimited
	case KindTimeout:
		return target == ErrTimeout
	case KindContentFilter:
		return target == ErrContentFiltered
	case KindInvalidResponse:
		return target == ErrInvalidResponse
	}
	return false
}

func newError(provider string, kind ErrorKind, status int, err error) *ProviderError {
	return &ProviderError{Kind: kind, Provider: provider, StatusCode: status, Err: err}
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}

// Classify reports the kind of any error returned from a provider call.
// Transport errors that are not ProviderErrors are classified by shape.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnknown
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
