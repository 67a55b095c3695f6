package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure
type Kind int

const (
	// KindMisconfigured means no credential is configured locally.
	KindMisconfigured Kind = iota + 1
	// KindUnauthorized means the upstream rejected the credential (401/403).
	KindUnauthorized
	// KindRateLimited means the upstream quota is exhausted (429).
	KindRateLimited
	// KindBadGateway means no response was received from the upstream.
	KindBadGateway
	// KindUpstream is any other non-2xx upstream status.
	KindUpstream
	// KindLocalFault is an unexpected local failure while building the request.
	KindLocalFault
)

func (k Kind) String() string {
	switch k {
	case KindMisconfigured:
		return "misconfigured"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindBadGateway:
		return "bad_gateway"
	case KindUpstream:
		return "upstream_error"
	case KindLocalFault:
		return "local_fault"
	default:
		return "unknown"
	}
}

// Error is returned by fetchers and the proxy service. Status and Body hold
// the upstream response when there was one.
type Error struct {
	Kind        Kind
	Status      int
	Body        []byte
	ContentType string
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindLocalFault when err does not carry
// one.
func KindOf(err error) Kind {
	var upErr *Error
	if errors.As(err, &upErr) {
		return upErr.Kind
	}
	return KindLocalFault
}

// ErrorFromStatus classifies a non-2xx upstream response.
func ErrorFromStatus(status int, body []byte, contentType string) *Error {
	kind := KindUpstream
	switch status {
	case 401, 403:
		kind = KindUnauthorized
	case 429:
		kind = KindRateLimited
	}
	return &Error{Kind: kind, Status: status, Body: body, ContentType: contentType}
}
