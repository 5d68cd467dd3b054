package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind says how a provider call failed.
type ErrorKind int

const (
	// KindUnavailable covers outages, timeouts and 5xx answers.
	KindUnavailable ErrorKind = iota + 1
	// KindRateLimited is a 429 from the provider.
	KindRateLimited
	// KindRejected means the provider refused the request itself: bad key,
	// unknown model, malformed input. Retrying will not help.
	KindRejected
	// KindEmptyReply means the call worked but produced no usable text.
	KindEmptyReply
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	case KindRejected:
		return "rejected"
	case KindEmptyReply:
		return "empty_reply"
	}
	return "unknown"
}

// Error is returned by every Provider in this package.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or 0 when err did not come from a provider.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsTransient reports whether the same request may succeed later.
func IsTransient(err error) bool {
	k := KindOf(err)
	return k == KindUnavailable || k == KindRateLimited
}

// fromStatus classifies an SDK error by the HTTP status it carried. A zero
// status means the request never got an answer.
func fromStatus(provider string, status int, err error) error {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500 && status != http.StatusRequestTimeout:
		kind = KindRejected
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func emptyReply(provider string) error {
	return &Error{Kind: KindEmptyReply, Provider: provider}
}
