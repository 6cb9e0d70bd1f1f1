package usefetch

import (
	"net/http"
	"reflect"
	"time"
)

// Defaults applied to a zero-value Policy.
const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 5 * time.Second
	DefaultRetryDelay = time.Second
)

// Options describe how the request is sent.
// They do not participate in the cache key (see Request.URL).
type Options struct {
	// HTTP method, GET if empty.
	Method string
	// Extra headers to send with every attempt.
	Header http.Header
	// Request body, sent as-is on every attempt.
	Body []byte
}

// Policy bounds one logical request.
//
// A zero-value Policy means "all defaults". A partially populated Policy is
// taken literally, so MaxRetries of 0 alongside any other set field means
// exactly one attempt; Timeout and RetryDelay always fall back to their
// defaults when zero, since both must be positive.
type Policy struct {
	// Skip the cache lookup and the cache write.
	DisableCache bool
	// Number of retries after the first attempt.
	MaxRetries int
	// Deadline for each individual attempt.
	Timeout time.Duration
	// Fixed delay between attempts. No exponential growth.
	RetryDelay time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Timeout:    DefaultTimeout,
		RetryDelay: DefaultRetryDelay,
	}
}

func (p Policy) withDefaults() Policy {
	if p == (Policy{}) {
		return DefaultPolicy()
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = DefaultRetryDelay
	}
	return p
}

// Request identifies one logical request.
type Request struct {
	// URL is also the cache key. Method, headers and body deliberately do
	// not participate, so two structurally different requests to the same
	// URL share a cache slot.
	URL     string
	Options Options
	Policy  Policy
}

// Equal compares requests by value, not identity. The controller restarts
// only when the tuple actually changes, so callers may rebuild an identical
// Request on every invocation without spuriously restarting the fetch.
func (r Request) Equal(other Request) bool {
	return reflect.DeepEqual(r, other)
}
