package usefetch

import (
	"context"
	"errors"
	"net/url"
)

// Kind classifies a terminal fetch failure.
type Kind string

const (
	// The attempt was aborted by its deadline.
	KindTimeout Kind = "timeout"

	// The transport never produced an HTTP response
	// (host unreachable, DNS failure, malformed URL).
	KindNetwork Kind = "network"

	// The origin responded with a non-success status code.
	// The message embeds the status code and the response body text.
	KindServerError Kind = "server"

	// The response body could not be decoded into structured data.
	KindDecodeError Kind = "decode"

	// Any failure not covered by the kinds above.
	KindOther Kind = "other"
)

// Error is the terminal failure of a logical request.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

const timeoutMessage = "Request timed out or was aborted"

// classifyTransport maps an error returned by the HTTP client to a fetch error.
// The timeout/abort path is checked before connectivity faults; everything the
// transport reports without having produced a response counts as a network error.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Message: timeoutMessage}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &Error{Kind: KindTimeout, Message: timeoutMessage}
	}
	return &Error{Kind: KindNetwork, Message: "Network error: " + err.Error()}
}
