package usefetch

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }

func TestClassifyDeadlineAsTimeout(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "/u", Err: context.DeadlineExceeded}
	ferr := classifyTransport(err)
	if ferr.Kind != KindTimeout || ferr.Message != "Request timed out or was aborted" {
		t.Fatalf("Classified as %+v", ferr)
	}
}

func TestClassifyAbortAsTimeout(t *testing.T) {
	ferr := classifyTransport(context.Canceled)
	if ferr.Kind != KindTimeout {
		t.Fatalf("Classified as %+v", ferr)
	}
}

func TestClassifyNetTimeoutAsTimeout(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "/u", Err: timeoutError{}}
	ferr := classifyTransport(err)
	if ferr.Kind != KindTimeout {
		t.Fatalf("Classified as %+v", ferr)
	}
}

func TestClassifyConnectivityAsNetwork(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "/u", Err: errors.New("no such host")}
	ferr := classifyTransport(err)
	if ferr.Kind != KindNetwork {
		t.Fatalf("Classified as %+v", ferr)
	}
	if !strings.HasPrefix(ferr.Message, "Network error: ") {
		t.Fatalf("Message is %q", ferr.Message)
	}
}
