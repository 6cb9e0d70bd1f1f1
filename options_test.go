package usefetch

import (
	"net/http"
	"testing"
	"time"
)

func TestRequestEqualComparesByValue(t *testing.T) {
	build := func() Request {
		return Request{
			URL: "/users",
			Options: Options{
				Method: "POST",
				Header: http.Header{"Accept": []string{"application/json"}},
				Body:   []byte(`{"q":1}`),
			},
			Policy: Policy{MaxRetries: 1, Timeout: time.Second},
		}
	}
	if !build().Equal(build()) {
		t.Fatal("Separately built identical requests should be equal")
	}

	other := build()
	other.Options.Header = http.Header{"Accept": []string{"text/plain"}}
	if build().Equal(other) {
		t.Fatal("Requests with different headers should not be equal")
	}
}

func TestZeroPolicyMeansDefaults(t *testing.T) {
	policy := Policy{}.withDefaults()
	if policy != DefaultPolicy() {
		t.Fatalf("Policy is %+v", policy)
	}
}

func TestPartialPolicyIsLiteral(t *testing.T) {
	// retries 0 alongside a set timeout means exactly one attempt
	policy := Policy{MaxRetries: 0, Timeout: 100 * time.Millisecond}.withDefaults()
	if policy.MaxRetries != 0 {
		t.Fatalf("MaxRetries is %d", policy.MaxRetries)
	}
	if policy.Timeout != 100*time.Millisecond {
		t.Fatalf("Timeout is %s", policy.Timeout)
	}
	// delay must be positive, so it falls back to the default
	if policy.RetryDelay != DefaultRetryDelay {
		t.Fatalf("RetryDelay is %s", policy.RetryDelay)
	}
}
