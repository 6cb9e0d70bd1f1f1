package usefetch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePolicyFile(t *testing.T, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestPolicyFromFile(t *testing.T) {
	filename := writePolicyFile(t, `
retries: 1
timeoutMs: 250
retryDelayMs: 50
disableCache: true
`)
	policy, err := PolicyFromFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	want := Policy{
		DisableCache: true,
		MaxRetries:   1,
		Timeout:      250 * time.Millisecond,
		RetryDelay:   50 * time.Millisecond,
	}
	if policy != want {
		t.Fatalf("Policy is %+v", policy)
	}
}

func TestPolicyFromFilePartialKeepsDefaults(t *testing.T) {
	filename := writePolicyFile(t, "retries: 0\n")
	policy, err := PolicyFromFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	// explicitly zero retries, everything else at defaults
	if policy.MaxRetries != 0 {
		t.Fatalf("MaxRetries is %d", policy.MaxRetries)
	}
	if policy.Timeout != DefaultTimeout || policy.RetryDelay != DefaultRetryDelay || policy.DisableCache {
		t.Fatalf("Policy is %+v", policy)
	}
}

func TestPolicyFromMissingFile(t *testing.T) {
	if _, err := PolicyFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}
