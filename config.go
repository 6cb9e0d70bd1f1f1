package usefetch

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Retries      *int  `yaml:"retries"`
	TimeoutMs    *int  `yaml:"timeoutMs"`
	RetryDelayMs *int  `yaml:"retryDelayMs"`
	DisableCache *bool `yaml:"disableCache"`
}

// PolicyFromFile reads a fetch policy from a YAML file.
// Fields left out of the file keep their defaults, so a file setting
// `retries: 0` really means a single attempt.
func PolicyFromFile(filename string) (Policy, error) {
	policy := DefaultPolicy()
	policyBytes, err := os.ReadFile(filename)
	if err != nil {
		return policy, err
	}
	var file policyFile
	if err := yaml.Unmarshal(policyBytes, &file); err != nil {
		return policy, err
	}
	if file.Retries != nil {
		policy.MaxRetries = *file.Retries
	}
	if file.TimeoutMs != nil {
		policy.Timeout = time.Duration(*file.TimeoutMs) * time.Millisecond
	}
	if file.RetryDelayMs != nil {
		policy.RetryDelay = time.Duration(*file.RetryDelayMs) * time.Millisecond
	}
	if file.DisableCache != nil {
		policy.DisableCache = *file.DisableCache
	}
	return policy, nil
}
