package core

import "fmt"

// ProviderError is a failed call to an LLM backend: non-success HTTP status,
// unusable response envelope, or timeout. Detail carries the upstream body
// or message so operators can see what the provider said.
type ProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Detail)
}

// ConfigError is a misconfiguration detected before any network call, kept
// distinct from ProviderError so "misconfigured" never reads as "upstream
// failed".
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }
