// Package errs defines the error taxonomy shared by the embedding,
// vector store and validation services. All four types support
// errors.As so the transport layer can classify failures uniformly.
package errs

import (
	"fmt"
	"strings"
)

// ConfigError indicates bad or missing provider/store configuration.
// It is fatal to the operation and never retried.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProviderError indicates an embedding call or dimension probe failed
// or returned malformed data.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding provider %s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("embedding provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StoreError wraps a vector store call failure with the operation name.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError carries a negative compatibility or data-shape verdict
// together with its remediation text.
type ValidationError struct {
	Message     string
	Details     []string
	Remediation []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, d := range e.Details {
		b.WriteString("\n  - ")
		b.WriteString(d)
	}
	if len(e.Remediation) > 0 {
		b.WriteString("\nPossible fixes:")
		for _, r := range e.Remediation {
			b.WriteString("\n  - ")
			b.WriteString(r)
		}
	}
	return b.String()
}
