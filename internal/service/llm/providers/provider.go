package providers

import (
	"context"
)

// Provider defines the interface that all text providers must implement
type Provider interface {
	// Generate produces raw text for an instruction. The returned string is
	// unprocessed model output; callers run it through the content policy.
	Generate(ctx context.Context, instruction string) (string, error)

	// GetName returns the name of the provider
	GetName() string

	// Close closes any connections or resources used by the provider
	Close() error
}
