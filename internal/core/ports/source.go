// internal/core/ports/source.go
package ports

import (
	"context"
	"time"

	"subsweep/internal/core/domain"
)

// Sink receives hostnames as a source discovers them. Implementations must
// be safe for concurrent use; every running source submits into the same
// aggregate.
type Sink interface {
	// Submit records one candidate hostname. Raw values are accepted; the
	// sink normalizes and scopes them.
	Submit(hostname string) error
}

// Source is the primary port for passive enumeration data sources.
type Source interface {
	// Name returns the unique name of the source (e.g. "crtsh", "chaos").
	Name() string

	// Run queries the source for subdomains of target, submitting each
	// candidate to sink as it is found. Run must honor ctx cancellation
	// between requests and return promptly once the deadline passes.
	Run(ctx context.Context, target domain.Target, sink Sink) error
}

// SourceConfig holds per-source runtime settings.
type SourceConfig struct {
	// Enabled controls whether the source participates in a run.
	Enabled bool

	// Timeout is this source's time budget. Zero means the run default.
	Timeout time.Duration

	// Credential carries the API key material for authenticated sources.
	Credential domain.Credential
}

// DefaultSourceConfig returns a config with the standard defaults.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Enabled: true,
		Timeout: 30 * time.Second,
	}
}

// SourceMetadata describes a registered source.
type SourceMetadata struct {
	Name        string
	Description string

	// RequiresAuth marks sources that are skipped when no credential is
	// configured.
	RequiresAuth bool
}
