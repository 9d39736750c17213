// internal/core/domain/outcome.go
package domain

// Outcome classifies how a single source's run ended. Every outcome except
// OutcomeCompleted still allows partial results: hostnames a source submitted
// before failing are kept.
type Outcome string

const (
	// OutcomeCompleted the source ran to completion
	OutcomeCompleted Outcome = "completed"

	// OutcomeSkippedMissingCredential the source requires an API key the
	// credential store does not hold; no network call was made
	OutcomeSkippedMissingCredential Outcome = "skipped_missing_credential"

	// OutcomeTimeout the source exceeded its deadline
	OutcomeTimeout Outcome = "timeout"

	// OutcomeRateLimited the provider throttled the source (HTTP 429 or
	// an in-band quota message)
	OutcomeRateLimited Outcome = "rate_limited"

	// OutcomeParseError the response body could not be parsed
	OutcomeParseError Outcome = "parse_error"

	// OutcomeTransportError a network-level failure (refused, DNS, TLS)
	OutcomeTransportError Outcome = "transport_error"

	// OutcomeCancelled the global enumeration budget expired while the
	// source was still running
	OutcomeCancelled Outcome = "cancelled"
)

// IsValid verifies the outcome is one of the known values.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCompleted, OutcomeSkippedMissingCredential, OutcomeTimeout,
		OutcomeRateLimited, OutcomeParseError, OutcomeTransportError, OutcomeCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// Ran reports whether the source actually issued network traffic.
func (o Outcome) Ran() bool {
	return o != OutcomeSkippedMissingCredential
}
