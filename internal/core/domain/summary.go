// internal/core/domain/summary.go
package domain

import (
	"fmt"
	"time"
)

// SourceReport is the per-source observability record the orchestrator
// produces alongside the final hostname set.
type SourceReport struct {
	// Source is the source name
	Source string

	// Outcome classifies how the source ended
	Outcome Outcome

	// Contributed is the number of unique hostnames this source was first
	// to submit
	Contributed int

	// Submitted is the total number of accepted submissions, duplicates
	// included
	Submitted int

	// Duration is the wall-clock time the source spent running
	Duration time.Duration

	// Detail carries the error text for failed outcomes, empty otherwise
	Detail string
}

// RunSummary is the terminal state of one enumeration run.
type RunSummary struct {
	// Domain is the enumerated root
	Domain string

	// Hostnames is the final deduplicated set, sorted lexicographically
	Hostnames []string

	// Reports holds one entry per enabled source
	Reports []SourceReport

	// Invalid counts candidates dropped by hostname validation
	Invalid int

	// Elapsed is the total enumeration wall-clock time
	Elapsed time.Duration

	// DeadlineHit reports whether the global budget expired before all
	// sources finished
	DeadlineHit bool
}

// CountByOutcome returns how many sources ended with the given outcome.
func (s *RunSummary) CountByOutcome(o Outcome) int {
	n := 0
	for _, r := range s.Reports {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// FormatElapsed renders a duration the way the CLI summary prints it.
func FormatElapsed(d time.Duration) string {
	totalSecs := int64(d.Seconds())
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	seconds := totalSecs % 60
	millis := d.Milliseconds() % 1000

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds %dms", hours, minutes, seconds, millis)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds %dms", minutes, seconds, millis)
	case seconds > 0:
		return fmt.Sprintf("%ds %dms", seconds, millis)
	default:
		return fmt.Sprintf("%dms", millis)
	}
}
