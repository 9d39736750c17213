// internal/core/usecases/aggregator.go
package usecases

import (
	"sort"
	"sync"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
)

// Aggregator collects hostnames from concurrently running sources into a
// deduplicated, scope-checked set. All methods are safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	target  domain.Target
	seen    map[string]struct{}
	stats   map[string]*sourceStats
	invalid int
	closed  bool
}

type sourceStats struct {
	submitted   int
	contributed int
}

// NewAggregator creates an aggregator scoped to target.
func NewAggregator(target domain.Target) *Aggregator {
	return &Aggregator{
		target: target,
		seen:   make(map[string]struct{}),
		stats:  make(map[string]*sourceStats),
	}
}

// SinkFor returns a sink that attributes submissions to the named source.
// Sinks for different sources may be used concurrently.
func (a *Aggregator) SinkFor(source string) ports.Sink {
	return &sourceSink{agg: a, source: source}
}

type sourceSink struct {
	agg    *Aggregator
	source string
}

func (s *sourceSink) Submit(hostname string) error {
	return s.agg.submit(s.source, hostname)
}

// submit normalizes a raw candidate and records it if it is a new in-scope
// subdomain. Out-of-scope and malformed values count as invalid but never
// fail the submitting source.
func (a *Aggregator) submit(source, raw string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errors.ErrAggregatorClosed
	}

	st := a.stats[source]
	if st == nil {
		st = &sourceStats{}
		a.stats[source] = st
	}
	st.submitted++

	hostname := domain.CleanHostname(raw)
	if !a.target.IsInScope(hostname) {
		a.invalid++
		return nil
	}

	if _, dup := a.seen[hostname]; dup {
		return nil
	}
	a.seen[hostname] = struct{}{}
	st.contributed++
	return nil
}

// Drain closes the aggregator and returns the collected hostnames in
// lexicographic order. Submissions after Drain fail with ErrAggregatorClosed.
// Draining twice returns the same set.
func (a *Aggregator) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true

	hostnames := make([]string, 0, len(a.seen))
	for h := range a.seen {
		hostnames = append(hostnames, h)
	}
	sort.Strings(hostnames)
	return hostnames
}

// Stats returns how many hostnames a source submitted and how many of them
// were new in-scope discoveries.
func (a *Aggregator) Stats(source string) (submitted, contributed int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.stats[source]
	if st == nil {
		return 0, 0
	}
	return st.submitted, st.contributed
}

// InvalidCount returns how many submissions were rejected as out of scope
// or malformed.
func (a *Aggregator) InvalidCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.invalid
}

// Size returns the number of unique in-scope hostnames collected so far.
func (a *Aggregator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.seen)
}
