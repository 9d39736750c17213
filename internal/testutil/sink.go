// internal/testutil/sink.go
package testutil

import "sync"

// CaptureSink records every submitted hostname. Safe for concurrent use.
type CaptureSink struct {
	mu        sync.Mutex
	hostnames []string
	failWith  error
}

// NewCaptureSink returns an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// FailWith makes every subsequent Submit return err.
func (c *CaptureSink) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

func (c *CaptureSink) Submit(hostname string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.hostnames = append(c.hostnames, hostname)
	return nil
}

// Hostnames returns a copy of everything submitted so far.
func (c *CaptureSink) Hostnames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.hostnames))
	copy(out, c.hostnames)
	return out
}
