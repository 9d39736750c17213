// internal/core/domain/target.go
package domain

import (
	"fmt"
	"strings"

	"subsweep/internal/platform/validator"
)

// Target is the root domain being enumerated. It is immutable for the run:
// every source queries it, and every hostname the run emits must sit inside
// its scope.
type Target struct {
	// Root is the normalized root domain
	Root string
}

// NewTarget creates a target from raw CLI input. The root is normalized
// (lowercase, trimmed, trailing dot stripped) at construction.
func NewTarget(root string) Target {
	return Target{
		Root: validator.NormalizeDomain(root),
	}
}

// Validate verifies the target is a usable enumeration root.
func (t Target) Validate() error {
	if t.Root == "" {
		return ErrEmptyTarget
	}

	if !validator.IsEnumerableDomain(t.Root) {
		return fmt.Errorf("%w: %s", ErrInvalidDomain, t.Root)
	}

	return nil
}

// CleanHostname strips the noise commonly found in raw source output:
// surrounding whitespace, wildcard prefixes, leading and trailing dots,
// and uppercasing. The result is a candidate, not necessarily valid.
func CleanHostname(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	h = strings.TrimPrefix(h, "*.")
	h = strings.TrimPrefix(h, ".")
	h = strings.TrimSuffix(h, ".")
	return h
}

// IsInScope reports whether a cleaned hostname is a proper subdomain of the
// target root. The root itself is out of scope: enumeration discovers names
// below the root, not the root.
//
// Rules carried by every source's output filter: suffix match on "."+root,
// ASCII alphanumeric/hyphen labels of 1..63 characters, no leading or
// trailing hyphens, nothing resembling a URL, wildcard, or glob.
func (t Target) IsInScope(hostname string) bool {
	if hostname == t.Root {
		return false
	}
	if !strings.HasSuffix(hostname, "."+t.Root) {
		return false
	}
	if len(hostname) <= len(t.Root)+1 {
		return false
	}

	for _, bad := range []string{"..", "@", "//", "http", "\\", "[", "]", "_", "*", "%", "?", "+"} {
		if strings.Contains(hostname, bad) {
			return false
		}
	}

	labels := strings.Split(hostname, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validator.IsHostnameLabel(label) {
			return false
		}
	}

	return true
}

// String returns a readable representation of the target.
func (t Target) String() string {
	return fmt.Sprintf("Target{root=%s}", t.Root)
}
