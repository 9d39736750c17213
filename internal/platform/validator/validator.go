// internal/platform/validator/validator.go
package validator

import (
	"net"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Domain validators

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)

// IsDomain verifies a string is a syntactically valid domain name.
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}

	if !domainRegex.MatchString(domain) {
		return false
	}

	// An IP address is not a domain
	if net.ParseIP(domain) != nil {
		return false
	}

	return true
}

// IsEnumerableDomain verifies a domain is a reasonable enumeration target:
// syntactically valid and carrying a registrable eTLD+1. Bare suffixes like
// "com" or "co.uk" are rejected.
func IsEnumerableDomain(domain string) bool {
	if !IsDomain(domain) {
		return false
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return false
	}
	return domain == etld1 || strings.HasSuffix(domain, "."+etld1)
}

// NormalizeDomain normalizes a domain to its canonical lookup form.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	return domain
}

// Hostname label rules shared by every source's output filter.

// IsHostnameLabel verifies a single DNS label: 1..63 ASCII alphanumeric or
// hyphen characters, not starting or ending with a hyphen.
func IsHostnameLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !alnum && c != '-' {
			return false
		}
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	return true
}

// Network validators

// IsIP verifies a string is a valid IP address (v4 or v6).
func IsIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsPort verifies a port is in the valid range [1-65535].
func IsPort(portStr string) bool {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return port >= 1 && port <= 65535
}

// NormalizeIP normalizes an IP to its canonical form.
// Returns the empty string for invalid input.
func NormalizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	return parsed.String()
}
