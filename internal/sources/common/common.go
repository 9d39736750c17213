// Package common provides shared helpers for source implementations.
package common

import (
	"net/url"
	"strings"
)

// HostFromURL extracts the lowercase hostname from a raw URL, or "" when
// the value does not parse as a URL with a host.
func HostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// TrimToken strips leading and trailing characters that cannot appear in a
// hostname. Used when scanning free text for subdomain mentions.
func TrimToken(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '.' || r == '-':
			return false
		default:
			return true
		}
	})
}
