package validator

import (
	"testing"

	"subsweep/internal/testutil"
)

func TestIsDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"example.com", true},
		{"sub.example.com", true},
		{"a-b.example.com", true},
		{"example", true}, // single label is syntactically fine
		{"", false},
		{"-bad.example.com", false},
		{"bad-.example.com", false},
		{"exa mple.com", false},
		{"192.168.1.1", false},
		{"under_score.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			testutil.AssertEqual(t, IsDomain(tt.domain), tt.want, "IsDomain result")
		})
	}
}

func TestIsEnumerableDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"example.com", true},
		{"deep.sub.example.com", true},
		{"example.co.uk", true},
		{"com", false},   // bare TLD
		{"co.uk", false}, // bare public suffix
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			testutil.AssertEqual(t, IsEnumerableDomain(tt.domain), tt.want, "IsEnumerableDomain result")
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example.COM", "example.com"},
		{"  example.com  ", "example.com"},
		{"example.com.", "example.com"},
		{"EXAMPLE.com.", "example.com"},
	}

	for _, tt := range tests {
		testutil.AssertEqual(t, NormalizeDomain(tt.in), tt.want, "NormalizeDomain result")
	}
}

func TestIsHostnameLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"www", true},
		{"a", true},
		{"api-v2", true},
		{"", false},
		{"-api", false},
		{"api-", false},
		{"ap_i", false},
		{"star*", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			testutil.AssertEqual(t, IsHostnameLabel(tt.label), tt.want, "IsHostnameLabel result")
		})
	}
}
