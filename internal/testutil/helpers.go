// internal/testutil/helpers.go
package testutil

import (
	"sort"
	"testing"
	"time"
)

// AssertEqual verifies two values are equal.
func AssertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// AssertNotEqual verifies two values differ.
func AssertNotEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got == want {
		t.Errorf("%s: got %v, should not equal %v", msg, got, want)
	}
}

// AssertNil verifies a value is nil.
func AssertNil(t *testing.T, got interface{}, msg string) {
	t.Helper()
	if got != nil {
		t.Errorf("%s: expected nil, got %v", msg, got)
	}
}

// AssertNotNil verifies a value is not nil.
func AssertNotNil(t *testing.T, got interface{}, msg string) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected non-nil value", msg)
	}
}

// AssertError verifies an error is not nil.
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected error, got nil", msg)
	}
}

// AssertNoError verifies there is no error.
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// AssertTrue verifies a condition holds.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: expected true, got false", msg)
	}
}

// AssertFalse verifies a condition does not hold.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("%s: expected false, got true", msg)
	}
}

// AssertContains verifies a string slice contains an element.
func AssertContains(t *testing.T, container []string, element string, msg string) {
	t.Helper()
	for _, item := range container {
		if item == element {
			return
		}
	}
	t.Errorf("%s: slice %v does not contain %s", msg, container, element)
}

// AssertNotContains verifies a string slice does not contain an element.
func AssertNotContains(t *testing.T, container []string, element string, msg string) {
	t.Helper()
	for _, item := range container {
		if item == element {
			t.Errorf("%s: slice %v should not contain %s", msg, container, element)
			return
		}
	}
}

// AssertLen verifies the length of a string slice.
func AssertLen(t *testing.T, slice []string, want int, msg string) {
	t.Helper()
	if len(slice) != want {
		t.Errorf("%s: got length %d, want %d", msg, len(slice), want)
	}
}

// AssertSortedEqual verifies a slice equals want regardless of input order.
func AssertSortedEqual(t *testing.T, got, want []string, msg string) {
	t.Helper()
	g := append([]string{}, got...)
	w := append([]string{}, want...)
	sort.Strings(g)
	sort.Strings(w)
	if len(g) != len(w) {
		t.Errorf("%s: got %v, want %v", msg, g, w)
		return
	}
	for i := range g {
		if g[i] != w[i] {
			t.Errorf("%s: got %v, want %v", msg, g, w)
			return
		}
	}
}

// Sleep is a helper for tests that need delays (use sparingly).
func Sleep(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
