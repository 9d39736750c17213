package errors

import (
	"testing"

	"subsweep/internal/testutil"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrap(baseErr, "additional context")

		testutil.AssertNotNil(t, wrapped, "wrapped error should not be nil")
		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertTrue(t, wrapped.Error() == "additional context: base error", "error message should include context")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		wrapped := Wrap(nil, "context")
		testutil.AssertTrue(t, wrapped == nil, "wrapping nil should return nil")
	})

	t.Run("multiple wraps preserve chain", func(t *testing.T) {
		baseErr := New("base")
		wrapped1 := Wrap(baseErr, "layer 1")
		wrapped2 := Wrap(wrapped1, "layer 2")

		testutil.AssertTrue(t, Is(wrapped2, baseErr), "should unwrap to base error")
		testutil.AssertTrue(t, wrapped2.Error() == "layer 2: layer 1: base", "should show full chain")
	})
}

func TestWrapf(t *testing.T) {
	t.Run("wraps error with formatted context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrapf(baseErr, "failed for source=%s", "crtsh")

		testutil.AssertNotNil(t, wrapped, "wrapped error should not be nil")
		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertTrue(t, wrapped.Error() == "failed for source=crtsh: base error", "error message should include formatted context")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		wrapped := Wrapf(nil, "context %s", "test")
		testutil.AssertTrue(t, wrapped == nil, "wrapping nil should return nil")
	})
}

func TestIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "matches sentinel error",
			err:    ErrTimeout,
			target: ErrTimeout,
			want:   true,
		},
		{
			name:   "matches wrapped sentinel error",
			err:    Wrap(ErrRateLimit, "hackertarget"),
			target: ErrRateLimit,
			want:   true,
		},
		{
			name:   "does not match different error",
			err:    ErrTimeout,
			target: ErrMissingCredential,
			want:   false,
		},
		{
			name:   "nil does not match",
			err:    nil,
			target: ErrTimeout,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Is(tt.err, tt.target)
			testutil.AssertEqual(t, got, tt.want, "Is() result should match expected")
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"configuration error is fatal", Wrap(ErrConfiguration, "bad proxy spec"), true},
		{"proxy verification error is fatal", ErrProxyVerification, true},
		{"rate limit is not fatal", ErrRateLimit, false},
		{"missing credential is not fatal", ErrMissingCredential, false},
		{"parse error is not fatal", Wrap(ErrInvalidResponse, "crtsh"), false},
		{"transport error is not fatal", ErrConnectionFailed, false},
		{"nil is not fatal", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsFatal(tt.err), tt.want, "IsFatal() result")
		})
	}
}

func TestTaxonomyHelpers(t *testing.T) {
	testutil.AssertTrue(t, IsTimeout(Wrap(ErrTimeout, "ctx")), "IsTimeout on wrapped sentinel")
	testutil.AssertTrue(t, IsRateLimit(ErrRateLimit), "IsRateLimit on sentinel")
	testutil.AssertTrue(t, IsMissingCredential(Wrapf(ErrMissingCredential, "source %s", "chaos")), "IsMissingCredential on wrapped sentinel")
	testutil.AssertTrue(t, IsInvalidResponse(ErrInvalidResponse), "IsInvalidResponse on sentinel")
	testutil.AssertTrue(t, IsConnectionFailed(ErrConnectionFailed), "IsConnectionFailed on sentinel")
	testutil.AssertFalse(t, IsTimeout(ErrRateLimit), "IsTimeout should not match rate limit")
}
