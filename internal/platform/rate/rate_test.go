package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"subsweep/internal/testutil"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		rate       float64
		burst      int
		wantRate   float64
		wantBurst  int
		wantTokens float64
	}{
		{
			name:       "valid rate and burst",
			rate:       10.0,
			burst:      5,
			wantRate:   10.0,
			wantBurst:  5,
			wantTokens: 5.0,
		},
		{
			name:       "zero rate defaults to 1",
			rate:       0,
			burst:      5,
			wantRate:   1.0,
			wantBurst:  5,
			wantTokens: 5.0,
		},
		{
			name:       "zero burst defaults to 1",
			rate:       10.0,
			burst:      0,
			wantRate:   10.0,
			wantBurst:  1,
			wantTokens: 1.0,
		},
		{
			name:       "negative values default to 1",
			rate:       -5.0,
			burst:      -5,
			wantRate:   1.0,
			wantBurst:  1,
			wantTokens: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.rate, tt.burst)

			testutil.AssertEqual(t, limiter.Rate(), tt.wantRate, "rate should match")
			testutil.AssertEqual(t, limiter.Burst(), tt.wantBurst, "burst should match")
			testutil.AssertEqual(t, limiter.Tokens(), tt.wantTokens, "tokens should start at burst capacity")
		})
	}
}

func TestLimiter_Allow(t *testing.T) {
	t.Run("allows operations within burst", func(t *testing.T) {
		limiter := New(10, 5)

		for i := 0; i < 5; i++ {
			testutil.AssertTrue(t, limiter.Allow(), "should allow operation within burst")
		}

		testutil.AssertFalse(t, limiter.Allow(), "should deny operation when bucket empty")
	})

	t.Run("refills tokens over time", func(t *testing.T) {
		limiter := New(10, 1) // 10 tokens/second, burst of 1

		testutil.AssertTrue(t, limiter.Allow(), "should allow first operation")
		testutil.AssertFalse(t, limiter.Allow(), "should deny when bucket empty")

		// 100ms = 1 token at 10/s
		time.Sleep(120 * time.Millisecond)

		testutil.AssertTrue(t, limiter.Allow(), "should allow after token refill")
	})
}

func TestLimiter_Wait(t *testing.T) {
	t.Run("returns immediately with available tokens", func(t *testing.T) {
		limiter := New(10, 1)

		start := time.Now()
		err := limiter.Wait(context.Background())
		elapsed := time.Since(start)

		testutil.AssertNoError(t, err, "wait should succeed")
		testutil.AssertTrue(t, elapsed < 50*time.Millisecond, "wait should be immediate")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		limiter := New(0.1, 1) // very slow refill
		limiter.Allow()        // drain

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx)
		testutil.AssertError(t, err, "wait should fail on context timeout")
	})
}

func TestLimiter_SetBurst(t *testing.T) {
	limiter := New(10, 10)

	limiter.SetBurst(2)
	testutil.AssertEqual(t, limiter.Burst(), 2, "burst should update")
	testutil.AssertTrue(t, limiter.Tokens() <= 2.0, "tokens should be capped at new burst")
}

func TestLimiter_Concurrency(t *testing.T) {
	limiter := New(1000, 100)

	var wg sync.WaitGroup
	allowed := make(chan bool, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- limiter.Allow()
		}()
	}

	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}

	// Exactly the burst should pass immediately (small refill tolerance).
	testutil.AssertTrue(t, count >= 100 && count <= 105, "roughly burst operations should be allowed")
}
