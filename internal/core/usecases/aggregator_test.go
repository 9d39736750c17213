// internal/core/usecases/aggregator_test.go
package usecases

import (
	"fmt"
	"sync"
	"testing"

	"subsweep/internal/core/domain"
	"subsweep/internal/platform/errors"
	"subsweep/internal/testutil"
)

func TestAggregator_DeduplicatesAcrossSources(t *testing.T) {
	agg := NewAggregator(domain.NewTarget("example.com"))

	a := agg.SinkFor("crtsh")
	b := agg.SinkFor("anubis")

	testutil.AssertNoError(t, a.Submit("www.example.com"), "submit")
	testutil.AssertNoError(t, b.Submit("WWW.Example.com"), "duplicate with different case")
	testutil.AssertNoError(t, b.Submit("api.example.com"), "new hostname")

	got := agg.Drain()
	testutil.AssertSortedEqual(t, got, []string{"api.example.com", "www.example.com"}, "deduplicated set")

	submitted, contributed := agg.Stats("crtsh")
	testutil.AssertEqual(t, submitted, 1, "crtsh submitted")
	testutil.AssertEqual(t, contributed, 1, "crtsh contributed")

	submitted, contributed = agg.Stats("anubis")
	testutil.AssertEqual(t, submitted, 2, "anubis submitted")
	testutil.AssertEqual(t, contributed, 1, "duplicate not credited twice")
}

func TestAggregator_RejectsOutOfScope(t *testing.T) {
	agg := NewAggregator(domain.NewTarget("example.com"))
	sink := agg.SinkFor("crtsh")

	testutil.AssertNoError(t, sink.Submit("example.com"), "root itself")
	testutil.AssertNoError(t, sink.Submit("www.other.com"), "foreign domain")
	testutil.AssertNoError(t, sink.Submit("_dmarc.example.com"), "underscore label")
	testutil.AssertNoError(t, sink.Submit("good.example.com"), "valid")

	testutil.AssertEqual(t, agg.Size(), 1, "only the valid hostname kept")
	testutil.AssertEqual(t, agg.InvalidCount(), 3, "rejects counted")
}

func TestAggregator_NormalizesBeforeScoping(t *testing.T) {
	agg := NewAggregator(domain.NewTarget("example.com"))
	sink := agg.SinkFor("crtsh")

	testutil.AssertNoError(t, sink.Submit("*.mail.example.com"), "wildcard stripped")
	testutil.AssertNoError(t, sink.Submit("  API.example.com.  "), "whitespace and dot trimmed")

	got := agg.Drain()
	testutil.AssertSortedEqual(t, got, []string{"api.example.com", "mail.example.com"}, "normalized set")
}

func TestAggregator_DrainCloses(t *testing.T) {
	agg := NewAggregator(domain.NewTarget("example.com"))
	sink := agg.SinkFor("crtsh")

	testutil.AssertNoError(t, sink.Submit("a.example.com"), "submit before drain")

	first := agg.Drain()
	testutil.AssertLen(t, first, 1, "drained set")

	err := sink.Submit("b.example.com")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrAggregatorClosed), "post-drain submit rejected")

	second := agg.Drain()
	testutil.AssertSortedEqual(t, second, first, "drain is idempotent")
}

func TestAggregator_OrderIndependent(t *testing.T) {
	hostnames := []string{"c.example.com", "a.example.com", "b.example.com"}

	forward := NewAggregator(domain.NewTarget("example.com"))
	for _, h := range hostnames {
		_ = forward.SinkFor("s").Submit(h)
	}

	backward := NewAggregator(domain.NewTarget("example.com"))
	for i := len(hostnames) - 1; i >= 0; i-- {
		_ = backward.SinkFor("s").Submit(hostnames[i])
	}

	testutil.AssertSortedEqual(t, forward.Drain(), backward.Drain(), "result independent of submit order")
}

func TestAggregator_ConcurrentSubmit(t *testing.T) {
	agg := NewAggregator(domain.NewTarget("example.com"))

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			sink := agg.SinkFor(fmt.Sprintf("source-%d", g))
			for i := 0; i < 100; i++ {
				_ = sink.Submit(fmt.Sprintf("host-%d.example.com", i))
			}
		}(g)
	}
	wg.Wait()

	testutil.AssertEqual(t, agg.Size(), 100, "every unique hostname kept exactly once")
}
