// internal/sources/crtsh/crtsh_test.go
package crtsh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/usecases"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/testutil"
)

func newSource(serverURL string) *CRT {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, logx.NewSilent())
	src.SetBaseURL(serverURL)
	return src
}

func TestCRT_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("output") != "json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[
			{"common_name": "www.example.com", "name_value": "www.example.com\napi.example.com"},
			{"common_name": "", "name_value": "*.mail.example.com"}
		]`))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	got := sink.Hostnames()
	testutil.AssertContains(t, got, "www.example.com", "name_value entries submitted")
	testutil.AssertContains(t, got, "api.example.com", "multi-line name_value split")
	testutil.AssertContains(t, got, "*.mail.example.com", "wildcard passed through raw")
}

func TestCRT_NonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>crt.sh is down</html>"))
	}))
	defer server.Close()

	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertTrue(t, errors.IsInvalidResponse(err), "HTML payload is a parse failure")
}

func TestCRT_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertTrue(t, errors.IsRateLimit(err), "429 maps to the rate limit sentinel")
}

func TestCRT_RateLimitedOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Tasks:  []usecases.SourceTask{{Source: newSource(server.URL)}},
		Logger: logx.NewSilent(),
	})

	summary, err := orch.Run(context.Background(), domain.NewTarget("example.com"))
	testutil.AssertNoError(t, err, "run should produce a summary")
	testutil.AssertEqual(t, summary.Reports[0].Outcome, domain.OutcomeRateLimited, "throttled source classified as rate limited")
}
