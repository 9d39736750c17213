// internal/sources/bufferover/bufferover_test.go
package bufferover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"subsweep/internal/core/domain"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/testutil"
)

func newSource(urls ...string) *BufferOver {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, logx.NewSilent())
	src.SetBaseURLs(urls...)
	return src
}

func TestBufferOver_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dns" || r.URL.Query().Get("q") != ".example.com" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{
			"FDNS_A": ["1.2.3.4,www.example.com", "5.6.7.8,api.example.com"],
			"RDNS": ["9.9.9.9,mail.example.com"],
			"Results": ["cdn.example.com"]
		}`))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	got := sink.Hostnames()
	testutil.AssertContains(t, got, "www.example.com", "FDNS_A host after comma")
	testutil.AssertContains(t, got, "mail.example.com", "RDNS host after comma")
	testutil.AssertContains(t, got, "cdn.example.com", "bare Results entry")
	testutil.AssertNotContains(t, got, "1.2.3.4,www.example.com", "ip prefix stripped")
}

func TestBufferOver_FallsBackToSecondEndpoint(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Results": ["tls.example.com"]}`))
	}))
	defer working.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(broken.URL, working.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "second endpoint should carry the run")
	testutil.AssertContains(t, sink.Hostnames(), "tls.example.com", "fallback endpoint parsed")
}

func TestBufferOver_AllEndpointsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertError(t, err, "no endpoint answered")
}
