// internal/sources/riddler/riddler_test.go
package riddler

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

func newSource(urls ...string) *Riddler {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, logx.NewSilent())
	src.SetBaseURLs(urls...)
	return src
}

func TestRiddler_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/exportcsv" || r.URL.Query().Get("q") != "pld:example.com" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte("www.example.com\n\nstage.example.com\n"))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	testutil.AssertSortedEqual(t, sink.Hostnames(), []string{"stage.example.com", "www.example.com"}, "blank lines skipped")
}

func TestRiddler_FallsBackToSecondEndpoint(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("backup.example.com\n"))
	}))
	defer working.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(broken.URL, working.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "second endpoint should carry the run")
	testutil.AssertContains(t, sink.Hostnames(), "backup.example.com", "fallback endpoint parsed")
}
