// internal/sources/anubis/anubis_test.go
package anubis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"subsweep/internal/core/domain"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/testutil"
)

func newSource(serverURL string) *Anubis {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, logx.NewSilent())
	src.SetBaseURL(serverURL)
	return src
}

func TestAnubis_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anubis/subdomains/example.com" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`["www.example.com", "mail.example.com"]`))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	testutil.AssertSortedEqual(t, sink.Hostnames(), []string{"mail.example.com", "www.example.com"}, "array entries submitted")
}

func TestAnubis_NonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("service unavailable"))
	}))
	defer server.Close()

	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertTrue(t, errors.IsInvalidResponse(err), "non-JSON payload is a parse failure")
}
