// internal/sources/webarchive/webarchive_test.go
package webarchive

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

func newSource(serverURL string) *WebArchive {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, logx.NewSilent())
	src.SetBaseURL(serverURL)
	return src
}

func TestWebArchive_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`https://www.example.com/page
http://api.example.com:8080/v1/users
not a url

https://www.example.com/other
`))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	got := sink.Hostnames()
	testutil.AssertContains(t, got, "www.example.com", "host extracted from archived URL")
	testutil.AssertContains(t, got, "api.example.com", "port stripped from host")
	testutil.AssertNotContains(t, got, "not a url", "junk lines skipped")
}

func TestWebArchive_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertTrue(t, errors.Is(err, errors.ErrServiceUnavailable), "503 maps to service unavailable")
}
