// internal/sources/certspotter/certspotter_test.go
package certspotter

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

func newSource(serverURL string, cred domain.Credential) *CertSpotter {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, cred, logx.NewSilent())
	src.SetBaseURL(serverURL)
	return src
}

func TestCertSpotter_PagesUntilEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sekret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("after") {
		case "":
			w.Write([]byte(`[{"id": "100", "dns_names": ["www.example.com", "api.example.com"]}]`))
		case "100":
			w.Write([]byte(`[{"id": "200", "dns_names": ["mail.example.com"]}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	src := newSource(server.URL, domain.Credential{Key: "sekret"})
	err := src.Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	got := sink.Hostnames()
	testutil.AssertContains(t, got, "www.example.com", "first page names")
	testutil.AssertContains(t, got, "mail.example.com", "second page reached via after id")
	testutil.AssertLen(t, got, 3, "all pages collected")
}

func TestCertSpotter_MissingCredential(t *testing.T) {
	src := newSource("http://unused.invalid", domain.Credential{})
	err := src.Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertTrue(t, errors.IsMissingCredential(err), "keyless run must be skippable")
}

func TestCertSpotter_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	src := newSource(server.URL, domain.Credential{Key: "bad"})
	err := src.Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertError(t, err, "rejected key surfaces as an error")
}
