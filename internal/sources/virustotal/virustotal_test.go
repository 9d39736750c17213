// internal/sources/virustotal/virustotal_test.go
package virustotal

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

func newSource(serverURL string, cred domain.Credential) *VirusTotal {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, cred, logx.NewSilent())
	src.SetBaseURL(serverURL)
	return src
}

func TestVirusTotal_CursorPaging(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("x-apikey"))

		if r.URL.Query().Get("cursor") == "" {
			w.Write([]byte(`{"data": [{"id": "www.example.com"}], "meta": {"cursor": "abc"}}`))
			return
		}
		w.Write([]byte(`{"data": [{"id": "api.example.com"}], "meta": {}}`))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	src := newSource(server.URL, domain.Credential{Key: "vt-key"})
	err := src.Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	testutil.AssertLen(t, keys, 2, "both pages fetched")
	testutil.AssertEqual(t, keys[0], "vt-key", "API key header")
	testutil.AssertSortedEqual(t, sink.Hostnames(),
		[]string{"api.example.com", "www.example.com"}, "entries from every page")
}

func TestVirusTotal_MissingCredential(t *testing.T) {
	src := newSource("http://unused", domain.Credential{})
	err := src.Run(context.Background(), domain.NewTarget("example.com"), testutil.NewCaptureSink())
	testutil.AssertTrue(t, errors.IsMissingCredential(err), "no key means skip")
}
