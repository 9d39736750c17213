// internal/sources/alienvault/alienvault_test.go
package alienvault

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

func newSource(serverURL string) *AlienVault {
	client := httpclient.New(httpclient.DefaultConfig(), logx.NewSilent())
	src := New(client, logx.NewSilent())
	src.SetBaseURL(serverURL)
	return src
}

func TestAlienVault_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/indicators/domain/example.com/passive_dns" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{
			"passive_dns": [
				{"hostname": "www.example.com"},
				{"hostname": ""},
				{"hostname": "vpn.example.com"}
			]
		}`))
	}))
	defer server.Close()

	sink := testutil.NewCaptureSink()
	err := newSource(server.URL).Run(context.Background(), domain.NewTarget("example.com"), sink)

	testutil.AssertNoError(t, err, "run should succeed")
	got := sink.Hostnames()
	testutil.AssertLen(t, got, 2, "empty hostnames skipped")
	testutil.AssertContains(t, got, "vpn.example.com", "passive dns hostnames submitted")
}
