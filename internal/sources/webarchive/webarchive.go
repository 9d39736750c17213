// internal/sources/webarchive/webarchive.go
package webarchive

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strings"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
	"subsweep/internal/sources/common"
)

func init() {
	if err := registry.Global().Register(
		"webarchive",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "webarchive",
			Description:  "Wayback Machine CDX index of archived URLs",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register webarchive source", "error", err.Error())
	}
}

// WebArchive queries the Wayback Machine CDX index for every archived URL
// under the target domain and extracts the hostnames. The CDX answer can be
// very large, so it is scanned line by line.
type WebArchive struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, logger logx.Logger) *WebArchive {
	return &WebArchive{
		client:  client,
		logger:  logger,
		baseURL: "https://web.archive.org",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (w *WebArchive) SetBaseURL(u string) { w.baseURL = u }

func (w *WebArchive) Name() string { return "webarchive" }

func (w *WebArchive) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	cdxURL := fmt.Sprintf(
		"%s/cdx/search/cdx?url=*.%s/*&output=text&fl=original&collapse=urlkey",
		w.baseURL, url.QueryEscape(target.Root),
	)

	resp, err := w.client.Get(ctx, cdxURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		host := common.HostFromURL(strings.TrimSpace(scanner.Text()))
		if host == "" {
			continue
		}
		if err := sink.Submit(host); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		// Partial results already submitted; surface the broken stream.
		return err
	}

	w.logger.Debug("scanned webarchive urls", "count", count)
	return nil
}
