// internal/sources/bufferover/bufferover.go
package bufferover

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
)

func init() {
	if err := registry.Global().Register(
		"bufferover",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "bufferover",
			Description:  "BufferOver DNS and TLS datasets",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register bufferover source", "error", err.Error())
	}
}

// BufferOver queries the dns and tls bufferover.run datasets. Records come
// back as "ip,hostname" pairs. The first endpoint that answers wins.
type BufferOver struct {
	client   *httpclient.Client
	logger   logx.Logger
	baseURLs []string
}

func New(client *httpclient.Client, logger logx.Logger) *BufferOver {
	return &BufferOver{
		client:   client.WithRetries(3),
		logger:   logger,
		baseURLs: []string{"https://dns.bufferover.run", "https://tls.bufferover.run"},
	}
}

// SetBaseURLs overrides the endpoints. Intended for tests.
func (b *BufferOver) SetBaseURLs(urls ...string) { b.baseURLs = urls }

func (b *BufferOver) Name() string { return "bufferover" }

func (b *BufferOver) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	var parsed dnsResponse
	var lastErr error
	found := false

	for _, base := range b.baseURLs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/dns?q=.%s", base, target.Root)
		body, err := b.client.FetchJSON(ctx, url)
		if err != nil {
			b.logger.Debug("bufferover endpoint failed", "url", url, "error", err.Error())
			lastErr = err
			continue
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			lastErr = errors.Wrapf(errors.ErrInvalidResponse, "bufferover returned non-JSON payload: %v", err)
			continue
		}
		found = true
		break
	}
	if !found {
		return lastErr
	}

	records := make([]string, 0, len(parsed.FDNSA)+len(parsed.RDNS)+len(parsed.Results))
	records = append(records, parsed.FDNSA...)
	records = append(records, parsed.RDNS...)
	records = append(records, parsed.Results...)

	count := 0
	for _, record := range records {
		// dataset rows look like "1.2.3.4,host.example.com"
		host := record
		if i := strings.LastIndex(record, ","); i >= 0 {
			host = record[i+1:]
		}
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if err := sink.Submit(host); err != nil {
			return err
		}
		count++
	}

	b.logger.Debug("parsed bufferover records", "count", count)
	return nil
}

type dnsResponse struct {
	FDNSA   []string `json:"FDNS_A"`
	RDNS    []string `json:"RDNS"`
	Results []string `json:"Results"`
}
