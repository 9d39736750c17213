// internal/sources/riddler/riddler.go
package riddler

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
)

func init() {
	if err := registry.Global().Register(
		"riddler",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "riddler",
			Description:  "Riddler.io crawl data CSV export",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register riddler source", "error", err.Error())
	}
}

// Riddler queries the riddler.io CSV export. The HTTPS endpoint misbehaves
// at times, so the plain HTTP one is tried as a fallback.
type Riddler struct {
	client   *httpclient.Client
	logger   logx.Logger
	baseURLs []string
}

func New(client *httpclient.Client, logger logx.Logger) *Riddler {
	return &Riddler{
		client:   client,
		logger:   logger,
		baseURLs: []string{"https://riddler.io", "http://riddler.io"},
	}
}

// SetBaseURLs overrides the endpoints. Intended for tests.
func (r *Riddler) SetBaseURLs(urls ...string) { r.baseURLs = urls }

func (r *Riddler) Name() string { return "riddler" }

func (r *Riddler) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	var body []byte
	var lastErr error

	for _, base := range r.baseURLs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/search/exportcsv?q=pld:%s", base, target.Root)
		data, err := r.client.Fetch(ctx, url, nil)
		if err != nil {
			r.logger.Debug("riddler endpoint failed", "url", url, "error", err.Error())
			lastErr = err
			continue
		}
		body = data
		lastErr = nil
		break
	}
	if lastErr != nil {
		return lastErr
	}

	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	count := 0
	for scanner.Scan() {
		// each line of the export is a bare hostname
		host := strings.TrimSpace(scanner.Text())
		if host == "" {
			continue
		}
		if err := sink.Submit(host); err != nil {
			return err
		}
		count++
	}

	r.logger.Debug("parsed riddler lines", "count", count)
	return nil
}
