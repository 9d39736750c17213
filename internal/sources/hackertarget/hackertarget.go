// internal/sources/hackertarget/hackertarget.go
package hackertarget

import (
	"bufio"
	"context"
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
		"hackertarget",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "hackertarget",
			Description:  "HackerTarget hostsearch API",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register hackertarget source", "error", err.Error())
	}
}

// HackerTarget queries the hostsearch endpoint, which answers with
// "hostname,ip" CSV lines. Quota exhaustion arrives as a 200 response whose
// body says "API count exceeded".
type HackerTarget struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, logger logx.Logger) *HackerTarget {
	return &HackerTarget{
		client:  client,
		logger:  logger,
		baseURL: "https://api.hackertarget.com",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (h *HackerTarget) SetBaseURL(u string) { h.baseURL = u }

func (h *HackerTarget) Name() string { return "hackertarget" }

func (h *HackerTarget) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	url := fmt.Sprintf("%s/hostsearch/?q=%s", h.baseURL, target.Root)

	body, err := h.client.Fetch(ctx, url, nil)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	count := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.Contains(line, "API count exceeded") {
			return errors.Wrap(errors.ErrRateLimit, "hackertarget API count exceeded")
		}

		host, _, _ := strings.Cut(line, ",")
		if host == "" {
			continue
		}
		if err := sink.Submit(host); err != nil {
			return err
		}
		count++
	}

	h.logger.Debug("parsed hackertarget lines", "count", count)
	return nil
}
