// internal/sources/crtsh/crtsh.go
package crtsh

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
		"crtsh",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "crtsh",
			Description:  "Certificate Transparency log search via crt.sh",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register crtsh source", "error", err.Error())
	}
}

// CRT queries the crt.sh certificate transparency database for hostnames
// appearing in issued certificates.
type CRT struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

// New creates a crt.sh source backed by the shared HTTP client.
func New(client *httpclient.Client, logger logx.Logger) *CRT {
	return &CRT{
		client:  client,
		logger:  logger,
		baseURL: "https://crt.sh",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (c *CRT) SetBaseURL(u string) { c.baseURL = u }

func (c *CRT) Name() string { return "crtsh" }

// Run fetches all certificate records matching %.domain and submits every
// name they cover.
func (c *CRT) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	url := fmt.Sprintf("%s/?q=%%25.%s&output=json", c.baseURL, target.Root)

	body, err := c.client.FetchJSON(ctx, url)
	if err != nil {
		return err
	}

	var records []certRecord
	if err := json.Unmarshal(body, &records); err != nil {
		// crt.sh occasionally answers with an HTML error page
		return errors.Wrapf(errors.ErrInvalidResponse, "crtsh returned non-JSON payload: %v", err)
	}

	c.logger.Debug("parsed crtsh records", "count", len(records))

	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// name_value can hold several names separated by newlines
		for _, host := range strings.Split(record.NameValue, "\n") {
			host = strings.TrimSpace(host)
			if host == "" {
				continue
			}
			if err := sink.Submit(host); err != nil {
				return err
			}
		}
		if record.CommonName != "" {
			if err := sink.Submit(record.CommonName); err != nil {
				return err
			}
		}
	}

	return nil
}

// certRecord is one crt.sh certificate entry.
type certRecord struct {
	CommonName string `json:"common_name"`
	NameValue  string `json:"name_value"`
}
