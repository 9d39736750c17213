// internal/sources/virustotal/virustotal.go
package virustotal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
)

func init() {
	if err := registry.Global().Register(
		"virustotal",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Config.Credential, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "virustotal",
			Description:  "VirusTotal v3 domain subdomains endpoint",
			RequiresAuth: true,
		},
	); err != nil {
		logx.New().Warn("failed to register virustotal source", "error", err.Error())
	}
}

// maxPages bounds cursor pagination on very large domains.
const maxPages = 50

// VirusTotal pages through the v3 subdomains relationship with cursor
// pagination.
type VirusTotal struct {
	client  *httpclient.Client
	cred    domain.Credential
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, cred domain.Credential, logger logx.Logger) *VirusTotal {
	return &VirusTotal{
		client:  client,
		cred:    cred,
		logger:  logger,
		baseURL: "https://www.virustotal.com",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (v *VirusTotal) SetBaseURL(u string) { v.baseURL = u }

func (v *VirusTotal) Name() string { return "virustotal" }

func (v *VirusTotal) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	if v.cred.IsZero() {
		return errors.Wrap(errors.ErrMissingCredential, "virustotal requires an API key")
	}

	cursor := ""
	for page := 0; page < maxPages; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		reqURL := fmt.Sprintf("%s/api/v3/domains/%s/subdomains?limit=1000", v.baseURL, target.Root)
		if cursor != "" {
			reqURL += "&cursor=" + url.QueryEscape(cursor)
		}

		body, err := v.client.Fetch(ctx, reqURL, map[string]string{
			"x-apikey": v.cred.Key,
			"Accept":   "application/json",
		})
		if err != nil {
			return err
		}

		var parsed subdomainResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return errors.Wrapf(errors.ErrInvalidResponse, "virustotal returned non-JSON payload: %v", err)
		}

		v.logger.Debug("parsed virustotal page", "page", page+1, "entries", len(parsed.Data))

		for _, entry := range parsed.Data {
			if entry.ID == "" {
				continue
			}
			if err := sink.Submit(entry.ID); err != nil {
				return err
			}
		}

		if parsed.Meta.Cursor == "" {
			return nil
		}
		cursor = parsed.Meta.Cursor
	}

	return nil
}

type subdomainResponse struct {
	Data []subdomainEntry `json:"data"`
	Meta struct {
		Cursor string `json:"cursor"`
	} `json:"meta"`
}

type subdomainEntry struct {
	ID string `json:"id"`
}
