// internal/sources/certspotter/certspotter.go
package certspotter

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
		"certspotter",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Config.Credential, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "certspotter",
			Description:  "SSLMate Cert Spotter issuance log",
			RequiresAuth: true,
		},
	); err != nil {
		logx.New().Warn("failed to register certspotter source", "error", err.Error())
	}
}

// maxPages bounds after-id pagination.
const maxPages = 100

// CertSpotter pages through certificate issuances for the domain. Each page
// is a JSON array; pagination continues from the last issuance id until an
// empty page arrives.
type CertSpotter struct {
	client  *httpclient.Client
	cred    domain.Credential
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, cred domain.Credential, logger logx.Logger) *CertSpotter {
	return &CertSpotter{
		client:  client,
		cred:    cred,
		logger:  logger,
		baseURL: "https://api.certspotter.com",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (c *CertSpotter) SetBaseURL(u string) { c.baseURL = u }

func (c *CertSpotter) Name() string { return "certspotter" }

func (c *CertSpotter) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	if c.cred.IsZero() {
		return errors.Wrap(errors.ErrMissingCredential, "certspotter requires an API key")
	}

	afterID := ""
	for page := 0; page < maxPages; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		reqURL := fmt.Sprintf(
			"%s/v1/issuances?domain=%s&include_subdomains=true&expand=dns_names",
			c.baseURL, url.QueryEscape(target.Root),
		)
		if afterID != "" {
			reqURL += "&after=" + url.QueryEscape(afterID)
		}

		body, err := c.client.Fetch(ctx, reqURL, map[string]string{
			"Authorization": "Bearer " + c.cred.Key,
			"Accept":        "application/json",
		})
		if err != nil {
			return err
		}

		var issuances []issuance
		if err := json.Unmarshal(body, &issuances); err != nil {
			return errors.Wrapf(errors.ErrInvalidResponse, "certspotter returned non-JSON payload: %v", err)
		}
		if len(issuances) == 0 {
			return nil
		}

		c.logger.Debug("parsed certspotter page", "page", page+1, "issuances", len(issuances))

		for _, iss := range issuances {
			for _, name := range iss.DNSNames {
				if err := sink.Submit(name); err != nil {
					return err
				}
			}
		}

		afterID = issuances[len(issuances)-1].ID
	}

	return nil
}

type issuance struct {
	ID       string   `json:"id"`
	DNSNames []string `json:"dns_names"`
}
