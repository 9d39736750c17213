// internal/sources/chaos/chaos.go
package chaos

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
		"chaos",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Config.Credential, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "chaos",
			Description:  "ProjectDiscovery Chaos dataset",
			RequiresAuth: true,
		},
	); err != nil {
		logx.New().Warn("failed to register chaos source", "error", err.Error())
	}
}

// Chaos queries the ProjectDiscovery Chaos dataset. The API answers with
// bare subdomain labels, not full hostnames.
type Chaos struct {
	client  *httpclient.Client
	cred    domain.Credential
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, cred domain.Credential, logger logx.Logger) *Chaos {
	return &Chaos{
		client:  client,
		cred:    cred,
		logger:  logger,
		baseURL: "https://dns.projectdiscovery.io",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (c *Chaos) SetBaseURL(u string) { c.baseURL = u }

func (c *Chaos) Name() string { return "chaos" }

func (c *Chaos) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	if c.cred.IsZero() {
		return errors.Wrap(errors.ErrMissingCredential, "chaos requires an API key")
	}

	url := fmt.Sprintf("%s/dns/%s/subdomains", c.baseURL, target.Root)
	body, err := c.client.Fetch(ctx, url, map[string]string{
		"Authorization": c.cred.Key,
		"Accept":        "application/json",
	})
	if err != nil {
		return err
	}

	var parsed chaosResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "chaos returned non-JSON payload: %v", err)
	}

	c.logger.Debug("parsed chaos subdomains", "count", len(parsed.Subdomains))

	for _, label := range parsed.Subdomains {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if err := sink.Submit(label + "." + target.Root); err != nil {
			return err
		}
	}
	return nil
}

type chaosResponse struct {
	Subdomains []string `json:"subdomains"`
}
