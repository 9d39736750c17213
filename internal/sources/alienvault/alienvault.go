// internal/sources/alienvault/alienvault.go
package alienvault

import (
	"context"
	"encoding/json"
	"fmt"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
)

func init() {
	if err := registry.Global().Register(
		"alienvault",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "alienvault",
			Description:  "AlienVault OTX passive DNS records",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register alienvault source", "error", err.Error())
	}
}

// AlienVault queries the OTX passive DNS endpoint.
type AlienVault struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, logger logx.Logger) *AlienVault {
	return &AlienVault{
		client:  client,
		logger:  logger,
		baseURL: "https://otx.alienvault.com",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (a *AlienVault) SetBaseURL(u string) { a.baseURL = u }

func (a *AlienVault) Name() string { return "alienvault" }

func (a *AlienVault) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	url := fmt.Sprintf("%s/api/v1/indicators/domain/%s/passive_dns", a.baseURL, target.Root)

	body, err := a.client.FetchJSON(ctx, url)
	if err != nil {
		return err
	}

	var parsed otxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "alienvault returned non-JSON payload: %v", err)
	}

	a.logger.Debug("parsed alienvault records", "count", len(parsed.PassiveDNS))

	for _, record := range parsed.PassiveDNS {
		if record.Hostname == "" {
			continue
		}
		if err := sink.Submit(record.Hostname); err != nil {
			return err
		}
	}
	return nil
}

type otxResponse struct {
	PassiveDNS []passiveDNSRecord `json:"passive_dns"`
}

type passiveDNSRecord struct {
	Hostname string `json:"hostname"`
}
