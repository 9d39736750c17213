// internal/sources/threatcrowd/threatcrowd.go
package threatcrowd

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
		"threatcrowd",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "threatcrowd",
			Description:  "ThreatCrowd domain report API",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register threatcrowd source", "error", err.Error())
	}
}

// ThreatCrowd queries the ThreatCrowd domain report endpoint. The service is
// flaky, so requests carry a retry budget.
type ThreatCrowd struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, logger logx.Logger) *ThreatCrowd {
	return &ThreatCrowd{
		client:  client.WithRetries(3),
		logger:  logger,
		baseURL: "https://www.threatcrowd.org",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (t *ThreatCrowd) SetBaseURL(u string) { t.baseURL = u }

func (t *ThreatCrowd) Name() string { return "threatcrowd" }

func (t *ThreatCrowd) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	url := fmt.Sprintf("%s/searchApi/v2/domain/report/?domain=%s", t.baseURL, target.Root)

	body, err := t.client.FetchJSON(ctx, url)
	if err != nil {
		return err
	}

	var parsed reportResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "threatcrowd returned non-JSON payload: %v", err)
	}

	// response_code "1" means the domain was found
	if parsed.ResponseCode != "1" {
		t.logger.Debug("threatcrowd has no report for domain", "domain", target.Root)
		return nil
	}

	t.logger.Debug("parsed threatcrowd subdomains", "count", len(parsed.Subdomains))

	for _, host := range parsed.Subdomains {
		if err := sink.Submit(host); err != nil {
			return err
		}
	}
	return nil
}

type reportResponse struct {
	ResponseCode string   `json:"response_code"`
	Subdomains   []string `json:"subdomains"`
}
