// internal/sources/anubis/anubis.go
package anubis

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
		"anubis",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "anubis",
			Description:  "Anubis subdomain database via jldc.me",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register anubis source", "error", err.Error())
	}
}

// Anubis queries the jldc.me Anubis database, which answers with a plain
// JSON array of hostnames.
type Anubis struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, logger logx.Logger) *Anubis {
	return &Anubis{
		client:  client,
		logger:  logger,
		baseURL: "https://jldc.me",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (a *Anubis) SetBaseURL(u string) { a.baseURL = u }

func (a *Anubis) Name() string { return "anubis" }

func (a *Anubis) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	url := fmt.Sprintf("%s/anubis/subdomains/%s", a.baseURL, target.Root)

	body, err := a.client.FetchJSON(ctx, url)
	if err != nil {
		return err
	}

	var hostnames []string
	if err := json.Unmarshal(body, &hostnames); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "anubis returned non-JSON payload: %v", err)
	}

	a.logger.Debug("parsed anubis hostnames", "count", len(hostnames))

	for _, host := range hostnames {
		if err := sink.Submit(host); err != nil {
			return err
		}
	}
	return nil
}
