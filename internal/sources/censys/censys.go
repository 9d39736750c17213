// internal/sources/censys/censys.go
package censys

import (
	"context"
	"encoding/base64"
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
		"censys",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Config.Credential, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "censys",
			Description:  "Censys host search over certificate names",
			RequiresAuth: true,
		},
	); err != nil {
		logx.New().Warn("failed to register censys source", "error", err.Error())
	}
}

// Censys searches the Censys hosts index for entries whose names cover the
// target domain. Authentication is an API id/secret pair via basic auth.
type Censys struct {
	client  *httpclient.Client
	cred    domain.Credential
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, cred domain.Credential, logger logx.Logger) *Censys {
	return &Censys{
		client:  client,
		cred:    cred,
		logger:  logger,
		baseURL: "https://search.censys.io",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (c *Censys) SetBaseURL(u string) { c.baseURL = u }

func (c *Censys) Name() string { return "censys" }

func (c *Censys) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	if c.cred.Key == "" || c.cred.Secret == "" {
		return errors.Wrap(errors.ErrMissingCredential, "censys requires an API id and secret")
	}

	payload, err := json.Marshal(searchRequest{
		Query:        fmt.Sprintf("names: %s", target.Root),
		PerPage:      100,
		VirtualHosts: "INCLUDE",
	})
	if err != nil {
		return err
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.cred.Key + ":" + c.cred.Secret))
	resp, err := c.client.Post(ctx, c.baseURL+"/api/v2/hosts/search", strings.NewReader(string(payload)), map[string]string{
		"Authorization": "Basic " + basic,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	})
	if err != nil {
		return err
	}

	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return err
	}

	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "censys returned non-JSON payload: %v", err)
	}

	count := 0
	for _, hit := range parsed.Result.Hits {
		for _, name := range hit.Names {
			if err := sink.Submit(name); err != nil {
				return err
			}
			count++
		}
	}

	c.logger.Debug("parsed censys names", "hits", len(parsed.Result.Hits), "names", count)
	return nil
}

type searchRequest struct {
	Query        string `json:"q"`
	PerPage      int    `json:"per_page"`
	VirtualHosts string `json:"virtual_hosts"`
}

type searchResponse struct {
	Result struct {
		Hits []searchHit `json:"hits"`
	} `json:"result"`
}

type searchHit struct {
	Names []string `json:"names"`
}
