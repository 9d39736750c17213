// internal/sources/github/github.go
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
	"subsweep/internal/sources/common"
)

func init() {
	if err := registry.Global().Register(
		"github",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Config.Credential, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "github",
			Description:  "GitHub code search for subdomain mentions",
			RequiresAuth: true,
		},
	); err != nil {
		logx.New().Warn("failed to register github source", "error", err.Error())
	}
}

// GitHub searches code on GitHub for mentions of the target domain and
// scans the matched fragments for subdomains.
type GitHub struct {
	client  *httpclient.Client
	cred    domain.Credential
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, cred domain.Credential, logger logx.Logger) *GitHub {
	return &GitHub{
		client:  client,
		cred:    cred,
		logger:  logger,
		baseURL: "https://api.github.com",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (g *GitHub) SetBaseURL(u string) { g.baseURL = u }

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	if g.cred.IsZero() {
		return errors.Wrap(errors.ErrMissingCredential, "github requires an API token")
	}

	query := url.QueryEscape(target.Root + " in:file")
	searchURL := fmt.Sprintf("%s/search/code?q=%s&per_page=100", g.baseURL, query)

	body, err := g.client.Fetch(ctx, searchURL, map[string]string{
		"Authorization": "token " + g.cred.Key,
		// text-match media type makes the API include matched fragments
		"Accept": "application/vnd.github.v3.text-match+json",
	})
	if err != nil {
		return err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "github returned non-JSON payload: %v", err)
	}

	count := 0
	for _, item := range parsed.Items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, match := range item.TextMatches {
			for _, word := range strings.Fields(match.Fragment) {
				token := strings.ToLower(common.TrimToken(word))
				if token == "" || !strings.HasSuffix(token, target.Root) {
					continue
				}
				if err := sink.Submit(token); err != nil {
					return err
				}
				count++
			}
		}
	}

	g.logger.Debug("scanned github fragments", "items", len(parsed.Items), "candidates", count)
	return nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	TextMatches []textMatch `json:"text_matches"`
}

type textMatch struct {
	Fragment string `json:"fragment"`
}
