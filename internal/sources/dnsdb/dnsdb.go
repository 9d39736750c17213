// internal/sources/dnsdb/dnsdb.go
package dnsdb

import (
	"bufio"
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
		"dnsdb",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Config.Credential, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "dnsdb",
			Description:  "Farsight DNSDB passive DNS rrset lookup",
			RequiresAuth: true,
		},
	); err != nil {
		logx.New().Warn("failed to register dnsdb source", "error", err.Error())
	}
}

// DNSDB queries Farsight's passive DNS database. The API streams one JSON
// record per line.
type DNSDB struct {
	client  *httpclient.Client
	cred    domain.Credential
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, cred domain.Credential, logger logx.Logger) *DNSDB {
	return &DNSDB{
		client:  client,
		cred:    cred,
		logger:  logger,
		baseURL: "https://api.dnsdb.info",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (d *DNSDB) SetBaseURL(u string) { d.baseURL = u }

func (d *DNSDB) Name() string { return "dnsdb" }

func (d *DNSDB) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	if d.cred.IsZero() {
		return errors.Wrap(errors.ErrMissingCredential, "dnsdb requires an API key")
	}

	url := fmt.Sprintf("%s/lookup/rrset/name/*.%s/ANY", d.baseURL, target.Root)
	resp, err := d.client.Get(ctx, url, map[string]string{
		"X-API-Key": d.cred.Key,
		"Accept":    "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record rrsetRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}
		if record.RRName == "" {
			continue
		}
		if err := sink.Submit(record.RRName); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	d.logger.Debug("parsed dnsdb records", "count", count)
	return nil
}

type rrsetRecord struct {
	RRName string `json:"rrname"`
}
