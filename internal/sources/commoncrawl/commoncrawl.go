// internal/sources/commoncrawl/commoncrawl.go
package commoncrawl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

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
		"commoncrawl",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "commoncrawl",
			Description:  "Common Crawl CDX indexes of crawled URLs",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register commoncrawl source", "error", err.Error())
	}
}

// maxYearsBack bounds how far back in the index catalog to search.
const maxYearsBack = 5

// CommonCrawl lists the crawl index catalog, picks one index per year for
// the recent past, and scans each index's CDX records for URLs under the
// target domain.
type CommonCrawl struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
	now     func() time.Time
}

func New(client *httpclient.Client, logger logx.Logger) *CommonCrawl {
	return &CommonCrawl{
		client:  client,
		logger:  logger,
		baseURL: "https://index.commoncrawl.org",
		now:     time.Now,
	}
}

// SetBaseURL overrides the catalog endpoint. Intended for tests.
func (c *CommonCrawl) SetBaseURL(u string) { c.baseURL = u }

func (c *CommonCrawl) Name() string { return "commoncrawl" }

func (c *CommonCrawl) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	body, err := c.client.FetchJSON(ctx, c.baseURL+"/collinfo.json")
	if err != nil {
		return err
	}

	var catalog []crawlIndex
	if err := json.Unmarshal(body, &catalog); err != nil {
		return errors.Wrapf(errors.ErrInvalidResponse, "commoncrawl catalog is not JSON: %v", err)
	}

	apis := c.selectIndexes(catalog)
	c.logger.Debug("selected commoncrawl indexes", "count", len(apis))

	var lastErr error
	for _, api := range apis {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.scanIndex(ctx, api, target, sink); err != nil {
			if ctx.Err() != nil || errors.Is(err, errors.ErrAggregatorClosed) {
				return err
			}
			// one broken index never discards the others
			c.logger.Debug("commoncrawl index failed", "api", api, "error", err.Error())
			lastErr = err
		}
	}

	if lastErr != nil && len(apis) == 1 {
		return lastErr
	}
	return nil
}

// selectIndexes picks the first index found for each of the last
// maxYearsBack years, newest first.
func (c *CommonCrawl) selectIndexes(catalog []crawlIndex) []string {
	currentYear := c.now().Year()
	apis := make([]string, 0, maxYearsBack+1)

	for year := currentYear; year >= currentYear-maxYearsBack; year-- {
		yearStr := strconv.Itoa(year)
		for _, idx := range catalog {
			if strings.Contains(idx.ID, yearStr) {
				apis = append(apis, idx.API)
				break
			}
		}
	}
	return apis
}

func (c *CommonCrawl) scanIndex(ctx context.Context, api string, target domain.Target, sink ports.Sink) error {
	url := fmt.Sprintf("%s?url=*.%s&output=json&fl=url", api, target.Root)

	resp, err := c.client.Get(ctx, url, nil)
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

		var record cdxRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}

		host := common.HostFromURL(record.URL)
		if host == "" {
			continue
		}
		if err := sink.Submit(host); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	c.logger.Debug("scanned commoncrawl index", "api", api, "urls", count)
	return nil
}

type crawlIndex struct {
	ID  string `json:"id"`
	API string `json:"cdx-api"`
}

type cdxRecord struct {
	URL string `json:"url"`
}
