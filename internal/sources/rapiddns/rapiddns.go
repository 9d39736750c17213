// internal/sources/rapiddns/rapiddns.go
package rapiddns

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
)

func init() {
	if err := registry.Global().Register(
		"rapiddns",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "rapiddns",
			Description:  "RapidDNS subdomain listing (HTML, paginated)",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register rapiddns source", "error", err.Error())
	}
}

var pagePattern = regexp.MustCompile(`href="/subdomain/[^"]+\?page=(\d+)"`)

// RapidDNS scrapes the rapiddns.io subdomain listing. Results are an HTML
// table spread over numbered pages; the page links on the first page tell
// how many there are.
type RapidDNS struct {
	client   *httpclient.Client
	logger   logx.Logger
	baseURL  string
	maxPages int
}

func New(client *httpclient.Client, logger logx.Logger) *RapidDNS {
	return &RapidDNS{
		client:   client,
		logger:   logger,
		baseURL:  "https://rapiddns.io",
		maxPages: 50,
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (r *RapidDNS) SetBaseURL(u string) { r.baseURL = u }

func (r *RapidDNS) Name() string { return "rapiddns" }

func (r *RapidDNS) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	page := 1
	lastPage := 1

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/subdomain/%s?page=%d&full=1", r.baseURL, target.Root, page)
		body, err := r.client.Fetch(ctx, url, nil)
		if err != nil {
			if page > 1 {
				// keep what earlier pages already delivered
				r.logger.Debug("rapiddns page failed, stopping", "page", page, "error", err.Error())
				return nil
			}
			return err
		}

		text := string(body)
		if !looksLikeHTML(text) {
			if page > 1 {
				return nil
			}
			return errors.Wrap(errors.ErrInvalidResponse, "rapiddns returned non-HTML payload")
		}

		count, err := r.scrapeTable(text, sink)
		if err != nil {
			return err
		}
		r.logger.Debug("scraped rapiddns page", "page", page, "hostnames", count)

		if page == 1 {
			lastPage = r.findLastPage(text)
			if lastPage > r.maxPages {
				lastPage = r.maxPages
			}
		}

		if page >= lastPage {
			return nil
		}
		page++
	}
}

// scrapeTable walks the document and submits the text of every first cell
// in the results table.
func (r *RapidDNS) scrapeTable(text string, sink ports.Sink) (int, error) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidResponse, "rapiddns HTML did not parse: %v", err)
	}

	count := 0
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == "tr" {
			// hostname lives in the first td of each row
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "td" {
					host := strings.TrimSpace(nodeText(c))
					if host != "" {
						if err := sink.Submit(host); err != nil {
							return err
						}
						count++
					}
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc); err != nil {
		return count, err
	}
	return count, nil
}

func (r *RapidDNS) findLastPage(text string) int {
	last := 1
	for _, m := range pagePattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > last {
			last = n
		}
	}
	return last
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func looksLikeHTML(text string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(text))
	return strings.HasPrefix(trimmed, "<!doctype html") || strings.HasPrefix(trimmed, "<html")
}
