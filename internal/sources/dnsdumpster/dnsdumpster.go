// internal/sources/dnsdumpster/dnsdumpster.go
package dnsdumpster

import (
	"context"
	"net/url"
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
		"dnsdumpster",
		func(deps registry.Deps) (ports.Source, error) {
			return New(deps.Client, deps.Logger), nil
		},
		ports.SourceMetadata{
			Name:         "dnsdumpster",
			Description:  "DNSDumpster web form scraping",
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register dnsdumpster source", "error", err.Error())
	}
}

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DNSDumpster drives the dnsdumpster.com search form: fetch the landing page
// for a CSRF token (the shared client's cookie jar keeps the session), then
// POST the domain and scrape the DNS records table from the answer.
type DNSDumpster struct {
	client  *httpclient.Client
	logger  logx.Logger
	baseURL string
}

func New(client *httpclient.Client, logger logx.Logger) *DNSDumpster {
	return &DNSDumpster{
		client:  client,
		logger:  logger,
		baseURL: "https://dnsdumpster.com",
	}
}

// SetBaseURL overrides the endpoint. Intended for tests.
func (d *DNSDumpster) SetBaseURL(u string) { d.baseURL = u }

func (d *DNSDumpster) Name() string { return "dnsdumpster" }

func (d *DNSDumpster) Run(ctx context.Context, target domain.Target, sink ports.Sink) error {
	token, err := d.fetchCSRFToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"csrfmiddlewaretoken": {token},
		"targetip":            {target.Root},
		"user":                {"free"},
	}
	headers := map[string]string{
		"Referer":    d.baseURL + "/",
		"User-Agent": browserUA,
	}

	resp, err := d.client.PostForm(ctx, d.baseURL+"/", form, headers)
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

	count, err := d.scrapeRecords(string(body), sink)
	if err != nil {
		return err
	}

	d.logger.Debug("scraped dnsdumpster records", "count", count)
	return nil
}

// fetchCSRFToken loads the landing page and pulls the csrfmiddlewaretoken
// hidden input.
func (d *DNSDumpster) fetchCSRFToken(ctx context.Context) (string, error) {
	body, err := d.client.Fetch(ctx, d.baseURL+"/", map[string]string{"User-Agent": browserUA})
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidResponse, "dnsdumpster landing page did not parse: %v", err)
	}

	var token string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if token != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == "csrfmiddlewaretoken" {
			token = attr(n, "value")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if token == "" {
		return "", errors.Wrap(errors.ErrInvalidResponse, "dnsdumpster landing page has no CSRF token")
	}
	return token, nil
}

// scrapeRecords walks the result tables and submits the hostname cell of
// every A/AAAA/CNAME row.
func (d *DNSDumpster) scrapeRecords(text string, sink ports.Sink) (int, error) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidResponse, "dnsdumpster result page did not parse: %v", err)
	}

	count := 0
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := childElements(n, "td")
			if len(cells) >= 2 {
				recordType := strings.ToLower(strings.TrimSpace(nodeText(cells[0])))
				if strings.Contains(recordType, "a") || strings.Contains(recordType, "cname") {
					for _, part := range strings.Fields(nodeText(cells[1])) {
						if err := sink.Submit(part); err != nil {
							return err
						}
						count++
					}
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

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func childElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
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
