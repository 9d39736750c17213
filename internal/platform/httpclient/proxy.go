// internal/platform/httpclient/proxy.go
package httpclient

import (
	"context"
	"strings"

	"subsweep/internal/platform/errors"
)

// DefaultEchoURL is the endpoint used to confirm traffic flows through the
// configured proxy. It returns the caller's public IPv4 address as plain text.
const DefaultEchoURL = "https://ipv4.icanhazip.com/"

// VerifyProxyOptions controls the proxy pre-flight check.
type VerifyProxyOptions struct {
	// EchoURL overrides the IP echo endpoint. Empty means DefaultEchoURL.
	EchoURL string

	// ExpectedIP, when set, must match the echoed address exactly.
	ExpectedIP string
}

// VerifyProxy confirms the proxy is reachable and actually relaying traffic
// by requesting an IP echo service through the client. Any failure means the
// run must not proceed, so the error wraps ErrProxyVerification.
func (c *Client) VerifyProxy(ctx context.Context, opts VerifyProxyOptions) (string, error) {
	echoURL := opts.EchoURL
	if echoURL == "" {
		echoURL = DefaultEchoURL
	}

	resp, err := c.Get(ctx, echoURL, nil)
	if err != nil {
		return "", errors.Wrapf(errors.ErrProxyVerification, "proxy check request failed: %v", err)
	}

	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return "", errors.Wrapf(errors.ErrProxyVerification, "proxy check returned error: %v", err)
	}

	body, err := ReadBody(resp)
	if err != nil {
		return "", errors.Wrapf(errors.ErrProxyVerification, "reading proxy check response: %v", err)
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", errors.Wrap(errors.ErrProxyVerification, "proxy check returned empty body")
	}

	if opts.ExpectedIP != "" && ip != opts.ExpectedIP {
		return "", errors.Wrapf(errors.ErrProxyVerification, "egress IP %s does not match expected %s", ip, opts.ExpectedIP)
	}

	c.logger.Info("proxy verified", "egress_ip", ip)
	return ip, nil
}
