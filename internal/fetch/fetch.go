// Package fetch is the HTTP collaborator for enrichment operations. It
// fetches remote bodies with fixed connect/total timeouts and extracts
// page titles. All calls run through a circuit breaker so a dead remote
// endpoint cannot tie up the operation queue one slow timeout at a time.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/yourusername/marvin/internal/circuitbreaker"
	"github.com/yourusername/marvin/internal/errors"
	"github.com/yourusername/marvin/internal/textutil"
)

const (
	connectTimeout = 5 * time.Second
	totalTimeout   = 10 * time.Second
	userAgent      = "marvin-bot/1.0"

	// Titles longer than this are cut at a rune boundary with an
	// ellipsis appended.
	titleMaxLen = 400
)

// Fetcher is the interface the operation executor depends on; satisfied
// by Client and by fakes in tests.
type Fetcher interface {
	TextBody(ctx context.Context, rawURL string) (body, contentType string, err error)
	PageTitle(ctx context.Context, rawURL string) (string, error)
}

// Client fetches remote resources.
type Client struct {
	http    *resty.Client
	breaker *circuitbreaker.CircuitBreaker
}

// New creates a fetch client.
func New() *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
		// Sites with broken certs still have titles worth showing;
		// nothing sensitive is sent on these requests.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetTimeout(totalTimeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Client{
		http:    httpClient,
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

// TextBody fetches rawURL and returns its body and content type. The URL
// is parsed first so malformed and non-normalized input is rejected
// before any network traffic. Non-2xx statuses are errors; content-type
// filtering is left to the caller.
func (c *Client) TextBody(ctx context.Context, rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errors.NewFetchError(rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", errors.NewFetchError(rawURL, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}

	var body, contentType string
	err = c.breaker.Call(func() error {
		resp, err := c.http.R().SetContext(ctx).Get(u.String())
		if err != nil {
			return err
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("HTTP status %s", resp.Status())
		}
		body = resp.String()
		contentType = resp.Header().Get("Content-Type")
		return nil
	})
	if err != nil {
		return "", "", errors.NewFetchError(rawURL, err)
	}
	return body, contentType, nil
}

// PageTitle fetches rawURL and returns its cleaned-up page title:
// whitespace collapsed, truncated to the length budget. It returns ""
// without error when the response is not HTML, has no title, or the
// title is just the URL echoed back.
func (c *Client) PageTitle(ctx context.Context, rawURL string) (string, error) {
	body, contentType, err := c.TextBody(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(contentType, "text/html") {
		return "", nil
	}

	title := textutil.CollapseWhitespace(Title(body))
	if title == "" || title == rawURL {
		return "", nil
	}
	return textutil.TruncateRunes(title, titleMaxLen), nil
}
