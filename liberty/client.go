// Package liberty is a client of the Liberty Utilities usage API.
package liberty

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/etnz/billsync"
)

const (
	// DefaultEndpoint is the electric usage endpoint of the Liberty portal.
	DefaultEndpoint = "https://libertycf2-svc.smartcmobile.com/UsageAPI/api/V1/Electric"
	// DefaultOrigin is the customer portal the API expects requests from.
	DefaultOrigin = "https://myaccount.libertyenergyandwater.com"
	// DefaultUserAgent is the browser the token was captured from.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

	maxResponseBytes = 1 << 20 // 1 MiB
)

// Client fetches usage readings.
type Client struct {
	Endpoint  string
	Origin    string // sent as origin
	Referer   string // empty means Origin with a trailing slash
	UserAgent string
	HTTP      *http.Client
}

// NewClient returns a Client for the default endpoint with a request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		Endpoint:  DefaultEndpoint,
		Origin:    DefaultOrigin,
		UserAgent: DefaultUserAgent,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// Fetch returns the reading of account for the single day on.
//
// Errors wrap billsync.ErrTransport when the API cannot be reached or answers
// with a non-success status, and billsync.ErrNoData when it answers without any
// usable usage record. Failed calls are not retried.
func (c *Client) Fetch(ctx context.Context, account string, on billsync.Date, token string) (billsync.Reading, error) {
	data, err := c.query(ctx, account, on, token)
	if err != nil {
		return billsync.Reading{}, err
	}
	r, err := decodeReading(data)
	if err != nil {
		return billsync.Reading{}, fmt.Errorf("account %s on %s: %w", account, on, err)
	}
	return r, nil
}

// usageURL returns the query for a single day, monthly, non interval metered usage.
func (c *Client) usageURL(account string, on billsync.Date) (string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid usage endpoint %q: %w", c.Endpoint, err)
	}
	q := u.Query()
	q.Set("AccountNumber", account)
	q.Set("From", on.String())
	q.Set("To", on.String())
	q.Set("Uom", "")
	q.Set("Periodicity", "MO")
	q.Set("IsNonAmi", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// query the usage API and returns the response body of a successful call.
func (c *Client) query(ctx context.Context, account string, on billsync.Date, token string) ([]byte, error) {
	uri, err := c.usageURL(account, on)
	if err != nil {
		return nil, err
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create http request %q: %w", uri, err)
	}
	r.Header.Set("accept", "application/json, text/plain, */*")
	r.Header.Set("accept-language", "en-US,en;q=0.9")
	r.Header.Set("authorization", token)
	referer := c.Referer
	if c.Origin != "" {
		r.Header.Set("origin", c.Origin)
		if referer == "" {
			referer = c.Origin + "/"
		}
	}
	if referer != "" {
		r.Header.Set("referer", referer)
	}
	if c.UserAgent != "" {
		r.Header.Set("user-agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	log.Debug("querying usage", "account", account, "date", on)
	resp, err := client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", billsync.ErrTransport, err)
	}
	defer resp.Body.Close()

	// reading in a buffer to be able to print the json in debug mode
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxResponseBytes+1)); err != nil {
		return nil, fmt.Errorf("%w: cannot read response body: %w", billsync.ErrTransport, err)
	}
	if buf.Len() > maxResponseBytes {
		return nil, fmt.Errorf("%w: response for account %s is larger than %d bytes", billsync.ErrTransport, account, maxResponseBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cannot http GET %v%v for account %s: %v", billsync.ErrTransport, resp.Request.URL.Host, resp.Request.URL.Path, account, resp.Status)
	}
	log.Debug("usage response", "account", account, "status", resp.Status, "json", buf.String())
	return buf.Bytes(), nil
}
