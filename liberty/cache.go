package liberty

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/etnz/billsync"
)

// diskCache implements a simple disk cache for HTTP responses.
//
// Keys are unique per day, so entries expire every day. Only successful
// responses are stored.
type diskCache struct {
	base  http.RoundTripper
	dir   string
	today func() billsync.Date
}

// EnableDailyCache makes c cache successful responses in dir for the day.
// It avoids hitting the API again when a run is repeated the same day.
func (c *Client) EnableDailyCache(dir string) {
	if c.HTTP == nil {
		c.HTTP = new(http.Client)
	}
	base := c.HTTP.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.HTTP.Transport = &diskCache{base: base, dir: dir, today: billsync.Today}
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	key := fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL.String())
	key = fmt.Sprintf("bsync-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		log.Debug("usage cache hit", "url", req.URL.Path, "key", key)
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug("http", "method", resp.Request.Method, "host", resp.Request.URL.Host, "path", resp.Request.URL.Path, "status", resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Warn("cache write error (ignored)", "err", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. The response body remains readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	// responses hold billing data, keep them private.
	return os.WriteFile(filepath.Join(c.dir, key), content, 0600)
}
