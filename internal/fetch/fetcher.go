// Package fetch performs single-URL retrievals using the Colly collector.
// Retry policy belongs to the caller; this package only surfaces failures
// uniformly as *FetchError.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// DefaultUserAgent is the fixed browser identity sent with every request.
// The source site rejects default client identities.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)" +
	" AppleWebKit/537.36 (KHTML, like Gecko)" +
	" Chrome/85.0.4183.102 Safari/537.36"

// FetchError reports a failed retrieval: a non-success HTTP status or a
// transport-level failure for a single URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Client fetches pages through a shared base collector with pooled transport.
type Client struct {
	cfg  Config
	base *colly.Collector
}

// New builds a Client.
func New(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())
	return &Client{cfg: cfg, base: c}
}

// Fetch executes a single HTTP GET and returns the page body. Any non-success
// response or transport failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	collector := c.base.Clone()
	collector.UserAgent = c.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(c.cfg.Timeout)

	var (
		body     []byte
		fetchErr *FetchError
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &FetchError{URL: url, StatusCode: status, Err: err}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, &FetchError{URL: url, Err: ctx.Err()}
	case err := <-done:
		if fetchErr != nil {
			return nil, fetchErr
		}
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		return body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
