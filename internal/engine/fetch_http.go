package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 2 << 20

// Response is the part of an HTTP response the resolver cares about.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Getter performs a single HTTP GET with custom headers.
// On a read failure it returns the partial Response alongside the error.
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// HTTPGetter implements Getter over net/http. It never retries.
type HTTPGetter struct {
	Client *http.Client // nil = Cfg.HTTPClient, then a default client
}

// NewFetchClient creates an HTTP client for API calls.
func NewFetchClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: timeout,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("stopped after 5 redirects")
			}
			return nil
		},
	}
}

func (g HTTPGetter) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	if Cfg.HTTPClient != nil {
		return Cfg.HTTPClient
	}
	return NewFetchClient(Cfg.FetchTimeout)
}

// Get sends the request and reads the whole (capped) body.
func (g HTTPGetter) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	metrics.FetchRequests.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgentBot)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return out, fmt.Errorf("read body: %w", err)
	}
	out.Body = body
	return out, nil
}

// readResponseBody reads the response body, handling gzip decompression if needed.
// Go's transport only decompresses transparently when it set Accept-Encoding itself.
func readResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(io.LimitReader(gz, maxBodyBytes))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
