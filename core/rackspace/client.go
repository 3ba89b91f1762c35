package rackspace

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// rateLimitWait is how long to back off when the provider reports an
// exceeded request budget before retrying the call.
const rateLimitWait = 5 * time.Second

// Document is a decoded JSON response body.
type Document map[string]any

// Result is the outcome of a single API call. Transport failures surface
// as errors from the call methods; HTTP-level failures surface here.
type Result struct {
	StatusCode int
	Body       Document
}

// OK reports whether the call succeeded.
func (r *Result) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// NotFound reports whether the call failed because the resource is absent.
func (r *Result) NotFound() bool {
	return r != nil && r.StatusCode == http.StatusNotFound
}

// Recoverable reports whether a not-found failure refers to a recently
// deleted resource that the provider can resurrect via a recovery flag on
// create.
func (r *Result) Recoverable() bool {
	if r == nil || r.Body == nil {
		return false
	}
	fault, ok := r.Body["itemNotFoundFault"].(map[string]any)
	if !ok {
		return false
	}
	extra, ok := fault["additionalData"].(map[string]any)
	if !ok {
		return false
	}
	recoverable, _ := extra["isRecoverable"].(bool)
	return recoverable
}

// rateLimited reports whether the provider rejected the call for exceeding
// its request budget. The provider answers 403 Forbidden for this rather
// than 429.
func (r *Result) rateLimited() bool {
	if r == nil || r.StatusCode != http.StatusForbidden || r.Body == nil {
		return false
	}
	fault, ok := r.Body["unauthorizedFault"].(map[string]any)
	if !ok {
		return false
	}
	msg, _ := fault["message"].(string)
	return msg == "Exceeded request limits"
}

// Client is the provider REST API client. It owns request signing and
// rate limiting; callers see blocking calls that return a Result or a
// transport error.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *RateLimiter
	log     *zap.Logger
}

// NewClient creates a provider API client from the configuration.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
		},
		limiter: NewRateLimiter(cfg.ReadPerMinute, cfg.WritePerMinute),
		log:     log,
	}
}

// Paths returns a path builder scoped to the configured customer and the
// given domain.
func (c *Client) Paths(domain string) Paths {
	return Paths{CustomerID: c.cfg.CustomerID, Domain: domain}
}

// Get performs a GET request. Query parameters are optional.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Result, error) {
	return c.call(ctx, http.MethodGet, BucketRead, path, query, nil)
}

// Put performs a PUT request with a form-encoded body.
func (c *Client) Put(ctx context.Context, path string, body url.Values) (*Result, error) {
	return c.call(ctx, http.MethodPut, BucketWrite, path, nil, body)
}

// Post performs a POST request with a form-encoded body.
func (c *Client) Post(ctx context.Context, path string, body url.Values) (*Result, error) {
	return c.call(ctx, http.MethodPost, BucketWrite, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Result, error) {
	return c.call(ctx, http.MethodDelete, BucketWrite, path, nil, nil)
}

func (c *Client) call(ctx context.Context, method, bucket, path string, query url.Values, body url.Values) (*Result, error) {
	for {
		if err := c.limiter.Wait(ctx, bucket); err != nil {
			return nil, err
		}

		result, err := c.send(ctx, method, path, query, body)
		if err != nil {
			return nil, err
		}

		// The provider signals an exhausted request budget as 403 with a
		// fault body. Back off and repeat the call.
		if result.rateLimited() {
			c.log.Warn("provider request limit exceeded, backing off",
				zap.String("path", path),
				zap.Duration("wait", rateLimitWait))
			select {
			case <-time.After(rateLimitWait):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return result, nil
	}
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body url.Values) (*Result, error) {
	fullURL := c.cfg.APIURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Api-Signature", c.signature(time.Now()))
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.log.Debug("api call", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	result := &Result{StatusCode: resp.StatusCode}
	if len(raw) > 0 {
		var doc Document
		if err := json.Unmarshal(raw, &doc); err == nil {
			result.Body = doc
		}
	}

	if !result.OK() {
		c.log.Debug("api call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", result.StatusCode))
	}

	return result, nil
}

// signature builds the X-Api-Signature header value:
// userKey:timestamp:base64(sha1(userKey + userAgent + timestamp + secretKey)).
func (c *Client) signature(now time.Time) string {
	stamp := now.Format("20060102150405")
	base := c.cfg.UserKey + c.cfg.UserAgent + stamp + c.cfg.SecretKey

	sum := sha1.Sum([]byte(base))
	encoded := base64.StdEncoding.EncodeToString(sum[:])

	return fmt.Sprintf("%s:%s:%s", c.cfg.UserKey, stamp, encoded)
}

// Page describes the position of a paginated list response.
type Page struct {
	Offset int
	Size   int
	Total  int
}

// PageOf extracts pagination metadata from a list response.
func PageOf(doc Document) (Page, error) {
	var page Page
	for _, item := range []struct {
		key string
		dst *int
	}{
		{"offset", &page.Offset},
		{"size", &page.Size},
		{"total", &page.Total},
	} {
		v, ok := doc[item.key].(float64)
		if !ok {
			return Page{}, fmt.Errorf("list response missing %q", item.key)
		}
		*item.dst = int(v)
	}
	return page, nil
}

// Last reports whether this is the final page.
func (p Page) Last() bool {
	return p.Offset+p.Size > p.Total
}

// Next returns the query values requesting the page after this one.
func (p Page) Next() url.Values {
	return PageQuery(p.Offset+p.Size, p.Size)
}

// PageQuery returns the query values requesting a list page.
func PageQuery(offset, size int) url.Values {
	return url.Values{
		"size":   []string{fmt.Sprint(size)},
		"offset": []string{fmt.Sprint(offset)},
	}
}
