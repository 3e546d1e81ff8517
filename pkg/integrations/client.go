package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/fsutil"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/store"
)

// maxBodySize bounds JSON and text responses read into memory.
const maxBodySize = 128 << 20

// Options configures a Client. Every field is optional.
type Options struct {
	// Store persists documents passed through Cached. Defaults to NullStore.
	Store store.Store
	// Headers are set on every request.
	Headers map[string]string
	Hooks   observability.HTTPHooks
	Logger  *log.Logger
}

// Client provides shared HTTP functionality for all upstream clients.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	store   store.Store
	headers map[string]string
	hooks   observability.HTTPHooks
	logger  *log.Logger
}

// NewClient wraps httpClient. A nil httpClient uses a client with a 30s
// timeout over the default transport.
func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		http:    httpClient,
		store:   opts.Store,
		headers: opts.Headers,
		hooks:   opts.Hooks,
		logger:  opts.Logger,
	}
	if c.store == nil {
		c.store = store.NewNullStore()
	}
	if c.hooks == nil {
		c.hooks = observability.NoopHTTPHooks{}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// HTTP returns the underlying http.Client.
func (c *Client) HTTP() *http.Client { return c.http }

// Store returns the persistent store.
func (c *Client) Store() store.Store { return c.store }

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// GetJSON performs a GET and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	data, err := c.GetBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeJSONParse, err, "decode %s", rawURL)
	}
	return nil
}

// GetBytes performs a GET and returns the response body.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL)
	}
	return data, nil
}

// GetText performs a GET and returns the body with surrounding whitespace
// trimmed. Useful for .sha1 and .md5 sidecar files.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	data, err := c.GetBytes(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Head performs a HEAD request and returns the Content-Length, or -1 when
// the server does not report one.
func (c *Client) Head(ctx context.Context, rawURL string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.ContentLength, nil
}

// Download streams rawURL into dest. When expectedSHA1 is set the file is
// verified before it replaces dest; a mismatch leaves dest untouched and
// returns an INTEGRITY error.
func (c *Client) Download(ctx context.Context, rawURL, dest, expectedSHA1 string) error {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", filepath.Dir(dest))
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create temporary file for %s", dest)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeNetwork, err, "download %s", rawURL)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", dest)
	}

	if expectedSHA1 != "" && !fsutil.VerifyFileSHA1(name, expectedSHA1) {
		got, _ := fsutil.FileSHA1(name)
		return errors.New(errors.ErrCodeIntegrity, "%s: sha1 %s, want %s", rawURL, got, expectedSHA1)
	}
	if err := os.Rename(name, dest); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "move download into %s", dest)
	}
	c.logger.Debug("downloaded", "url", rawURL, "dest", dest)
	return nil
}

// Cached loads v from the store under key, or runs fetch to populate v and
// stores the result for ttl. Store failures degrade to a plain fetch.
func (c *Client) Cached(ctx context.Context, key string, ttl time.Duration, v any, fetch func(ctx context.Context) error) error {
	if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		}
		c.logger.Debug("discarding undecodable store entry", "key", key)
	} else if err != nil {
		c.logger.Warn("store read failed", "key", key, "err", err)
	}

	if err := fetch(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", key)
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("store write failed", "key", key, "err", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	c.hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, redact(rawURL))
	}
	c.hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, rawURL); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *http.Response, rawURL string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", redact(rawURL))
	case code == http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: retry, URL: rawURL}, "%s", redact(rawURL))
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d", redact(rawURL), code)
	}
}

// redact drops query strings and credentials from URLs before they reach
// error messages.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}

// JoinURL appends path segments to base with exactly one slash between
// each part.
func JoinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
