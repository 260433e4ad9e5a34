package adminhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Client calls a handler created by NewHandler.
type Client struct {
	base *url.URL
	hc   *http.Client
}

// NewClient returns a client for the handler served at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf("invalid base URL: %q", baseURL)
	}

	c := &Client{base: base, hc: http.DefaultClient}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c, nil
}

// CacheNames lists the registered caches.
func (c *Client) CacheNames(ctx context.Context) ([]string, error) {
	var list CacheList
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "caches"), &list); err != nil {
		return nil, err
	}
	return list.Caches, nil
}

// ItemKeys lists the registered item keys of a cache.
func (c *Client) ItemKeys(ctx context.Context, name string) ([]string, error) {
	var list ItemList
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "caches", name, "items"), &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) ClearCache(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(nil, "caches", name), nil)
}

func (c *Client) ClearCacheItem(ctx context.Context, name, key string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint(url.Values{"key": {key}}, "caches", name, "items"), nil)
}

func (c *Client) RefreshItem(ctx context.Context, name, key string) error {
	return c.do(ctx, http.MethodPost, c.endpoint(url.Values{"key": {key}}, "caches", name, "items", "refresh"), nil)
}

func (c *Client) RefreshCache(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, c.endpoint(nil, "caches", name, "refresh"), nil)
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var body ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
			body.Error = strings.TrimSpace(string(raw))
			if body.Error == "" {
				body.Error = resp.Status
			}
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: body.Error, Code: body.Code}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
