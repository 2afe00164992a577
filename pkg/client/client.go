// Package client implements the HomeShare transfer client: resumable
// chunked uploads driven by the server's authoritative offset, bounded
// range previews with truncation detection, archive bundling of a path
// selection, and the simple browse/manage proxy calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"homeshare/pkg/apierror"
)

// DefaultChunkSize is a tuning constant, not a protocol requirement: the
// server accepts any valid sub-range, which is what makes mid-chunk
// resumption after a crash possible.
const DefaultChunkSize int64 = 512 * 1024

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      SessionCache

	// ChunkSize is the upload slice length. Zero means DefaultChunkSize.
	ChunkSize int64
}

// New builds a client for the given server base URL. cache may be nil, in
// which case uploads still work but cannot resume across process restarts.
func New(baseURL string, cache SessionCache) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		cache:      cache,
	}
}

func (c *Client) chunkSize() int64 {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return DefaultChunkSize
}

func (c *Client) endpoint(apiPath string, query url.Values) string {
	u := c.baseURL + apiPath
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   *apierror.APIError `json:"error"`
}

// decodeInto parses the server's JSON envelope, converting error envelopes
// into *apierror.APIError carrying the HTTP status.
func decodeInto(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if unmarshalErr := json.Unmarshal(body, &env); unmarshalErr != nil {
		if resp.StatusCode >= 400 {
			return apierror.New("HTTP_ERROR", http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)), resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", unmarshalErr)
	}

	if !env.Success {
		if env.Error != nil {
			env.Error.HTTPStatus = resp.StatusCode
			return env.Error
		}
		return apierror.New("HTTP_ERROR", http.StatusText(resp.StatusCode), "", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, apiPath string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(apiPath, query), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	return decodeInto(resp, out)
}

func (c *Client) sendJSON(ctx context.Context, method string, apiPath string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(apiPath, nil), bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	return decodeInto(resp, out)
}

// ── Browse / manage proxy calls ──────────────────────────────────

type Entry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human,omitempty"`
	Extension  string    `json:"extension,omitempty"`
	IsImage    bool      `json:"is_image,omitempty"`
	IsVideo    bool      `json:"is_video,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
	ItemCount  *int      `json:"item_count,omitempty"`
}

type Listing struct {
	CurrentPath string  `json:"current_path"`
	ParentPath  string  `json:"parent_path"`
	Items       []Entry `json:"items"`
}

type ServerInfo struct {
	ShareRoot      string `json:"share_root"`
	ReadOnly       bool   `json:"read_only"`
	AllowOverwrite bool   `json:"allow_overwrite"`
	Version        string `json:"version"`
}

func (c *Client) List(ctx context.Context, path string) (Listing, error) {
	var listing Listing
	err := c.getJSON(ctx, "/api/v1/files", url.Values{"path": {path}}, &listing)
	return listing, err
}

func (c *Client) Stat(ctx context.Context, path string) (Entry, error) {
	var entry Entry
	err := c.getJSON(ctx, "/api/v1/files/info", url.Values{"path": {path}}, &entry)
	return entry, err
}

func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.getJSON(ctx, "/api/v1/info", nil, &info)
	return info, err
}

func (c *Client) Mkdir(ctx context.Context, path string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/v1/directories", map[string]string{"path": path}, nil)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.endpoint("/api/v1/files", url.Values{"path": {path}}), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	return decodeInto(resp, nil)
}

func (c *Client) Move(ctx context.Context, source string, destination string) error {
	payload := map[string]string{"source": source, "destination": destination}
	return c.sendJSON(ctx, http.MethodPut, "/api/v1/files/move", payload, nil)
}
