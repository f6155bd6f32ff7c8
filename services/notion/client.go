// Package notion is a small client for the parts of the Notion API the
// scheduler needs: resolving a database to its data source, querying rows,
// archiving and creating pages.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	Token      string
	Version    string
	BaseURL    string
	RatePerSec float64
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the Notion REST API. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	version string
	limiter *rate.Limiter
	logger  *zap.Logger

	// database id -> data source id; filled lazily, never invalidated.
	mu          sync.RWMutex
	dataSources map[string]string
}

// NewClient builds a client. A zero RatePerSec disables throttling.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	burst := 1
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
		burst = int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		version:     opts.Version,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger,
		dataSources: make(map[string]string),
	}
}

// APIError is an error response from Notion.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notion: rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notion: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("notion: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notion: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("notion request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notion: decode %s %s: %w", method, path, err)
	}
	return nil
}

// DataSourceID resolves a database id to its first data source id. Results
// are cached for the life of the client.
func (c *Client) DataSourceID(ctx context.Context, databaseID string) (string, error) {
	c.mu.RLock()
	cached, ok := c.dataSources[databaseID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var db struct {
		DataSources []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data_sources"`
	}
	if err := c.do(ctx, http.MethodGet, "databases/"+databaseID, nil, &db); err != nil {
		return "", err
	}
	if len(db.DataSources) == 0 || db.DataSources[0].ID == "" {
		return "", fmt.Errorf("notion: no data_sources for %s", databaseID)
	}

	id := db.DataSources[0].ID
	c.mu.Lock()
	c.dataSources[databaseID] = id
	c.mu.Unlock()
	return id, nil
}

const queryPageSize = 100

// QueryAll returns every page of a data source matching filter, following
// pagination cursors. A nil filter returns all rows.
func (c *Client) QueryAll(ctx context.Context, dataSourceID string, filter map[string]any) ([]Page, error) {
	var (
		pages  []Page
		cursor string
	)
	for {
		body := map[string]any{"page_size": queryPageSize}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var resp struct {
			Results    []Page  `json:"results"`
			HasMore    bool    `json:"has_more"`
			NextCursor *string `json:"next_cursor"`
		}
		if err := c.do(ctx, http.MethodPost, "data_sources/"+dataSourceID+"/query", body, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		cursor = *resp.NextCursor
	}
}

// ArchivePage moves a page out of every view.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	return c.do(ctx, http.MethodPatch, "pages/"+pageID, map[string]any{"archived": true}, nil)
}

// CreatePage adds a row to a data source.
func (c *Client) CreatePage(ctx context.Context, dataSourceID string, properties map[string]any) (Page, error) {
	body := map[string]any{
		"parent": map[string]any{
			"type":           "data_source_id",
			"data_source_id": dataSourceID,
		},
		"properties": properties,
	}
	var page Page
	if err := c.do(ctx, http.MethodPost, "pages", body, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Ping checks that the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "users/me", nil, nil)
}
