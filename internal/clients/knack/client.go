package knack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/pkg/httpx"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/utils"
)

const defaultBaseURL = "https://api.knack.com/v1"

// Record is one raw legacy record: a flat map of field key to value, with an
// optional "<field>_raw" variant per field carrying structured data.
type Record map[string]any

func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

func (r Record) Get(field string) any {
	return r[field]
}

// GetPreferRaw returns the "_raw" variant when present, falling back to the
// rendered value. Extraction prefers raw because it is not HTML-rendered.
func (r Record) GetPreferRaw(field string) any {
	if v, ok := r[field+"_raw"]; ok && v != nil {
		return v
	}
	return r[field]
}

func (r Record) GetString(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

type FilterRule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value,omitempty"`
}

type Filters struct {
	Match string       `json:"match"`
	Rules []FilterRule `json:"rules"`
}

// And builds the common AND-combined filter expression.
func And(rules ...FilterRule) *Filters {
	return &Filters{Match: "and", Rules: rules}
}

type recordsPage struct {
	Records     []Record `json:"records"`
	CurrentPage any      `json:"current_page"`
	TotalPages  int      `json:"total_pages"`
}

type Client struct {
	baseURL      string
	appID        string
	apiKey       string
	httpClient   *http.Client
	log          *logger.Logger
	pageDelay    time.Duration
	retryCount   int
	retryBackoff time.Duration
}

func NewClient(log *logger.Logger) (*Client, error) {
	appID := utils.GetEnv("KNACK_APP_ID", "", log)
	apiKey := utils.GetEnv("KNACK_API_KEY", "", log)
	if appID == "" || apiKey == "" {
		return nil, fmt.Errorf("missing KNACK_APP_ID or KNACK_API_KEY")
	}
	return &Client{
		baseURL:      defaultBaseURL,
		appID:        appID,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          log.With("client", "KnackClient"),
		pageDelay:    200 * time.Millisecond,
		retryCount:   3,
		retryBackoff: time.Second,
	}, nil
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("X-Knack-Application-Id", c.appID)
	req.Header.Set("X-Knack-REST-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) fetchPage(ctx context.Context, objectKey string, filters *Filters, page, rowsPerPage int) (*recordsPage, error) {
	endpoint := fmt.Sprintf("%s/objects/%s/records", c.baseURL, objectKey)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("rows_per_page", strconv.Itoa(rowsPerPage))
	if filters != nil {
		raw, err := json.Marshal(filters)
		if err != nil {
			return nil, fmt.Errorf("marshal filters: %w", err)
		}
		params.Set("filters", string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpx.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var pageData recordsPage
	if err := json.Unmarshal(body, &pageData); err != nil {
		return nil, fmt.Errorf("decode %s page %d: %w", objectKey, page, err)
	}
	return &pageData, nil
}

// GetRecords fetches the complete result set for an object, following
// server-side pagination until the reported total-page count is exhausted.
// A failed page is logged and skipped: partial results are preferable to
// aborting a multi-hour migration. Whole-page fetches are never retried.
func (c *Client) GetRecords(ctx context.Context, objectKey string, filters *Filters) ([]Record, error) {
	const rowsPerPage = 1000

	var all []Record
	page := 1
	totalPages := 1
	skipped := 0

	for page <= totalPages {
		pageData, err := c.fetchPage(ctx, objectKey, filters, page, rowsPerPage)
		if err != nil {
			if page == 1 {
				// Nothing to go on without the first page's total_pages.
				return nil, fmt.Errorf("fetch %s page 1: %w", objectKey, err)
			}
			c.log.Warn("Page fetch failed, skipping page", "object", objectKey, "page", page, "error", err)
			skipped++
			page++
			continue
		}

		all = append(all, pageData.Records...)
		if pageData.TotalPages > 0 {
			totalPages = pageData.TotalPages
		}
		page++

		if page <= totalPages {
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return all, ctx.Err()
			}
		}
	}

	if skipped > 0 {
		c.log.Warn("Finished with skipped pages", "object", objectKey, "skipped_pages", skipped, "records", len(all))
	}
	return all, nil
}

// SearchRecords fetches only the first page of matches; used by the
// questionnaire API where a single record is expected.
func (c *Client) SearchRecords(ctx context.Context, objectKey string, filters *Filters) ([]Record, error) {
	pageData, err := c.fetchPage(ctx, objectKey, filters, 1, 100)
	if err != nil {
		return nil, err
	}
	return pageData.Records, nil
}

// UpdateRecord writes a partial field update to one legacy record. Transient
// failures are retried a bounded number of times with linearly increasing
// backoff; this is a single-record operation so retry is safe.
func (c *Client) UpdateRecord(ctx context.Context, objectKey, recordID string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal update for %s/%s: %w", objectKey, recordID, err)
	}
	endpoint := fmt.Sprintf("%s/objects/%s/records/%s", c.baseURL, objectKey, recordID)

	return httpx.RetryLinearly(ctx, c.retryCount, c.retryBackoff, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		c.headers(req)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return &httpx.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return nil
	})
}
