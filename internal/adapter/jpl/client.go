// Package jpl fetches close-approach data from the JPL SSD CAD API.
package jpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/observability"
)

// DefaultBaseURL is the public CAD API endpoint.
const DefaultBaseURL = "https://ssd-api.jpl.nasa.gov/cad.api"

// Query narrows a CAD request. Zero fields are omitted so the API applies its
// own defaults (the next 60 days, within 0.05 au).
type Query struct {
	Designation string // des
	DateMin     string // date-min, "YYYY-MM-DD" or "now"
	DateMax     string // date-max, "YYYY-MM-DD" or "+N" days
	DistMax     string // dist-max, au or "10LD" style
	Limit       int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Designation != "" {
		v.Set("des", q.Designation)
	}
	if q.DateMin != "" {
		v.Set("date-min", q.DateMin)
	}
	if q.DateMax != "" {
		v.Set("date-max", q.DateMax)
	}
	if q.DistMax != "" {
		v.Set("dist-max", q.DistMax)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Client queries the CAD API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a CAD API client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchApproaches runs q against the CAD API and returns one record per row.
func (c *Client) FetchApproaches(ctx context.Context, q Query) ([]domain.RawApproachRecord, error) {
	start := time.Now()
	records, err := c.doRequest(ctx, c.baseURL+"?"+q.values().Encode())
	c.metrics.JPLAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.JPLRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.JPLRequests.WithLabelValues("success").Inc()
	c.logger.Debug("cad query complete", "rows", len(records), "designation", q.Designation)
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.RawApproachRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cad request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cad API error: status %d: %s", resp.StatusCode, body)
	}

	var cad domain.CADResponse
	if err := json.NewDecoder(resp.Body).Decode(&cad); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// An empty result carries count "0" and no fields.
	if len(cad.Data) == 0 {
		return nil, nil
	}
	return cad.Records()
}
