package jpl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

const cadBody = `{
  "signature": {"source": "NASA/JPL SBDB Close Approach Data API", "version": "1.5"},
  "count": "2",
  "fields": ["des", "orbit_id", "jd", "cd", "dist", "dist_min", "dist_max", "v_rel", "v_inf", "t_sigma_f", "h"],
  "data": [
    ["433", "659", "2415020.507669610", "1900-Jan-01 00:11", "0.0921795123", "0.0921782", "0.0921808", "16.7523040", "16.7505", "00:01", "10.4"],
    ["2021 AB", "5", "2459580.5", "2022-Jan-02 12:00", "0.01", null, null, "7.5", null, "< 00:01", null]
  ]
}`

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchApproaches_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1900-01-01", r.URL.Query().Get("date-min"))
		assert.Equal(t, "1900-12-31", r.URL.Query().Get("date-max"))
		assert.Equal(t, "0.1", r.URL.Query().Get("dist-max"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.False(t, r.URL.Query().Has("des"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(cadBody))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)
	records, err := c.FetchApproaches(context.Background(), Query{
		DateMin: "1900-01-01",
		DateMax: "1900-12-31",
		DistMax: "0.1",
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "433", records[0].Designation)
	assert.Equal(t, "1900-Jan-01 00:11", records[0].Time)
	assert.Equal(t, "0.0921795123", records[0].Distance)
	assert.Equal(t, "16.7523040", records[0].Velocity)
	assert.Equal(t, "10.4", records[0].H)

	assert.Equal(t, "2021 AB", records[1].Designation)
	assert.Empty(t, records[1].DistanceMin)
	assert.Empty(t, records[1].H)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.JPLRequests.WithLabelValues("success")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.JPLRequests.WithLabelValues("error")), 0)
}

func TestClient_FetchApproaches_Designation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2021 AB", r.URL.Query().Get("des"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(cadBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.FetchApproaches(context.Background(), Query{Designation: "2021 AB"})
	require.NoError(t, err)
}

func TestClient_FetchApproaches_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"signature":{"source":"NASA/JPL SBDB Close Approach Data API","version":"1.5"},"count":"0"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	records, err := c.FetchApproaches(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_FetchApproaches_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"400","message":"invalid value for date-min"}`))
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	c := testClient(srv.URL, metrics)
	_, err := c.FetchApproaches(context.Background(), Query{DateMin: "yesterday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid value for date-min")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.JPLRequests.WithLabelValues("error")), 0)
}

func TestClient_FetchApproaches_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.FetchApproaches(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_FetchApproaches_MissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"fields":["des","cd"],"data":[["433","1900-Jan-01 00:11"]]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.FetchApproaches(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dist")
}

func TestClient_FetchApproaches_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(cadBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL, observability.NewMetricsForTesting())
	_, err := c.FetchApproaches(ctx, Query{})
	require.Error(t, err)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
