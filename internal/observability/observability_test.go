package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/neo-approach-etl/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_FromConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		format  string
		debugOn bool
	}{
		{"debug", "text", true},
		{"info", "json", false},
		{"warn", "json", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			require.NotNil(t, logger)
			assert.Equal(t, tt.debugOn, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Same(t, logger.Handler(), slog.Default().Handler())
		})
	}
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.UnlinkedApproaches.Inc()
	a.JPLRequests.WithLabelValues("success").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.UnlinkedApproaches))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.UnlinkedApproaches))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.JPLRequests.WithLabelValues("success")))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(a.CatalogSize))
	require.NoError(t, reg.Register(a.MessagesConsumed))
}
