package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolated(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.OrdersSubmitted.WithLabelValues("a_for_b").Inc()
	first.OrdersSubmitted.WithLabelValues("a_for_b").Inc()

	require.Equal(t, 2.0, testutil.ToFloat64(first.OrdersSubmitted.WithLabelValues("a_for_b")))
	require.Equal(t, 0.0, testutil.ToFloat64(second.OrdersSubmitted.WithLabelValues("a_for_b")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.Failures.WithLabelValues("settle", "mixed_batch_directions").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `landau_pool_failures_total{kind="mixed_batch_directions",operation="settle"} 1`))
}
