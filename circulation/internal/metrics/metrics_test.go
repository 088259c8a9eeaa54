package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/circulation/internal/metrics"
)

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveOperation("checkout", "ok", time.Now())
	m.Retry("checkout")
	m.SweepUnit("expire_holds", "changed")
	m.Event("hold_ready", "sent")
	m.BreakerReject()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["circulation_operations_total"])
	require.True(t, names["circulation_operation_duration_seconds"])
	require.True(t, names["circulation_events_total"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.ObserveOperation("checkout", "ok", time.Now())
		m.Retry("checkout")
		m.SweepUnit("assess_overdue", "failed")
		m.Event("overdue", "failed")
		m.BreakerReject()
	})
}
