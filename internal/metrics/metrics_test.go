package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Event("join_room")
		m.Drop(ReasonMalformed)
		m.SendFailed()
		m.Panicked()
		m.LockGranted()
		m.LockReaped()
		m.SetSizes(1, 2, 3)
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Event("join_room")
	m.Event("join_room")
	m.Drop(ReasonNoPeer)
	m.SetSizes(3, 2, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("join_room")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped.WithLabelValues(ReasonNoPeer)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Connections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OnlineUsers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rooms))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.LockGranted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "coderoom_locks_granted_total 1"))
}
