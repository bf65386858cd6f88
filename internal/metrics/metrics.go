// Package metrics exposes prometheus collectors for the coordinator.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons.
const (
	ReasonMalformed   = "malformed"
	ReasonUnknownRoom = "unknown_room"
	ReasonNoPeer      = "no_peer"
	ReasonNotHolder   = "not_holder"
	ReasonRateLimited = "rate_limited"
	ReasonUnknown     = "unknown_event"
)

type Metrics struct {
	Connections   prometheus.Gauge
	OnlineUsers   prometheus.Gauge
	Rooms         prometheus.Gauge
	Events        *prometheus.CounterVec
	Dropped       *prometheus.CounterVec
	SendFailures  prometheus.Counter
	HandlerPanics prometheus.Counter
	LocksGranted  prometheus.Counter
	LocksReaped   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coderoom", Name: "connections",
			Help: "Live signal websocket connections.",
		}),
		OnlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coderoom", Name: "online_users",
			Help: "Size of the presence set.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coderoom", Name: "rooms",
			Help: "Rooms with at least one member.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coderoom", Name: "events_total",
			Help: "Inbound events dispatched, by type.",
		}, []string{"type"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coderoom", Name: "events_dropped_total",
			Help: "Inbound events ignored without effect, by reason.",
		}, []string{"reason"}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom", Name: "send_failures_total",
			Help: "Outbound frames refused by a connection's send buffer.",
		}),
		HandlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom", Name: "handler_panics_total",
			Help: "Panics recovered while dispatching an event.",
		}),
		LocksGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom", Name: "locks_granted_total",
			Help: "Edit locks transitioned from unlocked to held.",
		}),
		LocksReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom", Name: "locks_reaped_total",
			Help: "Edit locks force-released by the idle janitor.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.Connections, m.OnlineUsers, m.Rooms, m.Events, m.Dropped,
		m.SendFailures, m.HandlerPanics, m.LocksGranted, m.LocksReaped,
	)
	return m
}

// Handler exposes the registry at /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Event(typ string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(typ).Inc()
}

func (m *Metrics) Drop(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SendFailed() {
	if m == nil {
		return
	}
	m.SendFailures.Inc()
}

func (m *Metrics) Panicked() {
	if m == nil {
		return
	}
	m.HandlerPanics.Inc()
}

func (m *Metrics) LockGranted() {
	if m == nil {
		return
	}
	m.LocksGranted.Inc()
}

func (m *Metrics) LockReaped() {
	if m == nil {
		return
	}
	m.LocksReaped.Inc()
}

// SetSizes publishes the table sizes after a state change.
func (m *Metrics) SetSizes(conns, online, rooms int) {
	if m == nil {
		return
	}
	m.Connections.Set(float64(conns))
	m.OnlineUsers.Set(float64(online))
	m.Rooms.Set(float64(rooms))
}
