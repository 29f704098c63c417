package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the client exports.
type Metrics struct {
	// ConnectsTotal counts successful WebSocket dials.
	ConnectsTotal prometheus.Counter

	// ReconnectsTotal counts reconnection attempts scheduled after an
	// abnormal close.
	ReconnectsTotal prometheus.Counter

	// ConnStatus is 1 for the current connection status label, 0 otherwise.
	ConnStatus *prometheus.GaugeVec

	// MessagesReceived counts inbound frames by message type.
	MessagesReceived *prometheus.CounterVec

	// FramesDropped counts inbound frames dropped as malformed.
	FramesDropped prometheus.Counter

	// SendFailures counts Send calls that returned false.
	SendFailures prometheus.Counter

	// UnreadNotifications mirrors the aggregate unread notification count.
	UnreadNotifications prometheus.Gauge

	// UnreadMessages mirrors the aggregate unread chat message count.
	UnreadMessages prometheus.Gauge
}

// New registers all collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConnectsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ktabnet_ws_connects_total",
			Help: "Successful WebSocket dials to the KtabNet backend.",
		}),
		ReconnectsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ktabnet_ws_reconnects_total",
			Help: "Reconnection attempts scheduled after abnormal closes.",
		}),
		ConnStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ktabnet_ws_status",
			Help: "Current connection status (one label set to 1).",
		}, []string{"status"}),
		MessagesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ktabnet_ws_messages_received_total",
			Help: "Inbound real-time frames by message type.",
		}, []string{"type"}),
		FramesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "ktabnet_ws_frames_dropped_total",
			Help: "Inbound frames dropped because they could not be decoded.",
		}),
		SendFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ktabnet_ws_send_failures_total",
			Help: "Send calls that failed because the socket was not open.",
		}),
		UnreadNotifications: f.NewGauge(prometheus.GaugeOpts{
			Name: "ktabnet_unread_notifications",
			Help: "Aggregate unread notification count.",
		}),
		UnreadMessages: f.NewGauge(prometheus.GaugeOpts{
			Name: "ktabnet_unread_messages",
			Help: "Aggregate unread chat message count.",
		}),
	}
}

// NewNop returns Metrics registered on a private registry, for callers and
// tests that do not export anything.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// SetStatus flips the status gauge so exactly one label reads 1.
func (m *Metrics) SetStatus(status string) {
	for _, s := range []string{"connecting", "connected", "disconnected", "error"} {
		v := 0.0
		if s == status {
			v = 1.0
		}
		m.ConnStatus.WithLabelValues(s).Set(v)
	}
}
