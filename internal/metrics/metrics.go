package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay holds the collectors updated by the websocket hub.
type Relay struct {
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
	RoomsActive       prometheus.Gauge
	FramesReceived    prometheus.Counter
	FramesDiscarded   prometheus.Counter
	PersistFailures   prometheus.Counter
	Deliveries        prometheus.Counter
	DeliveriesDropped prometheus.Counter
}

// NewRelay creates the relay collectors and registers them with reg.
func NewRelay(reg prometheus.Registerer) *Relay {
	m := &Relay{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_connections_active",
			Help: "Currently open websocket connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_connections_total",
			Help: "Websocket connections accepted since start.",
		}),
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_rooms_active",
			Help: "Rooms with at least one live member.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_frames_received_total",
			Help: "Inbound frames read from clients.",
		}),
		FramesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_frames_discarded_total",
			Help: "Inbound frames dropped as non-text or not a JSON object.",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_messages_persist_failures_total",
			Help: "Messages that could not be written to the store.",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Messages queued onto a recipient's outbound sink.",
		}),
		DeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_deliveries_dropped_total",
			Help: "Deliveries dropped because the recipient was closed or full.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.RoomsActive,
		m.FramesReceived,
		m.FramesDiscarded,
		m.PersistFailures,
		m.Deliveries,
		m.DeliveriesDropped,
	)
	return m
}

// Handler exposes the given gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
