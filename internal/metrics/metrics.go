package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hub metrics
var (
	// PeersConnected tracks the number of peers in the hub registry.
	PeersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_peers_connected",
			Help: "Number of peers currently registered with the hub",
		},
	)

	// EventsTotal counts session events consumed by the hub, by kind.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Session events consumed by the hub by kind (connected/data/disconnected)",
		},
		[]string{"kind"},
	)

	// RelayedBytesTotal counts payload bytes received from peers for fan-out.
	RelayedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_payload_bytes_total",
			Help: "Payload bytes received from peers and handed to fan-out",
		},
	)

	// DeliveriesDropped counts chunks dropped because a peer's outbound queue was full.
	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_deliveries_dropped_total",
			Help: "Outbound chunks dropped because the recipient queue was full",
		},
	)
)

// Transport metrics
var (
	// ConnectionsTotal counts accepted connections by transport (tcp/ws).
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_connections_total",
			Help: "Accepted connections by transport",
		},
		[]string{"transport"},
	)

	// ConnectionErrors counts accept and peer identity failures by reason.
	ConnectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_connection_errors_total",
			Help: "Failed connection attempts by reason (accept/peer_identity/upgrade)",
		},
		[]string{"reason"},
	)

	// WriteErrors counts swallowed session write failures.
	WriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_write_errors_total",
			Help: "Failed writes to peer connections (dropped, not retried)",
		},
	)
)
