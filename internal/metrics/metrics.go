// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typerace_rooms_active",
		Help: "Rooms currently registered.",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typerace_connections_active",
		Help: "Open websocket connections.",
	})

	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_games_started_total",
		Help: "Sessions that entered the playing state.",
	})

	GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_games_finished_total",
		Help: "Sessions that reached the finished state.",
	})

	InboundMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typerace_inbound_messages_total",
		Help: "Client messages received, by type.",
	}, []string{"type"})

	DroppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typerace_dropped_messages_total",
		Help: "Outbound frames dropped because a client buffer was full.",
	})

	SinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typerace_history_sink_failures_total",
		Help: "Match records a history sink failed to store.",
	}, []string{"sink"})
)
