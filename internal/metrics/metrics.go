// Package metrics defines the Prometheus instruments for the OAuth flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OAuthFlowsStarted counts minted state tokens by source.
	OAuthFlowsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_flows_started_total",
			Help: "OAuth flows initiated, by source",
		},
		[]string{"source"},
	)

	// OAuthFlowsCompleted counts callbacks that ended in a stored connection.
	OAuthFlowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_flows_completed_total",
			Help: "OAuth flows completed successfully, by source",
		},
		[]string{"source"},
	)

	// OAuthFlowFailures counts failed callbacks by failure reason.
	// Reasons: invalid_state, signature_mismatch, expired, exchange_failed,
	// store_failed, rate_limited.
	OAuthFlowFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_flow_failures_total",
			Help: "OAuth flow failures, by reason",
		},
		[]string{"reason"},
	)

	// ConnectionsActive tracks currently linked sources.
	ConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "connections_active",
			Help: "Currently connected sources, by source",
		},
		[]string{"source"},
	)

	// RedisBreakerState mirrors the Redis circuit breaker:
	// 0 closed, 1 half-open, 2 open.
	RedisBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)
)
