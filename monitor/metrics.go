// Package monitor exposes the gateway's Prometheus metrics, grounded on
// the teacher's main.go promhttp.Handler wiring (the teacher's own
// monitor package does channel-disable alerting rather than metrics
// collection; this package adds the metrics concern the teacher wires
// at the main.go call site instead).
package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// RetryAttempts counts each distinct credential KeySelector tries
	// (the fallback credential and pool credentials), labeled by outcome.
	RetryAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_retry_attempts_total",
		Help: "Number of distinct upstream credential attempts made by KeySelector.",
	}, []string{"outcome"})

	// RotationCursor reports the last-observed rotation cursor value.
	RotationCursor = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_rotation_cursor",
		Help: "Current value of the primary pool rotation cursor.",
	})

	// PoolExhausted counts requests that exhausted their retry budget
	// without a 2xx response.
	PoolExhausted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_pool_exhausted_total",
		Help: "Number of requests for which the credential pool was exhausted.",
	})

	// StreamChunks counts SSE data chunks written by gateway.StreamNative
	// and gateway.StreamAltChat (the [DONE] terminator excluded), labeled
	// by classification.
	StreamChunks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_stream_chunks_total",
		Help: "Number of SSE chunks emitted to clients.",
	}, []string{"classification"})
)

func init() {
	prometheus.MustRegister(RetryAttempts, RotationCursor, PoolExhausted, StreamChunks)
}
