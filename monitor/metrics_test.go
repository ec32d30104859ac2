package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMetricsRegisteredWithoutPanicking guards against the classic
// "duplicate metrics collector registration attempted" panic from
// prometheus.MustRegister, which would otherwise only surface at
// process startup.
func TestMetricsRegisteredWithoutPanicking(t *testing.T) {
	require.NotPanics(t, func() {
		RetryAttempts.WithLabelValues("success").Inc()
		RetryAttempts.WithLabelValues("failure").Inc()
		RotationCursor.Set(3)
		PoolExhausted.Inc()
		StreamChunks.WithLabelValues("native").Inc()
		StreamChunks.WithLabelValues("alt-chat").Inc()
	})
}
