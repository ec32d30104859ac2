// Package logging configures the gateway's package-level structured logger.
package logging

import (
	"sync"

	"github.com/Laisky/zap"
)

// Logger is the process-wide structured logger. Configured once by Setup;
// usable with its zero-value default (a no-op logger) before Setup runs,
// so package init order never panics.
var Logger = zap.NewNop()

var setupOnce sync.Once

// Setup builds the real logger. debug widens the level to Debug; in
// production builds it stays at Info.
func Setup(debug bool) {
	setupOnce.Do(func() {
		var err error
		if debug {
			Logger, err = zap.NewDevelopment()
		} else {
			Logger, err = zap.NewProduction()
		}
		if err != nil {
			// fall back to a no-op logger rather than crash startup over
			// a logging misconfiguration.
			Logger = zap.NewNop()
		}
	})
}

// ResetForTests clears the setup guard so tests may call Setup again.
// Test-only; never call from production code.
func ResetForTests() {
	setupOnce = sync.Once{}
	Logger = zap.NewNop()
}
