package otel

import (
	"os"
	"sync/atomic"
)

// tracing turns on a debug event for every message the UI receives.
// It is read from RICKDEX_TRACE at startup.
var tracing atomic.Bool

func init() {
	tracing.Store(os.Getenv("RICKDEX_TRACE") != "")
}

// TraceEnabled reports whether message tracing is on.
func TraceEnabled() bool {
	return tracing.Load()
}

// SetTrace switches message tracing on or off and returns the previous value.
func SetTrace(on bool) bool {
	return tracing.Swap(on)
}
