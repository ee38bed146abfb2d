// Package otel provides structured observability for rickdex.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// A Ring mirrors recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Adapter events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindCacheHit      EventKind = "fetch.cache_hit"

	// List events
	KindListLoad  EventKind = "list.load"
	KindListPage  EventKind = "list.page"
	KindListError EventKind = "list.error"

	// Search events
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchError    EventKind = "search.error"
	KindSearchClear    EventKind = "search.clear"

	// Detail events
	KindDetailLoad     EventKind = "detail.load"
	KindDetailComplete EventKind = "detail.complete"
	KindDetailError    EventKind = "detail.error"
	KindPrefetch       EventKind = "detail.prefetch"

	// AI description events
	KindAIStart    EventKind = "ai.start"
	KindAIComplete EventKind = "ai.complete"
	KindAIFallback EventKind = "ai.fallback"

	// A completion arrived for a request that has been superseded.
	KindStale EventKind = "state.stale"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "fetch", "list", "search", "detail", "ai", "ui"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Token     uint64         `json:"tok,omitempty"`        // request token of the state service
	CharID    int            `json:"char_id,omitempty"`
	Page      int            `json:"page,omitempty"`
	Dur       time.Duration  `json:"-"`                // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	URL       string         `json:"url,omitempty"`
	Query     string         `json:"query,omitempty"`
	Status    int            `json:"status,omitempty"` // HTTP status
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
