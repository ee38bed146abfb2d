package otel

import (
	"slices"
	"sync"
)

// DefaultRingSize is used when NewRing is given a non-positive size.
const DefaultRingSize = 512

// Tally counts a session's events by meaning. It covers every event pushed
// since the ring was created, including ones the ring has since overwritten.
type Tally struct {
	Fetches      int // completed HTTP requests
	FetchErrors  int
	CacheHits    int
	Pages        int // list pages applied
	PageErrors   int
	Searches     int // searches started
	SearchHits   int
	SearchErrors int
	Details      int // detail loads applied
	DetailErrors int
	Generated    int // descriptions from a provider
	Fallbacks    int // descriptions from the template
	Stale        int // completions ignored for an old token
	Errors       int // any error-level event
}

func (t *Tally) add(e Event) {
	switch e.Kind {
	case KindFetchComplete:
		t.Fetches++
	case KindFetchError:
		t.FetchErrors++
	case KindCacheHit:
		t.CacheHits++
	case KindListPage:
		t.Pages++
	case KindListError:
		t.PageErrors++
	case KindSearchStart:
		t.Searches++
	case KindSearchComplete:
		t.SearchHits++
	case KindSearchError:
		t.SearchErrors++
	case KindDetailComplete:
		t.Details++
	case KindDetailError:
		t.DetailErrors++
	case KindAIComplete:
		t.Generated++
	case KindAIFallback:
		t.Fallbacks++
	case KindStale:
		t.Stale++
	}
	if e.Level == LevelError {
		t.Errors++
	}
}

// Ring holds the newest events of a session for the debug overlay.
// All methods are safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	n     int
	tally Tally
}

// NewRing returns a Ring holding up to size events.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{buf: make([]Event, size)}
}

// Push stores e, overwriting the oldest event when full. Extra is copied so
// the caller may reuse its map.
func (r *Ring) Push(e Event) {
	if e.Extra != nil {
		extra := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			extra[k] = v
		}
		e.Extra = extra
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
	r.tally.add(e)
}

// Recent returns up to limit of the newest events accepted by keep, oldest
// first. A nil keep accepts every event.
func (r *Ring) Recent(limit int, keep func(Event) bool) []Event {
	if limit <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for i := 1; i <= r.n && len(out) < limit; i++ {
		e := r.buf[(r.next-i+len(r.buf))%len(r.buf)]
		if keep == nil || keep(e) {
			out = append(out, e)
		}
	}
	slices.Reverse(out)
	return out
}

// About matches events concerning character id.
func About(id int) func(Event) bool {
	return func(e Event) bool { return e.CharID == id }
}

// Tally returns the session counts so far.
func (r *Ring) Tally() Tally {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tally
}

// Len returns the number of events held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Cap returns the most events the ring can hold.
func (r *Ring) Cap() int {
	return len(r.buf)
}
