package otel

// Concurrency:
// Only the writer goroutine reads l.ch and writes to l.w.
// l.mu guards the l.ring pointer and nothing else; writer copies the pointer
// and releases l.mu before calling Ring.Push, so the two locks never nest.

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// queueSize bounds the events waiting for the writer. A full queue drops.
const queueSize = 4096

// record pairs the encoded line with the event it came from. The ring keeps
// the event itself so Dur survives without a decode.
type record struct {
	line []byte
	ev   Event
}

// Logger appends events to a JSONL stream from a background writer and
// optionally mirrors them into a Ring. Emit never blocks the caller.
// A nil *Logger is valid and discards everything.
type Logger struct {
	mu   sync.Mutex
	ring *Ring

	session string
	ch      chan record
	w       io.Writer
	dropped atomic.Uint64
	closed  atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// NewLogger starts a Logger writing to w. Close must be called to flush.
func NewLogger(w io.Writer) *Logger {
	var id [8]byte
	_, _ = rand.Read(id[:])

	l := &Logger{
		session: hex.EncodeToString(id[:]),
		ch:      make(chan record, queueSize),
		w:       w,
		done:    make(chan struct{}),
	}
	go l.writer()
	return l
}

// NewNullLogger returns a Logger that writes nowhere. It still runs a writer
// goroutine, so it must be closed like any other.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

func (l *Logger) writer() {
	defer close(l.done)
	for rec := range l.ch {
		if _, err := l.w.Write(rec.line); err != nil {
			l.dropped.Add(1)
		}

		l.mu.Lock()
		ring := l.ring
		l.mu.Unlock()
		if ring != nil {
			ring.Push(rec.ev)
		}
	}
}

// Emit stamps e with the time (when unset) and the session id and queues it.
// Events emitted after Close, or while the queue is full, are counted as
// dropped. A send that races Close is recovered and counted the same way.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	defer func() {
		if recover() != nil {
			l.dropped.Add(1)
		}
	}()
	if l.closed.Load() {
		l.dropped.Add(1)
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	line, err := json.Marshal(e)
	if err != nil {
		l.dropped.Add(1)
		return
	}

	select {
	case l.ch <- record{line: append(line, '\n'), ev: e}:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info-level event.
func (l *Logger) Info(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Debug emits a debug-level event.
func (l *Logger) Debug(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelDebug, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn-level event.
func (l *Logger) Warn(kind EventKind, comp, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. A nil err is recorded with an empty Err.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	e := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		e.Err = err.Error()
	}
	l.Emit(e)
}

// Stale records that a completion carrying token got was ignored because
// current is the newest token issued by comp.
func (l *Logger) Stale(comp string, got, current uint64) {
	l.Emit(Event{
		Level: LevelDebug,
		Kind:  KindStale,
		Comp:  comp,
		Token: got,
		Extra: map[string]any{"current": current},
	})
}

// Mirror makes the writer push every subsequent event into r as well.
// Passing nil stops mirroring.
func (l *Logger) Mirror(r *Ring) {
	l.mu.Lock()
	l.ring = r
	l.mu.Unlock()
}

// Session returns the id stamped on every event from this Logger.
func (l *Logger) Session() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Dropped returns how many events never reached the writer.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close stops accepting events, waits for the queue to drain and reports
// drops on stderr. It is idempotent.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		<-l.done

		if n := l.dropped.Load(); n > 0 {
			fmt.Fprintf(os.Stderr, "rickdex: session %s dropped %d events\n", l.session, n)
		}
	})
}
