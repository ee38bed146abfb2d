package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	result := debugOverlay(nil, 0, 80, 24)
	if result != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", result)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRing(64)
	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindSearchComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindStale, Time: time.Now()})

	result := debugOverlay(ring, 0, 80, 40)

	if !strings.Contains(result, "Session Stats") {
		t.Error("overlay should contain 'Session Stats' header")
	}
	if !strings.Contains(result, "2 complete, 1 errors") {
		t.Errorf("overlay should show fetch stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 started, 1 complete") {
		t.Errorf("overlay should show search stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 dropped") {
		t.Errorf("overlay should show stale count, got:\n%s", result)
	}
	if !strings.Contains(result, "6 / 64 events") {
		t.Errorf("overlay should show buffer stats, got:\n%s", result)
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRing(64)
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now(), Msg: "hello world"})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: time.Now(), Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindDetailLoad, Time: time.Now(), Token: 7, CharID: 42})
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now(), Query: "rick"})

	result := debugOverlay(ring, 0, 100, 40)

	for _, want := range []string{"Recent Events", "hello world", "ERR:timeout", "tok:7", "id:42", "q:rick"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay should contain %q, got:\n%s", want, result)
		}
	}
}

func TestDebugOverlayFocus(t *testing.T) {
	ring := otel.NewRing(64)
	ring.Push(otel.Event{Kind: otel.KindDetailLoad, Time: time.Now(), CharID: 1, Msg: "about rick"})
	ring.Push(otel.Event{Kind: otel.KindDetailLoad, Time: time.Now(), CharID: 2, Msg: "about morty"})

	result := debugOverlay(ring, 1, 100, 40)
	if !strings.Contains(result, "Recent Events for #1") || !strings.Contains(result, "about rick") {
		t.Errorf("focused overlay should list #1 events, got:\n%s", result)
	}
	if strings.Contains(result, "about morty") {
		t.Errorf("focused overlay should hide other characters, got:\n%s", result)
	}

	if result := debugOverlay(ring, 9, 100, 40); !strings.Contains(result, "(none)") {
		t.Errorf("overlay with no matching events should say so, got:\n%s", result)
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRing(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now()})
	}

	// Very small height should still render without panic
	result := debugOverlay(ring, 0, 80, 10)
	if result == "" {
		t.Error("overlay should still render with small height")
	}

	// With height=10, maxHeight=6, so at most ~6 content lines (plus border/padding)
	lines := strings.Count(result, "\n")
	if lines > 20 {
		t.Errorf("overlay should be truncated, got %d lines", lines)
	}
}

func TestDebugToggle(t *testing.T) {
	ring := otel.NewRing(16)
	app := newTestApp(t, newFakeSource(40), func(o *Options) { o.Ring = ring })
	app = resize(app, 80, 24)

	if app.showDebug {
		t.Error("debug should be hidden initially")
	}

	app, _ = press(app, "D")
	if !app.showDebug {
		t.Error("D should show debug overlay")
	}

	view := app.View()
	if !strings.Contains(view, "[DEBUG]") {
		t.Errorf("debug view should contain '[DEBUG]', got:\n%s", view)
	}

	// Browse keys are swallowed while the overlay is up.
	app, _ = press(app, "j")
	if app.Cursor() != 0 {
		t.Errorf("j under the overlay should not move the cursor, got %d", app.Cursor())
	}

	app, _ = press(app, "D")
	if app.showDebug {
		t.Error("second D should hide debug overlay")
	}

	app, _ = press(app, "D")
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).showDebug {
		t.Error("esc should hide debug overlay")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0ms"},
		{50 * time.Millisecond, "50ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.5s"},
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "2m"}, // 1.5 minutes rounds to 2 with %.0f
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		got := formatAge(tt.dur)
		if got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

func TestFormatAgeNegative(t *testing.T) {
	got := formatAge(-5 * time.Second)
	if got != "0ms" {
		t.Errorf("formatAge(-5s) = %q, want \"0ms\"", got)
	}
}
