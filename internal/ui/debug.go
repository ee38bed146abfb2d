package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/rickdex/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders session counts and the newest events. When focus is a
// character id, only events about that character are listed.
func debugOverlay(ring *otel.Ring, focus, width, height int) string {
	if ring == nil {
		return ""
	}

	t := ring.Tally()
	var keep func(otel.Event) bool
	heading := "Recent Events"
	if focus > 0 {
		keep = otel.About(focus)
		heading = fmt.Sprintf("Recent Events for #%d", focus)
	}
	recent := ring.Recent(20, keep)

	lines := []string{
		DebugHeaderStyle.Render("Session Stats"),
		fmt.Sprintf("  Fetches:    %d complete, %d errors, %d cached", t.Fetches, t.FetchErrors, t.CacheHits),
		fmt.Sprintf("  Pages:      %d loaded, %d errors", t.Pages, t.PageErrors),
		fmt.Sprintf("  Searches:   %d started, %d complete, %d errors", t.Searches, t.SearchHits, t.SearchErrors),
		fmt.Sprintf("  Details:    %d loaded, %d errors", t.Details, t.DetailErrors),
		fmt.Sprintf("  AI:         %d generated, %d fallback", t.Generated, t.Fallbacks),
		fmt.Sprintf("  Stale:      %d dropped", t.Stale),
		fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()),
		"",
		DebugHeaderStyle.Render(heading),
	}
	if len(recent) == 0 {
		lines = append(lines, "  (none)")
	}
	for _, e := range recent {
		ageStr := formatAge(time.Since(e.Time))

		line := fmt.Sprintf("  %6s  %-18s", ageStr, string(e.Kind))
		if e.Token != 0 {
			line += fmt.Sprintf("  tok:%d", e.Token)
		}
		if e.CharID != 0 {
			line += fmt.Sprintf("  id:%d", e.CharID)
		}
		if e.Query != "" {
			line += "  q:" + truncateRunes(e.Query, 16)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
