// Package ui provides the Bubble Tea TUI for rickdex.
package ui

// searchDebounced fires once typing has been idle for the debounce delay.
// Only the tick whose Seq matches the latest keystroke starts a search.
type searchDebounced struct {
	Seq  int
	Text string
}

// noticeExpired clears a transient notice, unless a newer one replaced it.
type noticeExpired struct {
	Seq int
}
