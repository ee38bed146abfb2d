package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/state"
)

// RenderBrowse renders the rows of d with the cursor row highlighted.
// spin is the spinner frame shown while loading.
func RenderBrowse(d state.Display, cursor, width, height int, spin string) string {
	if height < 1 {
		height = 1
	}

	switch {
	case d.Err != nil && len(d.Items) == 0:
		return renderError(d.Err, width)
	case d.IsLoading && len(d.Items) == 0:
		return HelpStyle.Render(spin + " Loading characters...")
	case d.Empty:
		if d.Source == state.ShowSearch {
			return HelpStyle.Render("No characters match. Press esc to clear the search.")
		}
		return HelpStyle.Render("No characters to display. Press 'r' to refresh.")
	}

	// The footer line is reserved for the load-more spinner or the end marker.
	avail := height
	footer := ""
	if d.Source == state.ShowList {
		avail--
		switch {
		case d.IsLoading:
			footer = MetaItem.Render("  " + spin + " loading more...")
		case d.Err != nil:
			footer = ErrorStyle.Render(fetch.Message(d.Err) + " Press 'r' to retry.")
		case !d.HasNextPage:
			footer = MetaItem.Render(fmt.Sprintf("  end of list (%d characters)", len(d.Items)))
		}
	}
	if avail < 1 {
		avail = 1
	}

	offset := calcScrollOffset(len(d.Items), cursor, avail)

	var b strings.Builder
	for i := offset; i < len(d.Items) && i < offset+avail; i++ {
		b.WriteString(renderCharacterLine(d.Items[i], i == cursor, width))
		b.WriteString("\n")
	}
	if footer != "" {
		b.WriteString(footer)
		b.WriteString("\n")
	}
	return b.String()
}

// calcScrollOffset returns the first visible row that keeps cursor on screen.
func calcScrollOffset(n, cursor, avail int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		cursor = n - 1
	}
	if cursor >= avail {
		return cursor - avail + 1
	}
	return 0
}

// renderCharacterLine renders a single row: badge, name, species, id.
func renderCharacterLine(c character.Character, selected bool, width int) string {
	badge := Badge(c.Status)
	badgeWidth := lipgloss.Width(badge)

	id := fmt.Sprintf("#%d", c.ID)
	species := c.Species
	if c.Type != "" {
		species += " (" + c.Type + ")"
	}
	species = truncateRunes(species, 24)

	nameWidth := width - badgeWidth - 24 - len(id) - 6
	if nameWidth < 12 {
		nameWidth = 12
	}
	name := truncateRunes(c.Name, nameWidth)
	pad := nameWidth - utf8.RuneCountInString(name)
	if pad < 0 {
		pad = 0
	}

	style := NormalItem
	if selected {
		style = SelectedItem
	}
	return badge + style.Render(name+strings.Repeat(" ", pad)) + " " +
		MetaItem.Render(fmt.Sprintf("%-24s %s", species, id))
}

// renderError renders a failed load with a retry hint when one could help.
func renderError(err error, width int) string {
	msg := fetch.Message(err)
	if fetch.Transient(err) {
		msg += " Press 'r' to retry."
	}
	return ErrorStyle.Width(width).Render(msg)
}

// RenderStatusBar renders the bottom bar for the browse screen.
func RenderStatusBar(d state.Display, cursor, width int, filters character.Filters) string {
	var pos string
	if len(d.Items) > 0 {
		pos = fmt.Sprintf("%d/%d", cursor+1, len(d.Items))
	} else {
		pos = "0/0"
	}

	var chips string
	if filters.Status != "" {
		chips += FilterChip.Render("status:" + filters.Status.Label())
	}
	if filters.Gender != "" {
		chips += FilterChip.Render("gender:" + filters.Gender.Label())
	}
	if d.Source == state.ShowSearch {
		chips += FilterChip.Render("search")
	}

	keys := []string{
		StatusBarKey.Render("/") + StatusBarText.Render(":name"),
		StatusBarKey.Render("#") + StatusBarText.Render(":id"),
		StatusBarKey.Render("s/g") + StatusBarText.Render(":filter"),
		StatusBarKey.Render("enter") + StatusBarText.Render(":open"),
		StatusBarKey.Render("r") + StatusBarText.Render(":refresh"),
		StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
	}
	return StatusBar.Width(width).Render(chips + pos + "  " + strings.Join(keys, " "))
}

// truncateRunes shortens s to at most n runes, ending with "...".
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}
