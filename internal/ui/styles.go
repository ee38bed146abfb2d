package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/rickdex/internal/character"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorDanger    = lipgloss.Color("196") // Red
	colorPortal    = lipgloss.Color("118") // Portal green
)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// MetaItem style for species and id columns.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Title style for the header line.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPortal).
	Padding(0, 1)

// StatusBadge renders a fixed-width status label.
var StatusBadge = lipgloss.NewStyle().
	Width(9).
	Align(lipgloss.Center).
	Background(lipgloss.Color("236")).
	MarginRight(1)

// statusColors maps character status to badge foreground.
var statusColors = map[character.Status]lipgloss.Color{
	character.StatusAlive:   colorSuccess,
	character.StatusDead:    colorDanger,
	character.StatusUnknown: colorSecondary,
}

// Badge renders the status badge for s.
func Badge(s character.Status) string {
	c, ok := statusColors[s]
	if !ok {
		c = colorSecondary
	}
	return StatusBadge.Foreground(c).Render(s.Label())
}

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorDanger).
	Bold(true).
	Padding(0, 1)

// NoticeStyle for transient notices such as the navigation limit.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("214")).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// SearchBar style for the search input bar.
var SearchBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// SearchBarPrompt style for the "/" and "#" prompts.
var SearchBarPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// SearchBarCount style for the result count.
var SearchBarCount = lipgloss.NewStyle().
	Foreground(colorSecondary)

// FilterChip style for an active filter.
var FilterChip = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// DetailPanel frames the character detail pane.
var DetailPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// DetailName style for the character name heading.
var DetailName = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// DetailLabel style for field labels.
var DetailLabel = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Width(12)

// AIPanel frames the description.
var AIPanel = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), true, false, false, false).
	BorderForeground(colorMuted).
	MarginTop(1)

// AISource style for the "generated by" footer.
var AISource = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
