package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/state"
)

// renderDetail renders the detail pane body: fields, then the AI panel.
// It is the content of the pane viewport, so it does not clip to a height.
func renderDetail(dv state.DetailView, av state.AIView, width int, spin string) string {
	var lines []string

	switch {
	case dv.Character == nil && dv.IsLoading:
		lines = append(lines, spin+fmt.Sprintf(" Loading character #%d...", dv.ID))
	case dv.Character == nil && dv.Err != nil:
		lines = append(lines, renderError(dv.Err, width))
	case dv.Character == nil:
		lines = append(lines, MetaItem.Render("Nothing selected."))
	default:
		c := *dv.Character
		head := DetailName.Render(c.Name) + " " + MetaItem.Render(fmt.Sprintf("#%d", c.ID))
		if dv.IsLoading {
			// The previous character stays visible until the next one arrives.
			head += "  " + spin + MetaItem.Render(fmt.Sprintf(" loading #%d", dv.ID))
		}
		lines = append(lines, head, "")
		lines = append(lines, field("Status", Badge(c.Status)))
		lines = append(lines, field("Species", c.Species))
		if c.Type != "" {
			lines = append(lines, field("Type", c.Type))
		}
		lines = append(lines, field("Gender", c.Gender.Label()))
		lines = append(lines, field("Origin", placeName(c.Origin)))
		lines = append(lines, field("Location", placeName(c.Location)))
		lines = append(lines, field("Episodes", episodeSummary(c)))
		if !c.Created.IsZero() {
			lines = append(lines, field("Created", c.Created.Format("2006-01-02")))
		}
		if dv.Err != nil {
			lines = append(lines, "", renderError(dv.Err, width))
		}
		lines = append(lines, renderAI(av, width, spin))
	}

	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return DetailLabel.Render(label) + value
}

func placeName(p character.Place) string {
	if !p.Known() {
		return "Unknown"
	}
	return p.Name
}

// renderAI renders the description panel for the focused character.
func renderAI(av state.AIView, width int, spin string) string {
	var body string
	switch {
	case av.IsGenerating:
		body = spin + " Writing a description..."
	case av.HasDescription():
		src := "template"
		if av.Generated {
			src = "generated by " + av.Provider
		}
		body = lipgloss.NewStyle().Width(max(width-4, 20)).Render(av.Description) +
			"\n" + AISource.Render(src)
	case av.Configured:
		body = MetaItem.Render("Press 'a' for an AI description.")
	default:
		body = MetaItem.Render("Press 'a' for a description. No AI provider is configured, a template will be used.")
	}
	return AIPanel.Render(body)
}

// RenderDetailStatusBar renders the bottom bar while the detail pane is open.
func RenderDetailStatusBar(dv state.DetailView, width int) string {
	keys := []string{}
	if dv.CanGoPrev {
		keys = append(keys, StatusBarKey.Render("p")+StatusBarText.Render(":prev"))
	}
	if dv.CanGoNext {
		keys = append(keys, StatusBarKey.Render("n")+StatusBarText.Render(":next"))
	}
	keys = append(keys,
		StatusBarKey.Render("a")+StatusBarText.Render(":describe"),
		StatusBarKey.Render("r")+StatusBarText.Render(":reload"),
		StatusBarKey.Render("esc")+StatusBarText.Render(":back"),
	)
	return StatusBar.Width(width).Render(fmt.Sprintf("#%d  ", dv.ID) + strings.Join(keys, " "))
}

// limitNotice is shown when n or p would leave the valid id range.
func limitNotice(err error) string {
	if errors.Is(err, state.ErrLimitReached) {
		return "No more characters in that direction."
	}
	return fetch.Message(err)
}

// episodeSummary is the episode count with the first and last episode ids
// when the URLs carry them.
func episodeSummary(c character.Character) string {
	ids := c.EpisodeIDs()
	switch {
	case len(ids) == 0:
		return fmt.Sprintf("%d", c.EpisodeCount())
	case len(ids) == 1:
		return fmt.Sprintf("%d (#%d)", c.EpisodeCount(), ids[0])
	default:
		return fmt.Sprintf("%d (#%d to #%d)", c.EpisodeCount(), ids[0], ids[len(ids)-1])
	}
}
