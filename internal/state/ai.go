package state

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/describe"
	"github.com/abelbrown/rickdex/internal/otel"
)

// DefaultAITimeout bounds one generation when none is configured.
const DefaultAITimeout = 20 * time.Second

// AI holds the generated description for one character at a time.
type AI struct {
	gen       describe.Generator
	timeout   time.Duration
	maxTokens int // 0 selects describe.DefaultMaxTokens
	events    *otel.Logger
	ctx       context.Context

	description  string
	isGenerating bool
	characterID  int
	generated    bool
	provider     string
	lastErr      error // absorbed generator failure, never shown as an error
	tok          tokens
}

// NewAI creates an idle AI service. gen may be nil: every description then
// comes from the fallback template.
func NewAI(gen describe.Generator, timeout time.Duration, events *otel.Logger) *AI {
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	return &AI{
		gen:     gen,
		timeout: timeout,
		events:  events,
		ctx:     context.Background(),
	}
}

// AIView is the description state as seen from one character's detail pane.
type AIView struct {
	Description  string
	IsGenerating bool
	Generated    bool   // false when the text is the templated fallback
	Provider     string // generator that wrote the text, if any
	Configured   bool   // a generator is available
}

// HasDescription reports whether there is text to show.
func (v AIView) HasDescription() bool {
	return v.Description != ""
}

// View returns the state for the character forID. Anything held for a
// different character is hidden.
func (a *AI) View(forID int) AIView {
	v := AIView{Configured: a.gen != nil && a.gen.Available()}
	if forID == 0 || a.characterID != forID {
		return v
	}
	v.Description = a.description
	v.IsGenerating = a.isGenerating
	v.Generated = a.generated
	v.Provider = a.provider
	return v
}

// CharacterID is the character the held state belongs to, 0 if none.
func (a *AI) CharacterID() int {
	return a.characterID
}

// LastError is the most recent absorbed generator failure, for diagnostics.
func (a *AI) LastError() error {
	return a.lastErr
}

// Generate starts a description for c. The completion always carries
// non-empty text.
func (a *AI) Generate(c character.Character) tea.Cmd {
	tok := a.tok.next()
	a.isGenerating = true
	a.characterID = c.ID
	a.description = ""
	a.generated = false
	a.provider = ""

	a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindAIStart, Comp: "ai", Token: uint64(tok), CharID: c.ID})

	gen, base, timeout, maxTokens := a.gen, a.ctx, a.timeout, a.maxTokens
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(base, timeout)
		defer cancel()
		return DescriptionReadyMsg{Token: tok, Result: describe.Describe(ctx, gen, c, maxTokens)}
	}
}

// Clear resets the service. Called when the detail pane closes or moves.
func (a *AI) Clear() {
	a.tok.next()
	a.description = ""
	a.isGenerating = false
	a.characterID = 0
	a.generated = false
	a.provider = ""
	a.lastErr = nil
}

// Update applies a completion message. Messages for other services are ignored.
func (a *AI) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(DescriptionReadyMsg)
	if !ok {
		return nil
	}
	if !a.tok.current(m.Token) {
		a.events.Stale("ai", uint64(m.Token), uint64(a.tok.cur))
		return nil
	}

	r := m.Result
	if r.Text == "" {
		// Describe never does this; keep the invariant even if it did.
		r.Text = "No description available."
	}
	a.isGenerating = false
	a.description = r.Text
	a.characterID = r.CharacterID
	a.generated = r.Generated
	a.provider = r.Provider
	a.lastErr = r.Err

	if r.Generated {
		a.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindAIComplete, Comp: "ai", Token: uint64(m.Token), CharID: r.CharacterID, Msg: r.Provider})
	} else {
		ev := otel.Event{Level: otel.LevelInfo, Kind: otel.KindAIFallback, Comp: "ai", Token: uint64(m.Token), CharID: r.CharacterID}
		if r.Err != nil {
			ev.Err = r.Err.Error()
		}
		a.events.Emit(ev)
	}
	return nil
}
