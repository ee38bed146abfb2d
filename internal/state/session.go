package state

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/describe"
	"github.com/abelbrown/rickdex/internal/otel"
)

// Deps are the capabilities a Session is built from.
type Deps struct {
	Source    Source
	Generator describe.Generator // may be nil
	MaxID     MaxIDFunc          // nil selects character.DefaultMaxID
	Events    *otel.Logger       // may be nil

	AITimeout         time.Duration
	AIMaxTokens       int
	PrefetchNeighbors bool
}

// Session bundles the four services of one application run.
type Session struct {
	List   *List
	Search *Search
	Detail *Detail
	AI     *AI
}

// NewSession wires the services to deps.
func NewSession(deps Deps) *Session {
	maxID := deps.MaxID
	if maxID == nil {
		maxID = FixedMaxID(character.DefaultMaxID)
	}
	ai := NewAI(deps.Generator, deps.AITimeout, deps.Events)
	ai.maxTokens = deps.AIMaxTokens
	return &Session{
		List:   NewList(deps.Source, deps.Events),
		Search: NewSearch(deps.Source, maxID, deps.Events),
		Detail: NewDetail(deps.Source, maxID, deps.Events, deps.PrefetchNeighbors),
		AI:     ai,
	}
}

// Update routes a completion message to every service and batches the
// follow-up commands.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	return tea.Batch(
		s.List.Update(msg),
		s.Search.Update(msg),
		s.Detail.Update(msg),
		s.AI.Update(msg),
	)
}

// Display is Decide over the current list and search state.
func (s *Session) Display() Display {
	return Decide(s.List.View(), s.Search.View())
}
