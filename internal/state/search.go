package state

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/otel"
)

// SearchMode is how the current search was issued.
type SearchMode int

const (
	SearchNone SearchMode = iota
	SearchByName
	SearchByID
)

func (m SearchMode) String() string {
	switch m {
	case SearchByName:
		return "name"
	case SearchByID:
		return "id"
	default:
		return "none"
	}
}

// Search is a one-shot lookup by name or id, independent of the list.
type Search struct {
	src    Source
	maxID  MaxIDFunc
	events *otel.Logger
	ctx    context.Context

	mode        SearchMode
	query       string
	selectedID  int
	results     []character.Character
	isSearching bool
	hasSearched bool
	err         error
	tok         tokens
}

// NewSearch creates an idle search. events may be nil.
func NewSearch(src Source, maxID MaxIDFunc, events *otel.Logger) *Search {
	return &Search{
		src:    src,
		maxID:  maxID,
		events: events,
		ctx:    context.Background(),
	}
}

// SearchView is what the presentation layer renders.
type SearchView struct {
	Mode        SearchMode
	Query       string
	SelectedID  int
	Results     []character.Character
	IsSearching bool
	HasSearched bool
	Err         error

	// Active reports whether search results take precedence over the list.
	Active bool
}

// View returns a snapshot of the search state.
func (s *Search) View() SearchView {
	return SearchView{
		Mode:        s.mode,
		Query:       s.query,
		SelectedID:  s.selectedID,
		Results:     s.results,
		IsSearching: s.isSearching,
		HasSearched: s.hasSearched,
		Err:         s.err,
		Active:      s.Active(),
	}
}

// Active reports whether a completed search should replace the list:
// it has run and either found something or still names a query or id.
func (s *Search) Active() bool {
	return s.hasSearched && (len(s.results) > 0 || s.query != "" || s.selectedID != 0)
}

// SearchByName looks up the first page of characters whose name contains
// text. Blank text clears the search.
func (s *Search) SearchByName(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		s.Clear()
		return nil
	}

	tok := s.tok.next()
	s.mode = SearchByName
	s.query = text
	s.selectedID = 0
	s.results = nil
	s.isSearching = true
	s.err = nil

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "search", Token: uint64(tok), Query: text})

	src, ctx := s.src, s.ctx
	return func() tea.Msg {
		var p character.Page
		err := guard("search", func() (err error) {
			p, err = src.SearchByName(ctx, text, 1)
			return err
		})
		return SearchDoneMsg{Token: tok, Mode: SearchByName, Results: p.Results, Err: err}
	}
}

// SearchByID looks up a single character. An id outside the valid range
// fails immediately with a validation error and leaves earlier results alone.
func (s *Search) SearchByID(id int) tea.Cmd {
	if max := s.maxID(); !character.ValidID(id, max) {
		s.err = fetch.Invalid("search", "character id must be between 1 and %d, got %d", max, id)
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSearchError, Comp: "search", CharID: id, Err: s.err.Error()})
		return nil
	}

	tok := s.tok.next()
	s.mode = SearchByID
	s.query = ""
	s.selectedID = id
	s.results = nil
	s.isSearching = true
	s.err = nil

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "search", Token: uint64(tok), CharID: id})

	src, ctx := s.src, s.ctx
	return func() tea.Msg {
		var c character.Character
		err := guard("search", func() (err error) {
			c, err = src.Get(ctx, id)
			return err
		})
		if err != nil {
			return SearchDoneMsg{Token: tok, Mode: SearchByID, Err: err}
		}
		return SearchDoneMsg{Token: tok, Mode: SearchByID, Results: []character.Character{c}}
	}
}

// Clear resets the search. Pending completions become stale.
func (s *Search) Clear() {
	s.tok.next()
	s.mode = SearchNone
	s.query = ""
	s.selectedID = 0
	s.results = nil
	s.isSearching = false
	s.hasSearched = false
	s.err = nil
	s.events.Debug(otel.KindSearchClear, "search", "")
}

// Update applies a completion message. Messages for other services are ignored.
func (s *Search) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(SearchDoneMsg)
	if !ok {
		return nil
	}
	if !s.tok.current(m.Token) {
		s.events.Stale("search", uint64(m.Token), uint64(s.tok.cur))
		return nil
	}

	s.isSearching = false
	s.hasSearched = true
	if m.Err != nil {
		s.results = nil
		s.err = m.Err
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSearchError, Comp: "search", Token: uint64(m.Token), Query: s.query, CharID: s.selectedID, Err: m.Err.Error()})
		return nil
	}

	s.results = m.Results
	s.err = nil
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: "search", Token: uint64(m.Token), Query: s.query, CharID: s.selectedID, Count: len(m.Results)})
	return nil
}
