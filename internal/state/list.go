package state

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/otel"
)

// List is the incrementally growing character list of the browse view.
type List struct {
	src    Source
	events *otel.Logger
	ctx    context.Context

	items   []character.Character
	seen    map[int]struct{}
	cursor  character.Cursor
	total   int
	filters character.Filters
	loading bool
	err     error
	tok     tokens
}

// NewList creates an empty list reading from src. events may be nil.
func NewList(src Source, events *otel.Logger) *List {
	return &List{
		src:    src,
		events: events,
		ctx:    context.Background(),
		seen:   make(map[int]struct{}),
	}
}

// ListView is what the presentation layer renders.
type ListView struct {
	Items       []character.Character
	IsLoading   bool
	Err         error
	HasNextPage bool
	Cursor      character.Cursor
	TotalCount  int
	Filters     character.Filters

	// Empty is "loaded, nothing to show": distinct from loading and from error.
	Empty bool
}

// View returns a snapshot of the list state.
func (l *List) View() ListView {
	return ListView{
		Items:       l.items,
		IsLoading:   l.loading,
		Err:         l.err,
		HasNextPage: l.cursor.HasNext(),
		Cursor:      l.cursor,
		TotalCount:  l.total,
		Filters:     l.filters,
		Empty:       len(l.items) == 0 && !l.loading && l.err == nil,
	}
}

// Load requests one page with the current filters. Page 1 replaces the
// accumulated list when it arrives; later pages append.
func (l *List) Load(page int) tea.Cmd {
	if page < 1 {
		page = 1
	}
	tok := l.tok.next()
	l.loading = true
	l.err = nil

	src, ctx, f := l.src, l.ctx, l.filters
	l.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindListLoad, Comp: "list", Token: uint64(tok), Page: page})

	return func() tea.Msg {
		var p character.Page
		err := guard("list", func() (err error) {
			p, err = src.List(ctx, page, f)
			return err
		})
		return PageLoadedMsg{Token: tok, Page: page, Filters: f, Result: p, Err: err}
	}
}

// LoadMore requests the next page. It returns nil, issuing nothing, when the
// last page is already loaded or a load is in flight.
func (l *List) LoadMore() tea.Cmd {
	if l.loading || !l.cursor.HasNext() {
		return nil
	}
	return l.Load(l.cursor.Current + 1)
}

// ApplyFilters clears the list and loads the first page with f.
func (l *List) ApplyFilters(f character.Filters) tea.Cmd {
	l.filters = f
	l.reset()
	return l.Load(1)
}

// ClearFilters is ApplyFilters with no filters.
func (l *List) ClearFilters() tea.Cmd {
	return l.ApplyFilters(character.Filters{})
}

// Refresh clears the list and reloads the first page with the current filters.
func (l *List) Refresh() tea.Cmd {
	l.reset()
	return l.Load(1)
}

func (l *List) reset() {
	l.items = nil
	l.seen = make(map[int]struct{})
	l.cursor = character.Cursor{Current: 1}
	l.total = 0
	l.err = nil
}

// Update applies a completion message. Messages for other services are ignored.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(PageLoadedMsg)
	if !ok {
		return nil
	}
	if !l.tok.current(m.Token) {
		l.events.Stale("list", uint64(m.Token), uint64(l.tok.cur))
		return nil
	}

	l.loading = false
	if m.Err != nil {
		l.err = m.Err
		l.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindListError, Comp: "list", Token: uint64(m.Token), Page: m.Page, Err: m.Err.Error()})
		return nil
	}

	if m.Page == 1 {
		l.items = nil
		l.seen = make(map[int]struct{})
	}
	added := 0
	for _, c := range m.Result.Results {
		if _, dup := l.seen[c.ID]; dup {
			continue
		}
		l.seen[c.ID] = struct{}{}
		l.items = append(l.items, c)
		added++
	}
	l.cursor = character.Cursor{Current: m.Page, Total: m.Result.Info.Pages}
	l.total = m.Result.Info.Count
	l.err = nil

	l.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindListPage,
		Comp:  "list",
		Token: uint64(m.Token),
		Page:  m.Page,
		Count: added,
		Extra: map[string]any{"total": l.total, "pages": l.cursor.Total},
	})
	return nil
}
