package state

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/otel"
)

// ErrLimitReached is returned by GoNext and GoPrev at the ends of the id range.
var ErrLimitReached = errors.New("no more characters in that direction")

// Detail is the single-character pane with sequential navigation.
type Detail struct {
	src      Source
	maxID    MaxIDFunc
	events   *otel.Logger
	ctx      context.Context
	prefetch bool

	id        int // focused id, 0 when closed
	character *character.Character
	loading   bool
	err       error
	tok       tokens
}

// NewDetail creates a closed detail pane. With prefetch set, the neighbors
// of every loaded character are fetched in the background to warm the cache.
func NewDetail(src Source, maxID MaxIDFunc, events *otel.Logger, prefetch bool) *Detail {
	return &Detail{
		src:      src,
		maxID:    maxID,
		events:   events,
		ctx:      context.Background(),
		prefetch: prefetch,
	}
}

// DetailView is what the presentation layer renders.
type DetailView struct {
	ID        int
	Character *character.Character
	IsLoading bool
	Err       error
	CanGoNext bool
	CanGoPrev bool
}

// View returns a snapshot of the detail state.
func (d *Detail) View() DetailView {
	return DetailView{
		ID:        d.id,
		Character: d.character,
		IsLoading: d.loading,
		Err:       d.err,
		CanGoNext: d.CanGoNext(),
		CanGoPrev: d.CanGoPrev(),
	}
}

// Open reports whether the pane is focused on an id.
func (d *Detail) Open() bool {
	return d.id != 0
}

// CanGoNext is derived from the focused id alone.
func (d *Detail) CanGoNext() bool {
	return d.id >= 1 && d.id < d.maxID()
}

// CanGoPrev is derived from the focused id alone.
func (d *Detail) CanGoPrev() bool {
	return d.id > 1
}

// FetchByID focuses id and loads it. It is a no-op when the held character
// already is id, or a request for id is in flight. An id outside the valid
// range clears the pane and records a validation error without a request.
func (d *Detail) FetchByID(id int) tea.Cmd {
	if max := d.maxID(); !character.ValidID(id, max) {
		d.tok.next()
		d.id = 0
		d.character = nil
		d.loading = false
		d.err = fetch.Invalid("get", "character id must be between 1 and %d, got %d", max, id)
		d.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindDetailError, Comp: "detail", CharID: id, Err: d.err.Error()})
		return nil
	}
	if d.id == id && (d.loading || (d.character != nil && d.character.ID == id)) {
		return nil
	}
	return d.fetch(id)
}

func (d *Detail) fetch(id int) tea.Cmd {
	tok := d.tok.next()
	d.id = id
	d.loading = true
	d.err = nil

	d.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindDetailLoad, Comp: "detail", Token: uint64(tok), CharID: id})

	src, ctx := d.src, d.ctx
	return func() tea.Msg {
		var c character.Character
		err := guard("get", func() (err error) {
			c, err = src.Get(ctx, id)
			return err
		})
		return DetailLoadedMsg{Token: tok, ID: id, Character: c, Err: err}
	}
}

// GoNext focuses the next id. At the upper bound it returns ErrLimitReached
// and leaves the focus unchanged.
func (d *Detail) GoNext() (tea.Cmd, error) {
	if !d.CanGoNext() {
		return nil, ErrLimitReached
	}
	return d.FetchByID(d.id + 1), nil
}

// GoPrev focuses the previous id. At id 1 it returns ErrLimitReached and
// leaves the focus unchanged.
func (d *Detail) GoPrev() (tea.Cmd, error) {
	if !d.CanGoPrev() {
		return nil, ErrLimitReached
	}
	return d.FetchByID(d.id - 1), nil
}

// Refresh re-fetches the focused id, bypassing the short-circuit.
func (d *Detail) Refresh() tea.Cmd {
	if d.id == 0 {
		return nil
	}
	return d.fetch(d.id)
}

// Close resets the pane. Pending completions become stale.
func (d *Detail) Close() {
	d.tok.next()
	d.id = 0
	d.character = nil
	d.loading = false
	d.err = nil
}

// Update applies a completion message. Messages for other services are ignored.
func (d *Detail) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case DetailLoadedMsg:
		return d.loaded(m)
	case NeighborsPrefetchedMsg:
		if m.Err != nil {
			d.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPrefetch, Comp: "detail", CharID: m.ID, Err: m.Err.Error()})
		} else {
			d.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPrefetch, Comp: "detail", CharID: m.ID, Count: len(m.Warmed)})
		}
	}
	return nil
}

func (d *Detail) loaded(m DetailLoadedMsg) tea.Cmd {
	if !d.tok.current(m.Token) {
		d.events.Stale("detail", uint64(m.Token), uint64(d.tok.cur))
		return nil
	}

	d.loading = false
	if m.Err != nil {
		d.character = nil
		d.err = m.Err
		d.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindDetailError, Comp: "detail", Token: uint64(m.Token), CharID: m.ID, Err: m.Err.Error()})
		return nil
	}

	c := m.Character
	d.character = &c
	d.err = nil
	d.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindDetailComplete, Comp: "detail", Token: uint64(m.Token), CharID: m.ID})

	if d.prefetch {
		return d.prefetchNeighbors(m.ID)
	}
	return nil
}

// prefetchNeighbors fetches id-1 and id+1 concurrently. The results are
// discarded; the point is to have them in the response cache for n/p.
func (d *Detail) prefetchNeighbors(id int) tea.Cmd {
	max := d.maxID()
	var ids []int
	for _, n := range []int{id - 1, id + 1} {
		if character.ValidID(n, max) {
			ids = append(ids, n)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	src, ctx := d.src, d.ctx
	return func() tea.Msg {
		// One neighbor failing must not cancel the other; a navigation fetch
		// may join that request.
		var g errgroup.Group
		g.SetLimit(2)
		warmed := make([]bool, len(ids))
		for i, n := range ids {
			g.Go(func() error {
				return guard("get", func() error {
					if _, err := src.Get(ctx, n); err != nil {
						return err
					}
					warmed[i] = true
					return nil
				})
			})
		}
		err := g.Wait()

		var ok []int
		for i, w := range warmed {
			if w {
				ok = append(ok, ids[i])
			}
		}
		return NeighborsPrefetchedMsg{ID: id, Warmed: ok, Err: err}
	}
}
