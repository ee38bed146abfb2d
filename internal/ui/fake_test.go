package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/state"
)

const testPageSize = 20

// fakeSource serves characters 1..n in pages of testPageSize.
type fakeSource struct {
	mu      sync.Mutex
	n       int
	listErr map[int]error

	listCalls   []int
	filters     []character.Filters
	searchCalls []string
	getCalls    []int
}

func newFakeSource(n int) *fakeSource {
	return &fakeSource{n: n, listErr: map[int]error{}}
}

func mkChar(id int) character.Character {
	name := fmt.Sprintf("Character %d", id)
	switch id {
	case 1:
		name = "Rick Sanchez"
	case 2:
		name = "Morty Smith"
	}
	return character.Character{
		ID:      id,
		Name:    name,
		Status:  character.StatusAlive,
		Species: "Human",
		Gender:  character.GenderMale,
		Origin:  character.Place{Name: "Earth (C-137)"},
		Episode: []string{"https://rickandmortyapi.com/api/episode/1"},
	}
}

func (f *fakeSource) List(_ context.Context, page int, filters character.Filters) (character.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	f.filters = append(f.filters, filters)
	if err := f.listErr[page]; err != nil {
		return character.Page{}, err
	}
	pages := (f.n + testPageSize - 1) / testPageSize
	var p character.Page
	p.Info = character.Info{Count: f.n, Pages: pages}
	for id := (page-1)*testPageSize + 1; id <= page*testPageSize && id <= f.n; id++ {
		p.Results = append(p.Results, mkChar(id))
	}
	return p, nil
}

func (f *fakeSource) SearchByName(_ context.Context, name string, _ int) (character.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, name)
	var p character.Page
	for id := 1; id <= f.n; id++ {
		c := mkChar(id)
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			p.Results = append(p.Results, c)
		}
	}
	if len(p.Results) == 0 {
		return character.Page{}, &fetch.Error{Kind: fetch.KindNotFound, Op: "search", Status: 404}
	}
	p.Info = character.Info{Count: len(p.Results), Pages: 1}
	return p, nil
}

func (f *fakeSource) Get(_ context.Context, id int) (character.Character, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	if id < 1 || id > f.n {
		return character.Character{}, &fetch.Error{Kind: fetch.KindNotFound, Op: "get", Status: 404}
	}
	return mkChar(id), nil
}

func (f *fakeSource) calls() (list []int, search []string, get []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...), append([]string(nil), f.searchCalls...), append([]int(nil), f.getCalls...)
}

// newTestApp builds an App over src with a 1ms debounce and a static cursor,
// so no command returned in tests waits on a timer longer than that.
func newTestApp(t *testing.T, src *fakeSource, opts ...func(*Options)) App {
	t.Helper()
	maxID := state.FixedMaxID(src.n)
	o := Options{
		Session:        state.NewSession(state.Deps{Source: src, MaxID: maxID}),
		MaxID:          maxID,
		SearchDebounce: time.Millisecond,
	}
	for _, fn := range opts {
		fn(&o)
	}
	app := NewApp(o)
	app.input.Cursor.SetMode(cursor.CursorStatic)
	return app
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(a App, key string) (App, tea.Cmd) {
	model, cmd := a.Update(keyMsg(key))
	return model.(App), cmd
}

func resize(a App, w, h int) App {
	model, _ := a.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return model.(App)
}

// drain runs cmd and feeds every message it produces back into the app until
// no commands remain. Spinner ticks are dropped so the loop terminates.
func drain(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("drain: too many commands")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, nil:
		default:
			model, next := a.Update(msg)
			a = model.(App)
			queue = append(queue, next)
		}
	}
	return a
}

// pressAndDrain presses key and runs everything that follows from it.
func pressAndDrain(t *testing.T, a App, key string) App {
	t.Helper()
	a, cmd := press(a, key)
	return drain(t, a, cmd)
}

// started returns a ready app with the first page loaded.
func started(t *testing.T, src *fakeSource, opts ...func(*Options)) App {
	t.Helper()
	app := resize(newTestApp(t, src, opts...), 100, 40)
	return drain(t, app, app.Init())
}
