package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
)

// fakeSource serves characters 1..n and pages of pageSize, with scripted failures.
type fakeSource struct {
	mu       sync.Mutex
	n        int
	pageSize int

	listErr   map[int]error // by page
	getErr    map[int]error // by id
	searchErr error
	panicOn   int // Get(id) panics
	slowOn    int // Get(id) takes slowFor unless ctx ends first
	slowFor   time.Duration

	listCalls   []int
	getCalls    []int
	searchCalls []string
}

func newFakeSource(n, pageSize int) *fakeSource {
	return &fakeSource{
		n:        n,
		pageSize: pageSize,
		listErr:  map[int]error{},
		getErr:   map[int]error{},
	}
}

func mkChar(id int) character.Character {
	return character.Character{
		ID:      id,
		Name:    fmt.Sprintf("Character %d", id),
		Status:  character.StatusAlive,
		Species: "Human",
		Gender:  character.GenderMale,
		Origin:  character.Place{Name: "Earth (C-137)"},
		Episode: []string{"https://rickandmortyapi.com/api/episode/1"},
	}
}

func (f *fakeSource) pages() int {
	return (f.n + f.pageSize - 1) / f.pageSize
}

func (f *fakeSource) List(ctx context.Context, page int, filters character.Filters) (character.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	if err := f.listErr[page]; err != nil {
		return character.Page{}, err
	}
	var results []character.Character
	for id := (page-1)*f.pageSize + 1; id <= page*f.pageSize && id <= f.n; id++ {
		c := mkChar(id)
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		results = append(results, c)
	}
	return character.Page{
		Info:    character.Info{Count: f.n, Pages: f.pages()},
		Results: results,
	}, nil
}

func (f *fakeSource) SearchByName(ctx context.Context, name string, page int) (character.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, name)
	if f.searchErr != nil {
		return character.Page{}, f.searchErr
	}
	var results []character.Character
	for id := 1; id <= f.n; id++ {
		c := mkChar(id)
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			results = append(results, c)
		}
	}
	if len(results) == 0 {
		return character.Page{}, &fetch.Error{Kind: fetch.KindNotFound, Op: "search", Status: 404}
	}
	return character.Page{Info: character.Info{Count: len(results), Pages: 1}, Results: results}, nil
}

func (f *fakeSource) Get(ctx context.Context, id int) (character.Character, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, id)
	err := f.getErr[id]
	panics := f.panicOn != 0 && f.panicOn == id
	slow := f.slowOn != 0 && f.slowOn == id
	f.mu.Unlock()

	if slow {
		select {
		case <-time.After(f.slowFor):
		case <-ctx.Done():
			return character.Character{}, &fetch.Error{Kind: fetch.KindNetwork, Op: "get", Err: ctx.Err()}
		}
	}

	if panics {
		panic("source exploded")
	}
	if err != nil {
		return character.Character{}, err
	}
	if id < 1 || id > f.n {
		return character.Character{}, &fetch.Error{Kind: fetch.KindNotFound, Op: "get", Status: 404}
	}
	return mkChar(id), nil
}

func (f *fakeSource) gets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.getCalls...)
}

// run executes cmd synchronously and returns its message, nil for a nil cmd.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

var (
	networkErr = &fetch.Error{Kind: fetch.KindNetwork, Op: "list", Err: fmt.Errorf("connection refused")}
	timeoutErr = &fetch.Error{Kind: fetch.KindTimeout, Op: "get", Err: context.DeadlineExceeded}
)
