package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
)

func ids(cs []character.Character) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestListInitialView(t *testing.T) {
	l := NewList(newFakeSource(10, 5), nil)
	v := l.View()

	assert.Empty(t, v.Items)
	assert.False(t, v.IsLoading)
	assert.NoError(t, v.Err)
	assert.False(t, v.HasNextPage)
	assert.True(t, v.Empty)
}

func TestListLoadFirstPage(t *testing.T) {
	src := newFakeSource(12, 5)
	l := NewList(src, nil)

	cmd := l.Load(1)
	require.NotNil(t, cmd)
	assert.True(t, l.View().IsLoading)
	assert.False(t, l.View().Empty, "loading is not empty")

	l.Update(run(cmd))
	v := l.View()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(v.Items))
	assert.False(t, v.IsLoading)
	assert.Equal(t, character.Cursor{Current: 1, Total: 3}, v.Cursor)
	assert.Equal(t, 12, v.TotalCount)
	assert.True(t, v.HasNextPage)
}

func TestListAppendsPagesInOrder(t *testing.T) {
	src := newFakeSource(12, 5)
	l := NewList(src, nil)

	l.Update(run(l.Load(1)))
	l.Update(run(l.LoadMore()))
	l.Update(run(l.LoadMore()))

	v := l.View()
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, ids(v.Items))
	assert.Equal(t, 3, v.Cursor.Current)
	assert.False(t, v.HasNextPage)
	assert.Equal(t, []int{1, 2, 3}, src.listCalls)
}

func TestListLoadMoreAtEndIssuesNothing(t *testing.T) {
	src := newFakeSource(3, 5)
	l := NewList(src, nil)
	l.Update(run(l.Load(1)))

	assert.Nil(t, l.LoadMore())
	assert.Equal(t, []int{1}, src.listCalls)
}

func TestListLoadMoreWhileLoadingIssuesNothing(t *testing.T) {
	src := newFakeSource(12, 5)
	l := NewList(src, nil)
	l.Update(run(l.Load(1)))

	pending := l.LoadMore()
	require.NotNil(t, pending)
	assert.Nil(t, l.LoadMore(), "second LoadMore while the first is in flight")

	l.Update(run(pending))
	assert.Len(t, l.View().Items, 10)
}

func TestListLoadMoreBeforeFirstLoad(t *testing.T) {
	l := NewList(newFakeSource(12, 5), nil)
	assert.Nil(t, l.LoadMore(), "total pages unknown")
}

func TestListSkipsDuplicateIDs(t *testing.T) {
	l := NewList(newFakeSource(12, 5), nil)
	l.Update(run(l.Load(1)))

	tok := l.tok.next()
	l.loading = true
	l.Update(PageLoadedMsg{
		Token: tok,
		Page:  2,
		Result: character.Page{
			Info:    character.Info{Count: 12, Pages: 3},
			Results: []character.Character{mkChar(5), mkChar(6), mkChar(6), mkChar(7)},
		},
	})

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, ids(l.View().Items))
}

func TestListFailureKeepsItems(t *testing.T) {
	src := newFakeSource(12, 5)
	src.listErr[2] = networkErr
	l := NewList(src, nil)

	l.Update(run(l.Load(1)))
	l.Update(run(l.LoadMore()))

	v := l.View()
	assert.Len(t, v.Items, 5)
	assert.False(t, v.IsLoading)
	assert.True(t, fetch.Is(v.Err, fetch.KindNetwork))
	assert.False(t, v.Empty)
	assert.Equal(t, 1, v.Cursor.Current, "cursor stays on the last loaded page")

	// Manual retry.
	delete(src.listErr, 2)
	l.Update(run(l.LoadMore()))
	assert.Len(t, l.View().Items, 10)
	assert.NoError(t, l.View().Err)
}

func TestListErrorIsNotEmpty(t *testing.T) {
	src := newFakeSource(12, 5)
	src.listErr[1] = networkErr
	l := NewList(src, nil)

	l.Update(run(l.Load(1)))
	v := l.View()
	assert.Error(t, v.Err)
	assert.False(t, v.Empty)
	assert.False(t, v.IsLoading)
}

func TestListEmptyResult(t *testing.T) {
	l := NewList(newFakeSource(0, 5), nil)
	l.Update(run(l.Load(1)))

	v := l.View()
	assert.True(t, v.Empty)
	assert.NoError(t, v.Err)
	assert.False(t, v.HasNextPage)
}

func TestListApplyFiltersResets(t *testing.T) {
	src := newFakeSource(12, 5)
	l := NewList(src, nil)
	l.Update(run(l.Load(1)))
	l.Update(run(l.LoadMore()))

	f := character.Filters{Status: character.StatusAlive}
	cmd := l.ApplyFilters(f)

	v := l.View()
	assert.Empty(t, v.Items, "list cleared immediately")
	assert.Equal(t, 1, v.Cursor.Current)
	assert.Equal(t, f, v.Filters)
	assert.True(t, v.IsLoading)

	msg := run(cmd).(PageLoadedMsg)
	assert.Equal(t, f, msg.Filters)
	assert.Equal(t, 1, msg.Page)

	l.Update(msg)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(l.View().Items))
}

func TestListClearFilters(t *testing.T) {
	l := NewList(newFakeSource(12, 5), nil)
	l.Update(run(l.ApplyFilters(character.Filters{Name: "rick"})))
	l.Update(run(l.ClearFilters()))

	assert.True(t, l.View().Filters.IsZero())
	assert.Len(t, l.View().Items, 5)
}

func TestListRefresh(t *testing.T) {
	src := newFakeSource(12, 5)
	l := NewList(src, nil)
	l.Update(run(l.Load(1)))
	l.Update(run(l.LoadMore()))

	l.Update(run(l.Refresh()))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(l.View().Items))
	assert.Equal(t, []int{1, 2, 1}, src.listCalls)
}

func TestListDropsStaleCompletion(t *testing.T) {
	src := newFakeSource(12, 5)
	l := NewList(src, nil)

	old := l.Load(1)
	fresh := l.ApplyFilters(character.Filters{Status: character.StatusDead})

	// The filtered request answers first, then the stale unfiltered one.
	l.Update(run(fresh))
	l.Update(run(old))

	v := l.View()
	assert.Empty(t, v.Items, "no dead characters in the fake; stale page must not leak in")
	assert.Equal(t, character.Filters{Status: character.StatusDead}, v.Filters)
	assert.False(t, v.IsLoading)
}

func TestListIgnoresOtherMessages(t *testing.T) {
	l := NewList(newFakeSource(12, 5), nil)
	assert.Nil(t, l.Update(SearchDoneMsg{Token: 1}))
	assert.Nil(t, l.Update("unrelated"))
}
