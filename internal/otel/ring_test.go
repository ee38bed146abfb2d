package otel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pushIDs(r *Ring, ids ...int) {
	for _, id := range ids {
		r.Push(Event{Kind: KindDetailLoad, CharID: id})
	}
}

func ids(events []Event) []int {
	var out []int
	for _, e := range events {
		out = append(out, e.CharID)
	}
	return out
}

func TestNewRingDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultRingSize, NewRing(0).Cap())
	assert.Equal(t, DefaultRingSize, NewRing(-3).Cap())
	assert.Equal(t, 4, NewRing(4).Cap())
}

func TestRingRecentOrder(t *testing.T) {
	r := NewRing(4)
	assert.Nil(t, r.Recent(10, nil))

	pushIDs(r, 1, 2, 3)
	assert.Equal(t, []int{1, 2, 3}, ids(r.Recent(10, nil)))
	assert.Equal(t, []int{2, 3}, ids(r.Recent(2, nil)))
	assert.Nil(t, r.Recent(0, nil))
	assert.Equal(t, 3, r.Len())
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing(3)
	pushIDs(r, 1, 2, 3, 4, 5)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, ids(r.Recent(10, nil)))
}

func TestRingRecentFilter(t *testing.T) {
	r := NewRing(8)
	pushIDs(r, 1, 2, 1, 3, 1)

	assert.Equal(t, []int{1, 1, 1}, ids(r.Recent(10, About(1))))
	assert.Equal(t, []int{1, 1}, ids(r.Recent(2, About(1))))
	assert.Empty(t, r.Recent(10, About(9)))
}

func TestRingTallyOutlivesOverwrite(t *testing.T) {
	r := NewRing(2)
	r.Push(Event{Kind: KindFetchComplete})
	r.Push(Event{Kind: KindFetchComplete})
	r.Push(Event{Kind: KindCacheHit})
	r.Push(Event{Kind: KindSearchStart})
	r.Push(Event{Kind: KindStale})
	r.Push(Event{Kind: KindAIFallback, Level: LevelError})

	want := Tally{Fetches: 2, CacheHits: 1, Searches: 1, Stale: 1, Fallbacks: 1, Errors: 1}
	assert.Equal(t, want, r.Tally())
	assert.Equal(t, 2, r.Len())
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRing(2)
	extra := map[string]any{"current": 5}
	r.Push(Event{Kind: KindStale, Extra: extra})
	extra["current"] = 6

	got := r.Recent(1, nil)
	assert.Equal(t, 5, got[0].Extra["current"])
}

func TestRingConcurrent(t *testing.T) {
	r := NewRing(64)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Push(Event{Kind: KindFetchComplete})
				_ = r.Recent(5, nil)
				_ = r.Tally()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, r.Tally().Fetches)
	assert.Equal(t, 64, r.Len())
}
