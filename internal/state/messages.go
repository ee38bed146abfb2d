package state

import (
	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/describe"
)

// PageLoadedMsg completes List.Load.
type PageLoadedMsg struct {
	Token   Token
	Page    int
	Filters character.Filters
	Result  character.Page
	Err     error
}

// SearchDoneMsg completes a name or id search.
type SearchDoneMsg struct {
	Token   Token
	Mode    SearchMode
	Results []character.Character
	Err     error
}

// DetailLoadedMsg completes Detail.FetchByID.
type DetailLoadedMsg struct {
	Token     Token
	ID        int
	Character character.Character
	Err       error
}

// NeighborsPrefetchedMsg reports a finished neighbor prefetch.
// Informational only; the responses live in the fetch cache.
type NeighborsPrefetchedMsg struct {
	ID     int
	Warmed []int
	Err    error
}

// DescriptionReadyMsg completes AI.Generate.
type DescriptionReadyMsg struct {
	Token  Token
	Result describe.Result
}
