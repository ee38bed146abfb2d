package state

import "github.com/abelbrown/rickdex/internal/character"

// DisplaySource says which result set the browse view shows.
type DisplaySource int

const (
	ShowList DisplaySource = iota
	ShowSearch
)

// Display is the result set chosen for rendering.
type Display struct {
	Source      DisplaySource
	Items       []character.Character
	IsLoading   bool
	Err         error
	Empty       bool
	HasNextPage bool // only for the list; search is a single page
}

// Decide picks between search results and the paginated list. It is cheap
// and must be called on every render rather than cached.
func Decide(list ListView, search SearchView) Display {
	if search.Active {
		return Display{
			Source:    ShowSearch,
			Items:     search.Results,
			IsLoading: search.IsSearching,
			Err:       search.Err,
			Empty:     len(search.Results) == 0 && !search.IsSearching && search.Err == nil,
		}
	}
	return Display{
		Source:      ShowList,
		Items:       list.Items,
		IsLoading:   list.IsLoading,
		Err:         list.Err,
		Empty:       list.Empty,
		HasNextPage: list.HasNextPage,
	}
}
