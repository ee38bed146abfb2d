// Package state holds the client-side view state of rickdex: the paginated
// list, search, the detail pane and the AI description.
//
// Every service is owned by the Bubble Tea event loop. Operations mutate the
// service synchronously and return a tea.Cmd for the network work; the
// command's result comes back as a message carrying the Token it was issued
// with. A service drops any completion whose token is no longer current, so a
// slow response can never overwrite the result of a newer request.
package state

import (
	"context"
	"fmt"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/fetch"
)

// Token identifies one request issued by a service.
type Token uint64

// tokens issues monotonically increasing request tokens.
type tokens struct {
	cur Token
}

// next invalidates every outstanding token and returns a fresh one.
func (t *tokens) next() Token {
	t.cur++
	return t.cur
}

// current reports whether tok is the latest token issued.
func (t *tokens) current(tok Token) bool {
	return tok == t.cur
}

// Source is the character source the services read from.
// *fetch.Client satisfies it.
type Source interface {
	List(ctx context.Context, page int, f character.Filters) (character.Page, error)
	SearchByName(ctx context.Context, name string, page int) (character.Page, error)
	Get(ctx context.Context, id int) (character.Character, error)
}

// MaxIDFunc returns the current upper bound of valid character ids.
type MaxIDFunc func() int

// FixedMaxID returns a MaxIDFunc with a constant bound.
func FixedMaxID(n int) MaxIDFunc {
	return func() int { return n }
}

// guard runs fn and converts a panic into an unexpected fetch error so that
// a misbehaving source cannot take down the event loop.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &fetch.Error{Kind: fetch.KindUnexpected, Op: op, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return fn()
}
