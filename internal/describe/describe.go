// Package describe turns a character into a short prose description.
//
// Generation is a two-stage pipeline: Attempt asks a text generator, and
// OrElse substitutes a templated Fallback when that fails. Describe never
// returns empty text and never panics, whatever the generator does.
package describe

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/rickdex/internal/brain"
	"github.com/abelbrown/rickdex/internal/character"
)

// Generator produces text for a prompt. *brain.Manager is the production one.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, req brain.Request) (brain.Response, error)
}

// Reason says why a generation attempt produced nothing usable.
type Reason string

const (
	ReasonUnconfigured Reason = "unconfigured"
	ReasonFailed       Reason = "failed"
	ReasonEmpty        Reason = "empty"
)

// GenerateError is returned by Attempt. It is logged, never shown.
type GenerateError struct {
	Reason Reason
	Err    error
}

func (e *GenerateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generate description: %s: %v", e.Reason, e.Err)
	}
	return "generate description: " + string(e.Reason)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// ReasonOf returns the reason carried by err, or "" for other errors.
func ReasonOf(err error) Reason {
	var ge *GenerateError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return ""
}

// DefaultMaxTokens leaves room for four lines of prose.
const DefaultMaxTokens = 400

// Attempt asks gen for a description of c, capped at maxTokens (DefaultMaxTokens
// when not positive), and returns the cleaned text. A panic inside the
// generator is reported as ReasonFailed.
func Attempt(ctx context.Context, gen Generator, c character.Character, maxTokens int) (text string, provider string, err error) {
	if gen == nil || !gen.Available() {
		return "", "", &GenerateError{Reason: ReasonUnconfigured, Err: brain.ErrNotConfigured}
	}

	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	defer func() {
		if r := recover(); r != nil {
			text, provider = "", ""
			err = &GenerateError{Reason: ReasonFailed, Err: fmt.Errorf("generator panic: %v", r)}
		}
	}()

	resp, genErr := gen.Generate(ctx, brain.Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   Prompt(c),
		MaxTokens:    maxTokens,
	})
	if genErr != nil {
		if errors.Is(genErr, brain.ErrNotConfigured) {
			return "", "", &GenerateError{Reason: ReasonUnconfigured, Err: genErr}
		}
		return "", "", &GenerateError{Reason: ReasonFailed, Err: genErr}
	}

	cleaned := Clean(resp.Content)
	if cleaned == "" {
		return "", "", &GenerateError{Reason: ReasonEmpty}
	}
	return cleaned, resp.Provider, nil
}

// Result is the outcome of the pipeline.
type Result struct {
	CharacterID int
	Text        string
	Generated   bool   // false when Text came from the fallback
	Provider    string // generator that wrote Text, if any
	Err         error  // absorbed generator error, for logging only
}

// OrElse returns r unchanged when it holds generated text, otherwise r with
// Text replaced by fallback(). Err is kept.
func (r Result) OrElse(fallback func() string) Result {
	if r.Generated && r.Text != "" {
		return r
	}
	r.Text = fallback()
	r.Generated = false
	r.Provider = ""
	return r
}

// Describe runs Attempt then OrElse(Fallback). Text is never empty.
func Describe(ctx context.Context, gen Generator, c character.Character, maxTokens int) Result {
	text, provider, err := Attempt(ctx, gen, c, maxTokens)
	r := Result{
		CharacterID: c.ID,
		Text:        text,
		Generated:   err == nil,
		Provider:    provider,
		Err:         err,
	}
	return r.OrElse(func() string { return Fallback(c) })
}
