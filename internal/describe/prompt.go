package describe

import (
	"fmt"
	"strings"

	"github.com/abelbrown/rickdex/internal/character"
)

// MaxLines is the longest description kept.
const MaxLines = 4

// SystemPrompt sets the voice of generated descriptions.
const SystemPrompt = "You are an expert on science fiction and the animated series Rick and Morty. " +
	"You write short, vivid character descriptions for fans."

// Prompt builds the generator prompt for c from its own fields.
func Prompt(c character.Character) string {
	typ := c.Type
	if typ == "" {
		typ = "Normal"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a creative, engaging paragraph of at most %d lines describing this character.\n\n", MaxLines)
	b.WriteString("Character data:\n")
	fmt.Fprintf(&b, "- Name: %s\n", c.Name)
	fmt.Fprintf(&b, "- Status: %s\n", c.Status.Label())
	fmt.Fprintf(&b, "- Species: %s\n", c.Species)
	fmt.Fprintf(&b, "- Type: %s\n", typ)
	fmt.Fprintf(&b, "- Gender: %s\n", c.Gender.Label())
	fmt.Fprintf(&b, "- Origin: %s\n", c.Origin.Name)
	fmt.Fprintf(&b, "- Location: %s\n", c.Location.Name)
	fmt.Fprintf(&b, "- Episodes: %d\n\n", c.EpisodeCount())
	b.WriteString("Instructions:\n")
	fmt.Fprintf(&b, "- Write no more than %d lines\n", MaxLines)
	b.WriteString("- Use an enthusiastic tone suited to science fiction fans\n")
	b.WriteString("- Mention their status, species and origin\n")
	fmt.Fprintf(&b, "- Refer to their appearance in %s\n", episodes(c.EpisodeCount()))
	b.WriteString("- Do not use asterisks, headings, bullet points or emoji\n\n")
	b.WriteString("Reply with the paragraph only, without introduction or commentary.")
	return b.String()
}

func episodes(n int) string {
	if n == 1 {
		return "1 episode"
	}
	return fmt.Sprintf("%d episodes", n)
}
