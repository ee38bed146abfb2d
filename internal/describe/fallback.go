package describe

import (
	"fmt"
	"strings"

	"github.com/abelbrown/rickdex/internal/character"
)

// mainCast holds hand-written descriptions for the Smith household.
var mainCast = map[int][]string{
	1: {
		"Rick Sanchez is the smartest man in the universe and never lets anyone forget it.",
		"A cynical genius with a portal gun, he drags his family across dimensions for science and spite.",
		"Beneath the burps and nihilism hides a grandfather who keeps choosing to come back.",
	},
	2: {
		"Morty Smith is Rick's anxious fourteen-year-old grandson and reluctant adventure sidekick.",
		"Dragged through countless dimensions, he has seen horrors no kid should, and it shows.",
		"His moral compass often ends up being the only one in the room.",
	},
	3: {
		"Summer Smith is Morty's older sister, a teenager who trades phone scrolling for interdimensional chaos.",
		"Sharp, impulsive and braver than she lets on, she is often more like Rick than anyone admits.",
		"When the family falls apart she is usually the one holding a weapon.",
	},
	4: {
		"Beth Smith is a horse surgeon and Rick's daughter, forever chasing her father's approval.",
		"Brilliant and fiercely competitive, she may or may not be a clone, and she has made peace with that.",
		"Her wine glass is rarely empty and her scalpel is always steady.",
	},
	5: {
		"Jerry Smith is Beth's husband and the family's most reliably unremarkable member.",
		"Insecure and easily flattered, he survives the multiverse mostly by accident.",
		"Somehow he keeps getting invited along anyway.",
	},
}

// Fallback builds a deterministic description of c from its own fields.
// The main family gets hand-written text. The result is never empty.
func Fallback(c character.Character) string {
	if lines, ok := mainCast[c.ID]; ok {
		return strings.Join(append(lines[:len(lines):len(lines)], appearances(c)), "\n")
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "This character"
	}

	return strings.Join([]string{
		fmt.Sprintf("%s is %s from %s.", name, kind(c), origin(c)),
		appearances(c),
		"Their story is one thread in the sprawling Rick and Morty multiverse.",
	}, "\n")
}

// kind renders "a living human", "a dead alien", "an alien of unknown status".
func kind(c character.Character) string {
	species := strings.ToLower(strings.TrimSpace(c.Species))
	if species == "" {
		species = "being"
	}
	switch c.Status {
	case character.StatusAlive:
		return "a living " + species
	case character.StatusDead:
		return "a dead " + species
	default:
		return article(species) + " " + species + " of unknown status"
	}
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func origin(c character.Character) string {
	if !c.Origin.Known() {
		return "an unknown origin"
	}
	return c.Origin.Name
}

func appearances(c character.Character) string {
	switch n := c.EpisodeCount(); n {
	case 0:
		return "They have not appeared in an episode yet."
	case 1:
		return "They have appeared in 1 episode of the series."
	default:
		return fmt.Sprintf("They have appeared in %d episodes of the series.", n)
	}
}
