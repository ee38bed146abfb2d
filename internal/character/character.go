// Package character defines the read-only character records served by the
// Rick & Morty API and the small value types built around them.
package character

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxID is the highest character id known to the API at the time of
// writing. Treated as configuration, see config.API.MaxCharacterID.
const DefaultMaxID = 826

// Status is the life status of a character as reported by the API.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

// Label returns the status for display.
func (s Status) Label() string {
	switch s {
	case StatusAlive:
		return "Alive"
	case StatusDead:
		return "Dead"
	case StatusUnknown, "":
		return "Unknown"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the statuses the API uses.
func (s Status) Valid() bool {
	return s == StatusAlive || s == StatusDead || s == StatusUnknown
}

// Gender is the gender of a character as reported by the API.
type Gender string

const (
	GenderFemale     Gender = "Female"
	GenderMale       Gender = "Male"
	GenderGenderless Gender = "Genderless"
	GenderUnknown    Gender = "unknown"
)

// Label returns the gender for display.
func (g Gender) Label() string {
	switch g {
	case GenderUnknown, "":
		return "Unknown"
	default:
		return string(g)
	}
}

// Valid reports whether g is one of the genders the API uses.
func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderGenderless, GenderUnknown:
		return true
	}
	return false
}

// Place is a named reference to a location resource.
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Known reports whether the API knows anything about the place.
func (p Place) Known() bool {
	return p.Name != "" && p.Name != "unknown"
}

// Character is one record of the character resource.
// Records are never modified locally.
type Character struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Status   Status    `json:"status"`
	Species  string    `json:"species"`
	Type     string    `json:"type"`
	Gender   Gender    `json:"gender"`
	Origin   Place     `json:"origin"`
	Location Place     `json:"location"`
	Image    string    `json:"image"`
	Episode  []string  `json:"episode"`
	URL      string    `json:"url"`
	Created  time.Time `json:"created"`
}

// EpisodeCount is the number of episodes the character appears in.
func (c Character) EpisodeCount() int {
	return len(c.Episode)
}

// EpisodeIDs parses the episode ids out of the episode URLs, skipping any
// that do not end in a positive integer.
func (c Character) EpisodeIDs() []int {
	ids := make([]int, 0, len(c.Episode))
	for _, u := range c.Episode {
		if id, ok := IDFromURL(u); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Validate checks a decoded record against the shape the API promises.
func (c Character) Validate(maxID int) error {
	switch {
	case !ValidID(c.ID, maxID):
		return fmt.Errorf("character id %d out of range 1..%d", c.ID, maxID)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("character %d has no name", c.ID)
	case !c.Status.Valid():
		return fmt.Errorf("character %d has unknown status %q", c.ID, c.Status)
	case !c.Gender.Valid():
		return fmt.Errorf("character %d has unknown gender %q", c.ID, c.Gender)
	}
	return nil
}

// ValidID reports whether id lies in 1..maxID.
func ValidID(id, maxID int) bool {
	return id >= 1 && id <= maxID
}

// ParseID parses user input as a character id. Range is not checked.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#")))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return id, nil
}

// IDFromURL extracts the trailing numeric id of a resource URL such as
// https://rickandmortyapi.com/api/episode/28.
func IDFromURL(u string) (int, bool) {
	u = strings.TrimRight(u, "/")
	i := strings.LastIndexByte(u, '/')
	if i < 0 || i == len(u)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(u[i+1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
