package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/abelbrown/rickdex/internal/character"
	"github.com/abelbrown/rickdex/internal/config"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/logging"
	"github.com/abelbrown/rickdex/internal/store"
)

// loadConfig loads the config and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if baseURLFlag != "" {
		cfg.API.BaseURL = baseURLFlag
	}
	if noCache {
		cfg.Cache.Disabled = true
	}
	return cfg, nil
}

// newClient builds the API client. The returned func releases the cache.
func newClient(cfg *config.Config) (*fetch.Client, func()) {
	opts := fetch.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.APITimeout(),
		MaxID:             cfg.API.MaxCharacterID,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	}
	closeFn := func() {}
	if !cfg.Cache.Disabled {
		st, err := store.Open(cfg.Cache.Path, cfg.CacheTTL())
		if err != nil {
			logging.Warn("response cache unavailable", "err", err)
		} else {
			opts.Cache = st
			closeFn = func() { st.Close() }
		}
	}
	return fetch.New(opts), closeFn
}

// eventLogPath returns the path of the TUI's event log.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "events.jsonl")
}

// fail reports err with its user-facing message and the underlying detail.
func fail(op string, err error) error {
	var fe *fetch.Error
	if errors.As(err, &fe) {
		return fmt.Errorf("%s: %s (%w)", op, fetch.Message(err), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// filterFlags are the list filters shared by list and url.
type filterFlags struct {
	name, status, species, kind, gender string
}

func (f filterFlags) filters() (character.Filters, error) {
	out := character.Filters{
		Name:    f.name,
		Status:  character.Status(normalize(f.status, "Alive", "Dead", "unknown")),
		Species: f.species,
		Type:    f.kind,
		Gender:  character.Gender(normalize(f.gender, "Female", "Male", "Genderless", "unknown")),
	}
	if out.Status != "" && !out.Status.Valid() {
		return out, fmt.Errorf("unknown status %q (want alive, dead or unknown)", f.status)
	}
	if out.Gender != "" && !out.Gender.Valid() {
		return out, fmt.Errorf("unknown gender %q (want female, male, genderless or unknown)", f.gender)
	}
	return out, nil
}

// normalize maps s case-insensitively onto one of the API spellings.
func normalize(s string, spellings ...string) string {
	for _, sp := range spellings {
		if strings.EqualFold(s, sp) {
			return sp
		}
	}
	return s
}

// printJSON writes v indented.
func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// printCharacters writes one line per character, or JSON with --format json.
func printCharacters(w io.Writer, cs []character.Character) error {
	if formatFlag == "json" {
		return printJSON(w, cs)
	}
	for _, c := range cs {
		species := c.Species
		if c.Type != "" {
			species += " (" + c.Type + ")"
		}
		fmt.Fprintf(w, "%5d  %-8s %-32s %-28s %d episodes\n", c.ID, c.Status.Label(), truncate(c.Name, 32), truncate(species, 28), c.EpisodeCount())
	}
	return nil
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
