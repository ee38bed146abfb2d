// Command rickdex is a terminal browser for the Rick & Morty character API.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rickdex/internal/brain"
	"github.com/abelbrown/rickdex/internal/config"
	"github.com/abelbrown/rickdex/internal/fetch"
	"github.com/abelbrown/rickdex/internal/logging"
	"github.com/abelbrown/rickdex/internal/otel"
	"github.com/abelbrown/rickdex/internal/state"
	"github.com/abelbrown/rickdex/internal/store"
	"github.com/abelbrown/rickdex/internal/ui"
)

// ringSize is how many recent events the debug overlay can show.
const ringSize = 512

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rickdex: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir := config.Dir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if err := logging.Init(dataDir); err != nil {
		return err
	}
	defer logging.Close()

	// Structured events: JSONL on disk plus the ring buffer behind the debug overlay.
	eventFile, err := os.OpenFile(filepath.Join(dataDir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer eventFile.Close()

	events := otel.NewLogger(eventFile)
	defer events.Close()
	ring := otel.NewRing(ringSize)
	events.Mirror(ring)
	events.Info(otel.KindStartup, "main", "rickdex "+logging.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cache fetch.Cache
	if !cfg.Cache.Disabled {
		st, err := store.Open(cfg.Cache.Path, cfg.CacheTTL())
		if err != nil {
			// The cache only saves requests; run without it.
			logging.Warn("response cache unavailable", "path", cfg.Cache.Path, "err", err)
		} else {
			defer st.Close()
			cache = st
			purgeCtx, stopPurge := context.WithCancel(ctx)
			defer stopPurge()
			go purgeEvery(purgeCtx, st, cfg.CacheTTL())
		}
	}

	client := fetch.New(fetch.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.APITimeout(),
		MaxID:             cfg.API.MaxCharacterID,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Cache:             cache,
		Events:            events,
	})

	gen := brain.FromConfig(ctx, cfg)
	logging.Info("text generators", "available", gen.ListAvailable(), "preferred", cfg.AI.Preferred)

	session := state.NewSession(state.Deps{
		Source:            client,
		Generator:         gen,
		MaxID:             client.MaxID,
		Events:            events,
		AITimeout:         cfg.AITimeout(),
		AIMaxTokens:       cfg.AI.MaxTokens,
		PrefetchNeighbors: cfg.UI.PrefetchNeighbors,
	})

	app := ui.NewApp(ui.Options{
		Session:           session,
		Ring:              ring,
		Events:            events,
		MaxID:             client.MaxID,
		SearchDebounce:    cfg.SearchDebounce(),
		LoadMoreThreshold: cfg.UI.LoadMoreThreshold,
		OnTotal:           client.SetMaxID,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	_, err = program.Run()

	events.Info(otel.KindShutdown, "main", "")
	if err != nil {
		events.Error(otel.KindError, "main", err)
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// purgeEvery drops expired cache rows once per ttl until ctx is done.
func purgeEvery(ctx context.Context, st *store.Store, ttl time.Duration) {
	t := time.NewTicker(ttl)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := st.Purge(); err != nil {
				logging.Warn("cache purge failed", "err", err)
			} else if n > 0 {
				logging.Debug("cache purged", "rows", n)
			}
		}
	}
}
