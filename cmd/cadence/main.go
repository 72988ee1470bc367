package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cadence/internal/catalog"
	"github.com/mmcdole/cadence/internal/config"
	"github.com/mmcdole/cadence/internal/player"
	"github.com/mmcdole/cadence/internal/service"
	"github.com/mmcdole/cadence/internal/state"
	"github.com/mmcdole/cadence/internal/store"
	"github.com/mmcdole/cadence/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion, clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "discard cached tag data before starting")
	flag.Parse()

	if showVersion {
		fmt.Printf("cadence %s\n", Version)
		return
	}

	if err := run(clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(clearCache bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = config.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting cadence", "version", Version)

	if !cfg.IsConfigured() {
		return errors.New("no music directory configured; set library.music_dir in config.yaml")
	}
	if info, err := os.Stat(cfg.MusicDir()); err != nil || !info.IsDir() {
		return fmt.Errorf("music directory %s is not readable", cfg.MusicDir())
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("cadence must be run in an interactive terminal")
	}

	if clearCache {
		if err := config.ClearCache(cfg); err != nil {
			return err
		}
		logger.Info("cleared scan cache", "dir", cfg.CachePath())
	}

	libStore, err := store.NewLibraryStore(cfg.CachePath(), cfg.MusicDir())
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer libStore.Close()

	cat := catalog.New(cfg.MusicDir(), cfg.PlaylistDir(), libStore, logger)
	launcher := player.NewLauncher(cfg.Player.Command, cfg.Player.Args, cfg.Player.StartFlag, logger)

	librarySvc := service.NewLibraryService(cat, libStore, logger)
	searchSvc := service.NewSearchService(cat, logger)
	playbackSvc := service.NewPlaybackService(launcher, logger)
	playlistSvc := service.NewPlaylistService(cat, logger)

	model := tui.NewModel(state.New(*cfg), librarySvc, playbackSvc, searchSvc, playlistSvc)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	// The player outlives the program if quit came from a signal
	playbackSvc.Stop()
	logger.Info("shutting down")
	return nil
}
