// Package tui renders the live progression dashboard.
package tui

import (
	"context"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"agentrpg/internal/config"
	"agentrpg/internal/presenter"
	"agentrpg/internal/service"
)

// RunBoard starts the dashboard. A presenter mediates manager state,
// playback pacing, and the reconciliation poll; a filesystem watcher on
// the database directory picks up writes from other deck processes. When
// the watcher cannot be created the board still runs, refresh is just
// manual.
func RunBoard(ctx context.Context, svc *service.Service, cfg config.Config, out io.Writer) error {
	pres := presenter.New(svc.Manager(), nil, presenter.Options{
		PollInterval: cfg.PollInterval(),
	})
	pres.Start()
	defer pres.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		watcher = nil
	} else {
		if err := watcher.Add(filepath.Dir(cfg.DBPath)); err != nil {
			watcher.Close()
			watcher = nil
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	m := newBoardModel(ctx, svc, pres, cfg.DBPath, watcher)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err = p.Run()
	return err
}
