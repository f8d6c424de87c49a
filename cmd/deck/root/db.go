package root

import (
	"context"

	"agentrpg/internal/config"
	"agentrpg/internal/progression"
	"agentrpg/internal/service"
	"agentrpg/internal/storage"
)

func loadConfig() (config.Config, error) {
	path := cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	return config.Load(path)
}

// openService wires config, database, manager, and service for one
// command invocation. The returned cleanup closes the database and stops
// the manager sweep.
func openService(ctx context.Context) (*service.Service, config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	store := storage.NewStore(db)
	if err := storage.Seed(ctx, store); err != nil {
		_ = db.Close()
		return nil, config.Config{}, nil, err
	}

	mgr := progression.NewManager(progression.Options{
		SweepInterval: cfg.SweepInterval(),
	})
	cleanup := func() {
		mgr.Close()
		_ = db.Close()
	}
	return service.New(store, mgr), cfg, cleanup, nil
}
