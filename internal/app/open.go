// Package app wires configuration, storage and the remote mirror into a
// service.Service.
package app

import (
	"context"
	"fmt"

	"todolist/internal/backend/googletasks"
	"todolist/internal/config"
	"todolist/internal/persist"
	"todolist/internal/service"
	"todolist/internal/storage"
)

// Open opens the slot selected by cfg and attaches a session to it.
func Open(ctx context.Context, cfg *config.Config) (service.Service, error) {
	slot, err := openSlot(cfg)
	if err != nil {
		return nil, err
	}

	s, err := persist.Open(ctx, slot, persist.Options{
		Key:    cfg.Storage.Key,
		Remote: remoteFactory(cfg),
		Logger: cfg.Log(),
	})
	if err != nil {
		slot.Close()
		return nil, err
	}
	return s, nil
}

func openSlot(cfg *config.Config) (storage.Slot, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		cfg.Log().Debug("storage: memory", "quota", cfg.Storage.QuotaBytes)
		hub := storage.NewMemoryHub(storage.WithMemoryQuota(cfg.Storage.QuotaBytes))
		return hub.Slot(), nil

	case config.BackendSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		cfg.Log().Debug("storage: sqlite", "path", cfg.DBPath(), "quota", cfg.Storage.QuotaBytes)
		return storage.OpenSQLite(cfg.DBPath(),
			storage.WithQuota(cfg.Storage.QuotaBytes),
			storage.WithPollInterval(cfg.Storage.PollInterval),
			storage.WithLogger(cfg.Log()))

	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// remoteFactory defers building the Google Tasks client until push or pull
// asks for it, so local commands never read OAuth files.
func remoteFactory(cfg *config.Config) persist.RemoteFactory {
	return func(ctx context.Context) (service.Remote, error) {
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%s not found in %s (run: todolist login)", config.OAuthClientFile, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, service.ErrNotLoggedIn
		}
		return googletasks.New(ctx, cfg)
	}
}
