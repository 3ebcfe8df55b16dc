// Package storage builds the repository set for the configured driver.
package storage

import (
	"fmt"

	"github.com/JonnyWalker81/innerlog/backend/internal/config"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository/gormstore"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository/memory"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

// Repositories groups every repository the services and middleware need
type Repositories struct {
	Events       repository.ActivityEventRepository
	CheckIns     repository.CheckInRepository
	Streaks      repository.StreakRepository
	Achievements repository.AchievementRepository
	Idempotency  repository.IdempotencyRepository

	closer func() error
}

// Close releases any connection held by the backend
func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Open returns the repositories for cfg.Storage.Driver. client is required
// for the supabase driver and ignored otherwise.
func Open(cfg config.StorageConfig, client *supabase.Client) (*Repositories, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return NewMemory(), nil

	case config.StorageSupabase:
		if client == nil {
			return nil, fmt.Errorf("supabase storage requires a client")
		}
		return &Repositories{
			Events:       repository.NewActivityEventRepository(client),
			CheckIns:     repository.NewCheckInRepository(client),
			Streaks:      repository.NewStreakRepository(client),
			Achievements: repository.NewAchievementRepository(client),
			Idempotency:  repository.NewIdempotencyRepository(client),
		}, nil

	case config.StorageSQLite, config.StoragePostgres:
		db, err := gormstore.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Events:       gormstore.NewActivityEventRepository(db),
			CheckIns:     gormstore.NewCheckInRepository(db),
			Streaks:      gormstore.NewStreakRepository(db),
			Achievements: gormstore.NewAchievementRepository(db),
			Idempotency:  gormstore.NewIdempotencyRepository(db),
			closer:       func() error { return gormstore.Close(db) },
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// NewMemory returns empty in-process repositories
func NewMemory() *Repositories {
	return &Repositories{
		Events:       memory.NewActivityEventStore(),
		CheckIns:     memory.NewCheckInStore(),
		Streaks:      memory.NewStreakStore(),
		Achievements: memory.NewAchievementStore(),
		Idempotency:  memory.NewIdempotencyStore(),
	}
}
