package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when an optimistic update lost a race
	ErrVersionConflict = errors.New("record was modified concurrently")

	// ErrDuplicate is returned when inserting a record whose id already exists
	ErrDuplicate = errors.New("record already exists")
)

// ActivityEventRepository defines the interface for activity event data access.
// Events are append-only.
type ActivityEventRepository interface {
	Create(ctx context.Context, event *models.ActivityEvent) (*models.ActivityEvent, error)
	// ListByUserAndRange returns events with occurred_at in [start, end],
	// oldest first. Zero bounds are open.
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.ActivityEvent, error)
	CountByType(ctx context.Context, userID string) (map[models.ActivityType]int, error)
}

// CheckInRepository defines the interface for emotional check-in data access.
// Check-ins are append-only.
type CheckInRepository interface {
	Create(ctx context.Context, checkin *models.EmotionalCheckIn) (*models.EmotionalCheckIn, error)
	GetByID(ctx context.Context, userID, id string) (*models.EmotionalCheckIn, error)
	// ListByUserAndRange returns check-ins with created_at in [start, end],
	// oldest first. Zero bounds are open.
	ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.EmotionalCheckIn, error)
}

// StreakRepository stores one StreakState per user with optimistic locking
type StreakRepository interface {
	// Get returns ErrNotFound when the user has no stored state
	Get(ctx context.Context, userID string) (*models.StreakState, error)
	// Save writes state when the stored version equals state.Version and
	// returns the stored copy with Version incremented. A state with Version
	// 0 is inserted. Any mismatch yields ErrVersionConflict.
	Save(ctx context.Context, state *models.StreakState) (*models.StreakState, error)
}

// AchievementRepository defines the interface for achievement data access
type AchievementRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Achievement, error)
	// Upsert inserts or updates records keyed by (user_id, type)
	Upsert(ctx context.Context, achievements []models.Achievement) error
}
