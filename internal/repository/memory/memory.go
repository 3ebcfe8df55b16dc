// Package memory provides process-local repository implementations used for
// development and tests. All stores are safe for concurrent use.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

// ActivityEventStore is an in-memory repository.ActivityEventRepository
type ActivityEventStore struct {
	mu     sync.RWMutex
	byUser map[string][]models.ActivityEvent
	ids    map[string]struct{}
}

// NewActivityEventStore creates an empty event store
func NewActivityEventStore() *ActivityEventStore {
	return &ActivityEventStore{
		byUser: make(map[string][]models.ActivityEvent),
		ids:    make(map[string]struct{}),
	}
}

func (s *ActivityEventStore) Create(ctx context.Context, event *models.ActivityEvent) (*models.ActivityEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[event.ID]; exists {
		return nil, fmt.Errorf("activity event %s: %w", event.ID, repository.ErrDuplicate)
	}
	e := *event
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.ids[e.ID] = struct{}{}
	s.byUser[e.UserID] = append(s.byUser[e.UserID], e)
	return &e, nil
}

func (s *ActivityEventStore) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ActivityEvent
	for _, e := range s.byUser[userID] {
		if calendar.InWindow(e.OccurredAt, start, end) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *ActivityEventStore) CountByType(ctx context.Context, userID string) (map[models.ActivityType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.ActivityType]int)
	for _, e := range s.byUser[userID] {
		counts[e.ActivityType]++
	}
	return counts, nil
}

// CheckInStore is an in-memory repository.CheckInRepository
type CheckInStore struct {
	mu     sync.RWMutex
	byUser map[string][]models.EmotionalCheckIn
	ids    map[string]struct{}
}

// NewCheckInStore creates an empty check-in store
func NewCheckInStore() *CheckInStore {
	return &CheckInStore{
		byUser: make(map[string][]models.EmotionalCheckIn),
		ids:    make(map[string]struct{}),
	}
}

func (s *CheckInStore) Create(ctx context.Context, checkin *models.EmotionalCheckIn) (*models.EmotionalCheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[checkin.ID]; exists {
		return nil, fmt.Errorf("check-in %s: %w", checkin.ID, repository.ErrDuplicate)
	}
	c := *checkin
	s.ids[c.ID] = struct{}{}
	s.byUser[c.UserID] = append(s.byUser[c.UserID], c)
	return &c, nil
}

func (s *CheckInStore) GetByID(ctx context.Context, userID, id string) (*models.EmotionalCheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.byUser[userID] {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *CheckInStore) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.EmotionalCheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.EmotionalCheckIn
	for _, c := range s.byUser[userID] {
		if calendar.InWindow(c.CreatedAt, start, end) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// StreakStore is an in-memory repository.StreakRepository with optimistic
// version checks.
type StreakStore struct {
	mu     sync.Mutex
	states map[string]*models.StreakState
}

// NewStreakStore creates an empty streak store
func NewStreakStore() *StreakStore {
	return &StreakStore{states: make(map[string]*models.StreakState)}
}

func (s *StreakStore) Get(ctx context.Context, userID string) (*models.StreakState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return state.Clone(), nil
}

func (s *StreakStore) Save(ctx context.Context, state *models.StreakState) (*models.StreakState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if existing, ok := s.states[state.UserID]; ok {
		current = existing.Version
	}
	if current != state.Version {
		return nil, repository.ErrVersionConflict
	}

	stored := state.Clone()
	stored.Version = current + 1
	stored.UpdatedAt = time.Now().UTC()
	s.states[state.UserID] = stored
	return stored.Clone(), nil
}

// AchievementStore is an in-memory repository.AchievementRepository
type AchievementStore struct {
	mu     sync.RWMutex
	byUser map[string]map[models.AchievementType]models.Achievement
}

// NewAchievementStore creates an empty achievement store
func NewAchievementStore() *AchievementStore {
	return &AchievementStore{byUser: make(map[string]map[models.AchievementType]models.Achievement)}
}

func (s *AchievementStore) ListByUser(ctx context.Context, userID string) ([]models.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Achievement, 0, len(s.byUser[userID]))
	for _, a := range s.byUser[userID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (s *AchievementStore) Upsert(ctx context.Context, achievements []models.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range achievements {
		records, ok := s.byUser[a.UserID]
		if !ok {
			records = make(map[models.AchievementType]models.Achievement)
			s.byUser[a.UserID] = records
		}
		if existing, ok := records[a.Type]; ok {
			if a.ID == "" {
				a.ID = existing.ID
			}
			if existing.Earned() {
				a.EarnedDate = existing.EarnedDate
				a.Progress = existing.Progress
			}
		}
		records[a.Type] = a
	}
	return nil
}

// IdempotencyStore is an in-memory repository.IdempotencyRepository
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[models.IdempotencyScope]models.IdempotencyKey
}

// NewIdempotencyStore creates an empty idempotency store
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: make(map[models.IdempotencyScope]models.IdempotencyKey)}
}

func (s *IdempotencyStore) Get(ctx context.Context, scope models.IdempotencyScope, notBefore time.Time) (*models.IdempotencyKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[scope]
	if !ok || rec.CreatedAt.Before(notBefore) {
		return nil, repository.ErrNotFound
	}
	rec.ResponseBody = append(json.RawMessage(nil), rec.ResponseBody...)
	return &rec, nil
}

func (s *IdempotencyStore) Store(ctx context.Context, rec *models.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := rec.Scope()
	if _, exists := s.records[scope]; exists {
		return fmt.Errorf("idempotency key %s: %w", rec.Key, repository.ErrDuplicate)
	}
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.ResponseBody = append(json.RawMessage(nil), rec.ResponseBody...)
	s.records[scope] = stored
	return nil
}
