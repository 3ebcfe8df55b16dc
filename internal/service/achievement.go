package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

// Pagination bounds for achievement listing
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	hiddenTitle       = "Hidden achievement"
	hiddenDescription = "Keep going to discover this one"
)

type achievementService struct {
	repo    repository.AchievementRepository
	events  repository.ActivityEventRepository
	streaks repository.StreakRepository
	locker  lock.Locker
	now     func() time.Time
}

// NewAchievementService creates a new achievement service. Pass WithLocker
// with the streak service's locker so both serialize on the same user key.
func NewAchievementService(repo repository.AchievementRepository, events repository.ActivityEventRepository, streaks repository.StreakRepository, opts ...Option) AchievementService {
	o := newOptions(opts)
	if o.locker == nil {
		o.locker = lock.NewKeyed()
	}
	return &achievementService{
		repo:    repo,
		events:  events,
		streaks: streaks,
		locker:  o.locker,
		now:     o.now,
	}
}

// Refresh re-evaluates the catalog under the user's streak lock and persists
// what changed. The caller must not hold that lock.
func (s *achievementService) Refresh(ctx context.Context, userID string, state *models.StreakState) ([]models.AchievementType, error) {
	unlock, err := s.locker.Lock(ctx, streakLockKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock achievements: %w", err)
	}
	defer unlock()

	_, changed, unlocked, err := s.evaluate(ctx, userID, state)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, userID, changed, unlocked); err != nil {
		return nil, err
	}
	return unlocked, nil
}

func (s *achievementService) ListAchievements(ctx context.Context, userID string, page, pageSize int) (*models.AchievementPage, error) {
	var fields []FieldError
	if page < 1 {
		fields = append(fields, FieldError{Field: "page", Code: "min", Message: "must be at least 1"})
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		fields = append(fields, FieldError{Field: "page_size", Code: "range", Message: fmt.Sprintf("must be between 1 and %d", MaxPageSize)})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	// Listing evaluates in memory only; records are written by Refresh.
	all, _, _, err := s.evaluate(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	result := &models.AchievementPage{
		Achievements: []models.Achievement{},
		Page:         page,
		PageSize:     pageSize,
		Total:        len(all),
	}
	for _, a := range all {
		if a.Earned() {
			result.EarnedCount++
			result.TotalPoints += a.Points
		}
	}

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return result, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	for _, a := range all[offset:end] {
		if a.IsHidden && !a.Earned() {
			a.Title = hiddenTitle
			a.Description = hiddenDescription
		}
		result.Achievements = append(result.Achievements, a)
	}
	return result, nil
}

// evaluate runs the catalog against the user's current counters without
// writing anything.
func (s *achievementService) evaluate(ctx context.Context, userID string, state *models.StreakState) ([]models.Achievement, []models.Achievement, []models.AchievementType, error) {
	if state == nil {
		loaded, err := s.streaks.Get(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			loaded = models.NewStreakState(userID)
		case err != nil:
			return nil, nil, nil, fmt.Errorf("failed to load streak: %w", err)
		}
		state = loaded
	}

	counts, err := s.events.CountByType(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to count activity: %w", err)
	}
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	all, changed, unlocked := analytics.Reconcile(userID, existing, analytics.CountersFrom(state, counts), s.now().UTC())
	return all, changed, unlocked, nil
}

func (s *achievementService) persist(ctx context.Context, userID string, changed []models.Achievement, unlocked []models.AchievementType) error {
	if len(changed) == 0 {
		return nil
	}
	for i := range changed {
		if changed[i].ID == "" {
			changed[i].ID = NewID()
		}
	}

	if err := s.repo.Upsert(ctx, changed); err != nil {
		return fmt.Errorf("failed to save achievements: %w", err)
	}

	for _, t := range unlocked {
		logger.Ctx(ctx).Info("achievement unlocked",
			logger.String("user_id", userID),
			logger.String("achievement", string(t)),
		)
	}
	return nil
}
