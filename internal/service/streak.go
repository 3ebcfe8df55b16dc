package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

// maxMutationAttempts is the first attempt plus one retry after a lost
// version race.
const maxMutationAttempts = 2

type streakService struct {
	repo         repository.StreakRepository
	achievements AchievementService
	locker       lock.Locker
	policy       analytics.StreakPolicy
	now          func() time.Time
}

// NewStreakService creates a new streak service. achievements may be nil.
func NewStreakService(repo repository.StreakRepository, achievements AchievementService, locker lock.Locker, policy analytics.StreakPolicy, opts ...Option) StreakService {
	o := newOptions(opts)
	if locker == nil {
		locker = lock.NewKeyed()
	}
	return &streakService{
		repo:         repo,
		achievements: achievements,
		locker:       locker,
		policy:       policy,
		now:          o.now,
	}
}

// mutation edits state in place and reports whether it must be saved
type mutation func(state *models.StreakState, today time.Time) (models.StreakOutcome, error)

func streakLockKey(userID string) string {
	return "streak:" + userID
}

func (s *streakService) today(loc *time.Location) time.Time {
	return calendar.Civil(s.now().In(locationOrUTC(loc)))
}

func (s *streakService) load(ctx context.Context, userID string) (*models.StreakState, error) {
	state, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewStreakState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}
	return state, nil
}

func (s *streakService) GetStreak(ctx context.Context, userID string, loc *time.Location) (*models.StreakResponse, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.StreakResponse{
		State:          state,
		Milestone:      analytics.MilestoneFor(state.CurrentStreak),
		GraceRemaining: s.policy.GraceRemaining(state, s.today(loc)),
	}, nil
}

func (s *streakService) NextMilestone(ctx context.Context, userID string) (*models.MilestoneProgress, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress := analytics.MilestoneFor(state.CurrentStreak)
	return &progress, nil
}

func (s *streakService) RecordActivity(ctx context.Context, userID string, day time.Time, useGrace bool, loc *time.Location) (*models.StreakUpdate, error) {
	return s.apply(ctx, userID, loc, func(state *models.StreakState, today time.Time) (models.StreakOutcome, error) {
		out, err := s.policy.ApplyActivity(state, day, today, useGrace)
		if err != nil {
			return out, dateError(err)
		}
		return out, nil
	})
}

func (s *streakService) ResetStreak(ctx context.Context, userID string, loc *time.Location) (*models.StreakUpdate, error) {
	return s.apply(ctx, userID, loc, func(state *models.StreakState, _ time.Time) (models.StreakOutcome, error) {
		changed := analytics.ResetStreak(state)
		return models.StreakOutcome{Changed: changed, Reset: changed}, nil
	})
}

func (s *streakService) UseGracePeriod(ctx context.Context, userID string, loc *time.Location) (*models.StreakUpdate, error) {
	return s.apply(ctx, userID, loc, func(state *models.StreakState, today time.Time) (models.StreakOutcome, error) {
		out, err := s.policy.UseGrace(state, today, today)
		switch {
		case errors.Is(err, analytics.ErrGraceExhausted):
			used := s.policy.GraceUsed(state, today)
			return out, &GracePeriodExhaustedError{
				Used:      used,
				Max:       s.policy.MaxGracePerMonth,
				Remaining: s.policy.GraceRemaining(state, today),
				ResetsOn:  state.GracePeriodResetDate,
			}
		case errors.Is(err, analytics.ErrNoGraceGap):
			return out, &ValidationError{
				Fields: []FieldError{{Field: "date", Code: "no_grace_gap", Message: "there is no single missed day to bridge"}},
				Err:    err,
			}
		case err != nil:
			return out, dateError(err)
		}
		return out, nil
	})
}

// apply mutates the streak and then refreshes achievements. Refresh takes
// the same per-user lock, so it runs after mutate has released it.
func (s *streakService) apply(ctx context.Context, userID string, loc *time.Location, fn mutation) (*models.StreakUpdate, error) {
	update, err := s.mutate(ctx, userID, loc, fn)
	if err != nil {
		return nil, err
	}

	// Activity counts move even on a same-day repeat.
	if s.achievements != nil {
		unlocked, err := s.achievements.Refresh(ctx, userID, update.State)
		if err != nil {
			logger.Ctx(ctx).Error("failed to refresh achievements",
				logger.String("user_id", userID),
				logger.Err(err),
			)
		}
		update.NewAchievements = unlocked
	}
	return update, nil
}

// mutate runs fn under the per-user lock against freshly loaded state and
// saves the result. A lost version race is retried once with reloaded state
// before surfacing as a ConcurrencyConflictError.
func (s *streakService) mutate(ctx context.Context, userID string, loc *time.Location, fn mutation) (*models.StreakUpdate, error) {
	log := logger.Ctx(ctx)

	unlock, err := s.locker.Lock(ctx, streakLockKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock streak: %w", err)
	}
	defer unlock()

	today := s.today(loc)
	var lastErr error
	for attempt := 1; attempt <= maxMutationAttempts; attempt++ {
		state, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		before := state.CurrentStreak

		out, err := fn(state, today)
		if err != nil {
			return nil, err
		}

		saved := state
		if out.Changed {
			state.UpdatedAt = s.now().UTC()
			saved, err = s.repo.Save(ctx, state)
			if errors.Is(err, repository.ErrVersionConflict) {
				lastErr = err
				log.Warn("streak version conflict",
					logger.String("user_id", userID),
					logger.Int("attempt", attempt),
				)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to save streak: %w", err)
			}

			log.Info("streak updated",
				logger.String("user_id", userID),
				logger.Int("current_streak", saved.CurrentStreak),
				logger.Int("longest_streak", saved.LongestStreak),
				logger.Bool("grace_consumed", out.GraceConsumed),
				logger.Bool("reset", out.Reset),
			)
			if m := analytics.CrossedMilestone(before, saved.CurrentStreak); m > 0 {
				log.Info("streak milestone reached",
					logger.String("user_id", userID),
					logger.Int("milestone", m),
				)
			}
		}

		return &models.StreakUpdate{
			State:          saved,
			Outcome:        out,
			Milestone:      analytics.MilestoneFor(saved.CurrentStreak),
			GraceRemaining: s.policy.GraceRemaining(saved, today),
		}, nil
	}

	return nil, &ConcurrencyConflictError{UserID: userID, Err: lastErr}
}

func dateError(err error) error {
	switch {
	case errors.Is(err, analytics.ErrFutureDate):
		return &ValidationError{
			Fields: []FieldError{{Field: "date", Code: "future_date", Message: "activity date cannot be in the future"}},
			Err:    err,
		}
	case errors.Is(err, analytics.ErrBackdatedActivity):
		return &ValidationError{
			Fields: []FieldError{{Field: "date", Code: "backdated", Message: "activity date is earlier than the last recorded activity"}},
			Err:    err,
		}
	}
	return err
}
