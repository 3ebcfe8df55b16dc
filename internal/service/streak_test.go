package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository/mocks"
)

func TestStreakService_EndToEnd(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	steps := []struct {
		day   string
		grace bool
	}{
		{"2023-06-10", false},
		{"2023-06-11", false},
		{"2023-06-12", true},
		{"2023-06-13", false},
	}
	var (
		last     *models.StreakUpdate
		unlocked []models.AchievementType
	)
	for _, step := range steps {
		env.clock.Set(step.day + "T20:00:00Z")
		upd, err := env.streaks.RecordActivity(ctx, "user-1", civil(step.day), step.grace, time.UTC)
		require.NoError(t, err, step.day)
		last = upd
		unlocked = append(unlocked, upd.NewAchievements...)
	}

	assert.Equal(t, 4, last.State.CurrentStreak)
	assert.Equal(t, 1, last.State.GracePeriodUsedCount)
	assert.Equal(t, 4, last.State.TotalDaysActive)
	assert.Equal(t, int64(4), last.State.Version)
	assert.Equal(t, 1, last.GraceRemaining)
	assert.Equal(t, 7, last.Milestone.NextMilestone)
	assert.Contains(t, unlocked, models.AchievementStreak3Days)
}

func TestStreakService_GetStreakWithoutHistory(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")

	resp, err := env.streaks.GetStreak(context.Background(), "nobody", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.State.CurrentStreak)
	assert.Equal(t, 3, resp.Milestone.NextMilestone)
	assert.Equal(t, analytics.DefaultMaxGracePerMonth, resp.GraceRemaining)
}

func TestStreakService_DateValidation(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	_, err := env.streaks.RecordActivity(ctx, "user-1", civil("2023-06-11"), false, time.UTC)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "future_date", verr.Fields[0].Code)
	assert.ErrorIs(t, err, analytics.ErrFutureDate)

	_, err = env.streaks.RecordActivity(ctx, "user-1", civil("2023-06-10"), false, time.UTC)
	require.NoError(t, err)

	_, err = env.streaks.RecordActivity(ctx, "user-1", civil("2023-06-08"), false, time.UTC)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "backdated", verr.Fields[0].Code)
}

func TestStreakService_TodayFollowsLocation(t *testing.T) {
	// 02:00 UTC on the 11th is still the 10th in New York.
	env := newTestEnv("2023-06-11T02:00:00Z")
	ny := time.FixedZone("EDT", -4*60*60)

	_, err := env.streaks.RecordActivity(context.Background(), "user-1", civil("2023-06-11"), false, ny)
	assert.True(t, IsValidation(err))

	_, err = env.streaks.RecordActivity(context.Background(), "user-1", civil("2023-06-11"), false, time.UTC)
	assert.NoError(t, err)
}

func TestStreakService_UseGracePeriod(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	_, err := env.streaks.RecordActivity(ctx, "user-1", civil("2023-06-10"), false, time.UTC)
	require.NoError(t, err)

	env.clock.Set("2023-06-11T20:00:00Z")
	_, err = env.streaks.UseGracePeriod(ctx, "user-1", time.UTC)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "no_grace_gap", verr.Fields[0].Code)

	env.clock.Set("2023-06-12T20:00:00Z")
	upd, err := env.streaks.UseGracePeriod(ctx, "user-1", time.UTC)
	require.NoError(t, err)
	assert.True(t, upd.Outcome.GraceConsumed)
	assert.Equal(t, 2, upd.State.CurrentStreak)
	assert.Equal(t, 1, upd.GraceRemaining)
}

func TestStreakService_UseGracePeriodExhausted(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	reset := civil("2023-07-01")
	last := civil("2023-06-10")
	_, err := env.streakStore.Save(ctx, &models.StreakState{
		UserID:               "user-1",
		CurrentStreak:        5,
		LongestStreak:        5,
		LastActivityDate:     &last,
		TotalDaysActive:      1,
		ActivityDates:        []string{"2023-06-10"},
		GracePeriodUsedCount: 2,
		GracePeriodResetDate: &reset,
	})
	require.NoError(t, err)

	env.clock.Set("2023-06-12T20:00:00Z")
	_, err = env.streaks.UseGracePeriod(ctx, "user-1", time.UTC)

	var exhausted *GracePeriodExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Used)
	assert.Equal(t, 2, exhausted.Max)
	assert.Equal(t, 0, exhausted.Remaining)
	require.NotNil(t, exhausted.ResetsOn)
	assert.Equal(t, reset, *exhausted.ResetsOn)

	stored, err := env.streakStore.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.CurrentStreak)
}

func TestStreakService_ResetKeepsAchievements(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	for _, d := range []string{"2023-06-10", "2023-06-11", "2023-06-12"} {
		env.clock.Set(d + "T20:00:00Z")
		_, err := env.streaks.RecordActivity(ctx, "user-1", civil(d), false, time.UTC)
		require.NoError(t, err)
	}

	upd, err := env.streaks.ResetStreak(ctx, "user-1", time.UTC)
	require.NoError(t, err)
	assert.True(t, upd.Outcome.Reset)
	assert.Equal(t, 0, upd.State.CurrentStreak)
	assert.Equal(t, 3, upd.State.LongestStreak)

	page, err := env.achievements.ListAchievements(ctx, "user-1", 1, MaxPageSize)
	require.NoError(t, err)
	for _, a := range page.Achievements {
		if a.Type == models.AchievementStreak3Days {
			assert.True(t, a.Earned())
		}
	}

	// A second reset is a no-op and does not bump the version.
	again, err := env.streaks.ResetStreak(ctx, "user-1", time.UTC)
	require.NoError(t, err)
	assert.False(t, again.Outcome.Changed)
	assert.Equal(t, upd.State.Version, again.State.Version)
}

func TestStreakService_RetriesOnceAfterConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockStreakRepository(ctrl)
	clock := &fakeClock{}
	clock.Set("2023-06-10T20:00:00Z")

	gomock.InOrder(
		repo.EXPECT().Get(gomock.Any(), "user-1").Return(nil, repository.ErrNotFound),
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, repository.ErrVersionConflict),
		repo.EXPECT().Get(gomock.Any(), "user-1").Return(nil, repository.ErrNotFound),
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, s *models.StreakState) (*models.StreakState, error) {
				saved := s.Clone()
				saved.Version++
				return saved, nil
			}),
	)

	svc := NewStreakService(repo, nil, lock.NewKeyed(), analytics.DefaultStreakPolicy(), WithClock(clock.Now))
	upd, err := svc.RecordActivity(context.Background(), "user-1", civil("2023-06-10"), false, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, upd.State.CurrentStreak)
	assert.Equal(t, int64(1), upd.State.Version)
}

func TestStreakService_ConflictSurfacesAfterRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockStreakRepository(ctrl)
	clock := &fakeClock{}
	clock.Set("2023-06-10T20:00:00Z")

	repo.EXPECT().Get(gomock.Any(), "user-1").Return(nil, repository.ErrNotFound).Times(maxMutationAttempts)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, repository.ErrVersionConflict).Times(maxMutationAttempts)

	svc := NewStreakService(repo, nil, lock.NewKeyed(), analytics.DefaultStreakPolicy(), WithClock(clock.Now))
	_, err := svc.RecordActivity(context.Background(), "user-1", civil("2023-06-10"), false, time.UTC)

	var conflict *ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestStreakService_StorageErrorIsNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockStreakRepository(ctrl)
	boom := errors.New("connection reset")

	repo.EXPECT().Get(gomock.Any(), "user-1").Return(nil, boom)

	svc := NewStreakService(repo, nil, nil, analytics.DefaultStreakPolicy())
	_, err := svc.RecordActivity(context.Background(), "user-1", civil("2023-06-10"), false, time.UTC)
	assert.ErrorIs(t, err, boom)
}

func TestStreakService_ConcurrentSameDay(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.streaks.RecordActivity(ctx, "user-1", civil("2023-06-10"), false, time.UTC)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	state, err := env.streakStore.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 1, state.TotalDaysActive)
	assert.Equal(t, int64(1), state.Version)
}
