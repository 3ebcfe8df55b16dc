package service

import (
	"context"
	"errors"
	"fmt"
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

func TestAchievementService_ListPaginates(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()
	total := len(analytics.Catalog())

	first, err := env.achievements.ListAchievements(ctx, "user-1", 1, 5)
	require.NoError(t, err)
	assert.Len(t, first.Achievements, 5)
	assert.Equal(t, total, first.Total)
	assert.Equal(t, 0, first.EarnedCount)

	last, err := env.achievements.ListAchievements(ctx, "user-1", 3, 5)
	require.NoError(t, err)
	assert.Len(t, last.Achievements, total-10)

	beyond, err := env.achievements.ListAchievements(ctx, "user-1", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, beyond.Achievements)
	assert.Equal(t, total, beyond.Total)
}

func TestAchievementService_ListValidation(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")

	tests := []struct {
		name     string
		page     int
		pageSize int
		fields   []string
	}{
		{name: "page zero", page: 0, pageSize: 10, fields: []string{"page"}},
		{name: "page size too large", page: 1, pageSize: MaxPageSize + 1, fields: []string{"page_size"}},
		{name: "both invalid", page: -1, pageSize: 0, fields: []string{"page", "page_size"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.achievements.ListAchievements(context.Background(), "user-1", tt.page, tt.pageSize)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestAchievementService_MasksHiddenUnearned(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")

	page, err := env.achievements.ListAchievements(context.Background(), "user-1", 1, MaxPageSize)
	require.NoError(t, err)

	var hidden *models.Achievement
	for i := range page.Achievements {
		if page.Achievements[i].Type == models.AchievementActiveDays100 {
			hidden = &page.Achievements[i]
		}
	}
	require.NotNil(t, hidden)
	assert.True(t, hidden.IsHidden)
	assert.Equal(t, hiddenTitle, hidden.Title)
	assert.Equal(t, hiddenDescription, hidden.Description)
}

func TestAchievementService_RefreshUnlocksOnce(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()

	_, err := env.events.Create(ctx, &models.ActivityEvent{
		ID:           "e1",
		UserID:       "user-1",
		ActivityType: models.ActivityVoiceJournal,
		OccurredAt:   env.clock.Now(),
	})
	require.NoError(t, err)

	unlocked, err := env.achievements.Refresh(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, []models.AchievementType{models.AchievementFirstJournal}, unlocked)

	again, err := env.achievements.Refresh(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, again)

	page, err := env.achievements.ListAchievements(ctx, "user-1", 1, MaxPageSize)
	require.NoError(t, err)
	assert.Equal(t, 1, page.EarnedCount)
	assert.Equal(t, 10, page.TotalPoints)
	for _, a := range page.Achievements {
		assert.NotEmpty(t, a.ID, a.Type)
	}
}

func TestAchievementService_UpsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	achRepo := mocks.NewMockAchievementRepository(ctrl)
	events := mocks.NewMockActivityEventRepository(ctrl)
	streaks := mocks.NewMockStreakRepository(ctrl)
	boom := errors.New("write failed")

	streaks.EXPECT().Get(gomock.Any(), "user-1").Return(nil, repository.ErrNotFound)
	events.EXPECT().CountByType(gomock.Any(), "user-1").Return(map[models.ActivityType]int{}, nil)
	achRepo.EXPECT().ListByUser(gomock.Any(), "user-1").Return(nil, nil)
	achRepo.EXPECT().Upsert(gomock.Any(), gomock.Len(len(analytics.Catalog()))).Return(boom)

	svc := NewAchievementService(achRepo, events, streaks, WithClock(func() time.Time { return time.Unix(0, 0) }))
	_, err := svc.Refresh(context.Background(), "user-1", nil)
	assert.ErrorIs(t, err, boom)
}

func addJournals(t *testing.T, env *testEnv, from, to int) {
	t.Helper()
	for i := from; i < to; i++ {
		_, err := env.events.Create(context.Background(), &models.ActivityEvent{
			ID:           fmt.Sprintf("e%d", i),
			UserID:       "user-1",
			ActivityType: models.ActivityVoiceJournal,
			OccurredAt:   env.clock.Now(),
		})
		require.NoError(t, err)
	}
}

func TestAchievementService_ListIsReadOnly(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()
	addJournals(t, env, 0, 1)

	page, err := env.achievements.ListAchievements(ctx, "user-1", 1, MaxPageSize)
	require.NoError(t, err)
	assert.Equal(t, 1, page.EarnedCount)

	stored, err := env.achStore.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

// gatedAchievements pauses the first ListByUser until release is closed
type gatedAchievements struct {
	repository.AchievementRepository
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func (g *gatedAchievements) ListByUser(ctx context.Context, userID string) ([]models.Achievement, error) {
	list, err := g.AchievementRepository.ListByUser(ctx, userID)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.listed)
		<-g.release
	}
	return list, err
}

func TestAchievementService_StaleRefreshKeepsUnlock(t *testing.T) {
	env := newTestEnv("2023-06-10T20:00:00Z")
	ctx := context.Background()
	addJournals(t, env, 0, 9)

	gated := &gatedAchievements{
		AchievementRepository: env.achStore,
		listed:                make(chan struct{}),
		release:               make(chan struct{}),
	}
	svc := NewAchievementService(gated, env.events, env.streakStore,
		WithClock(env.clock.Now), WithLocker(lock.NewKeyed()))

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(ctx, "user-1", nil)
		firstDone <- err
	}()
	<-gated.listed

	addJournals(t, env, 9, 10)
	type result struct {
		unlocked []models.AchievementType
		err      error
	}
	secondDone := make(chan result, 1)
	go func() {
		unlocked, err := svc.Refresh(ctx, "user-1", nil)
		secondDone <- result{unlocked, err}
	}()

	select {
	case <-secondDone:
		t.Fatal("second refresh finished while the first still held the user lock")
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	require.NoError(t, <-firstDone)
	second := <-secondDone
	require.NoError(t, second.err)
	assert.Contains(t, second.unlocked, models.AchievementJournals10)

	stored, err := env.achStore.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	var journals10 *models.Achievement
	for i := range stored {
		if stored[i].Type == models.AchievementJournals10 {
			journals10 = &stored[i]
		}
	}
	require.NotNil(t, journals10)
	assert.True(t, journals10.Earned())
	assert.Equal(t, 1.0, journals10.Progress)
}
