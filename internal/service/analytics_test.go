package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository/mocks"
)

func seedCheckIns(t *testing.T, env *testEnv, emotion models.EmotionType, intensities []int, start time.Time) {
	t.Helper()
	for i, intensity := range intensities {
		at := start.AddDate(0, 0, 7*i)
		env.clock.now = at.Add(time.Hour)
		_, err := env.checkins.CreateCheckIn(context.Background(), "user-1", &models.CreateCheckInRequest{
			EmotionType: emotion,
			Intensity:   intensity,
			Context:     models.ContextStandalone,
			CreatedAt:   &at,
		}, time.UTC)
		require.NoError(t, err)
	}
}

func TestAnalyticsService_TrendsAndInsights(t *testing.T) {
	env := newTestEnv("2023-06-01T00:00:00Z")
	ctx := context.Background()
	start := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC) // Monday morning

	seedCheckIns(t, env, models.EmotionAnxiety, []int{8, 7, 6, 5, 4}, start)
	w := analytics.Window{Start: start.AddDate(0, 0, -1), End: start.AddDate(0, 2, 0)}

	trends, err := env.analytics.GetTrends(ctx, "user-1", w, []models.EmotionType{models.EmotionAnxiety}, calendar.Week)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, models.TrendDecreasing, trends[0].OverallTrend)
	assert.Len(t, trends[0].DataPoints, 5)

	insights, err := env.analytics.GetInsights(ctx, "user-1", w, 0)
	require.NoError(t, err)
	var types []models.InsightType
	for _, in := range insights {
		types = append(types, in.Type)
		assert.GreaterOrEqual(t, in.Confidence, 0.0)
		assert.LessOrEqual(t, in.Confidence, 1.0)
	}
	assert.Contains(t, types, models.InsightImprovement)

	limited, err := env.analytics.GetInsights(ctx, "user-1", w, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAnalyticsService_EmptyWindow(t *testing.T) {
	env := newTestEnv("2023-06-01T00:00:00Z")
	ctx := context.Background()
	w := analytics.Window{Start: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}

	insights, err := env.analytics.GetInsights(ctx, "user-1", w, 5)
	require.NoError(t, err)
	assert.Empty(t, insights)

	patterns, err := env.analytics.DetectPatterns(ctx, "user-1", w, models.PatternWeekly, 0)
	require.NoError(t, err)
	assert.Empty(t, patterns)

	usage, err := env.analytics.GetUsageStatistics(ctx, "user-1", w)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.TotalEvents)
	assert.Len(t, usage.ByDayOfWeek, 7)
}

func TestAnalyticsService_Validation(t *testing.T) {
	env := newTestEnv("2023-06-01T00:00:00Z")
	ctx := context.Background()
	w := analytics.Window{}

	_, err := env.analytics.GetActivityDistribution(ctx, "user-1", w, "hour")
	assert.True(t, IsValidation(err))

	_, err = env.analytics.GetTrends(ctx, "user-1", w, []models.EmotionType{"NOSTALGIA"}, "")
	assert.True(t, IsValidation(err))

	_, err = env.analytics.GetTrends(ctx, "user-1", w, nil, "fortnight")
	assert.True(t, IsValidation(err))

	_, err = env.analytics.DetectPatterns(ctx, "user-1", w, "hourly", 3)
	assert.True(t, IsValidation(err))

	_, err = env.analytics.DetectPatterns(ctx, "user-1", w, models.PatternDaily, -1)
	assert.True(t, IsValidation(err))

	_, err = env.analytics.GetInsights(ctx, "user-1", w, -1)
	assert.True(t, IsValidation(err))

	inverted := analytics.Window{Start: time.Now(), End: time.Now().Add(-time.Hour)}
	_, err = env.analytics.GetUsageStatistics(ctx, "user-1", inverted)
	assert.True(t, IsValidation(err))
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	env := newTestEnv("2023-06-01T00:00:00Z")
	ctx := context.Background()
	start := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	seedCheckIns(t, env, models.EmotionJoy, []int{5, 6, 7}, start)

	w := analytics.Window{Start: start.AddDate(0, 0, -1), End: start.AddDate(0, 1, 0)}
	d, err := env.analytics.GetDashboard(ctx, "user-1", w)
	require.NoError(t, err)

	assert.Equal(t, "user-1", d.UserID)
	require.NotNil(t, d.Streak)
	require.NotNil(t, d.Achievements)
	assert.Equal(t, 3, d.Usage.TotalEvents)
	assert.Equal(t, 3, d.EmotionDistribution.Total)
	assert.Equal(t, models.DimensionDay, d.DayDistribution.Dimension)
	assert.Equal(t, models.DimensionTime, d.TimeDistribution.Dimension)
	require.Len(t, d.Trends, 1)
	assert.Equal(t, models.EmotionJoy, d.Trends[0].EmotionType)
	assert.NotEmpty(t, d.Patterns)
}

func TestAnalyticsService_DashboardPropagatesLoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockActivityEventRepository(ctrl)
	checkins := mocks.NewMockCheckInRepository(ctrl)
	boom := errors.New("timeout")

	events.EXPECT().ListByUserAndRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).Return(nil, boom)
	checkins.EXPECT().ListByUserAndRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	svc := NewAnalyticsService(events, checkins, nil, nil, EngineConfig{})
	_, err := svc.GetDashboard(context.Background(), "user-1", analytics.Window{})
	assert.ErrorIs(t, err, boom)
}
