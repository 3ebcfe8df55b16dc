package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildReport(t *testing.T) {
	export := Export{
		UserID: "user-1",
		Events: []models.ActivityEvent{
			{ID: "e3", UserID: "user-1", ActivityType: models.ActivityVoiceJournal, OccurredAt: at("2023-06-12T09:00:00Z")},
			{ID: "e1", UserID: "user-1", ActivityType: models.ActivityVoiceJournal, OccurredAt: at("2023-06-10T09:00:00Z")},
			{ID: "e2", UserID: "user-1", ActivityType: models.ActivityVoiceJournal, OccurredAt: at("2023-06-11T21:00:00Z")},
		},
		CheckIns: []models.EmotionalCheckIn{
			{ID: "c1", UserID: "user-1", EmotionType: models.EmotionJoy, Intensity: 7, CreatedAt: at("2023-06-11T08:00:00Z")},
		},
	}

	w, err := reportWindow("2023-06-01", "2023-06-30", time.UTC)
	require.NoError(t, err)

	d := buildReport(export, w, analytics.DefaultStreakPolicy(), analytics.ReportOptions{}, at("2023-06-12T12:00:00Z"))

	require.NotNil(t, d.Streak)
	assert.Equal(t, "user-1", d.UserID)
	assert.Equal(t, 3, d.Streak.State.CurrentStreak)
	assert.Equal(t, 3, d.Streak.State.TotalDaysActive)
	assert.Equal(t, 2, d.Streak.GraceRemaining)

	require.NotNil(t, d.Achievements)
	assert.Equal(t, len(analytics.Catalog()), d.Achievements.Total)
	assert.GreaterOrEqual(t, d.Achievements.EarnedCount, 1)

	require.NotNil(t, d.EmotionDistribution)
	assert.Equal(t, 1, d.EmotionDistribution.Total)
}

func TestBuildReportTimezoneShiftsDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00Z on the 11th is still the 10th in New York.
	export := Export{
		UserID: "user-1",
		Events: []models.ActivityEvent{
			{ID: "e1", ActivityType: models.ActivityVoiceJournal, OccurredAt: at("2023-06-10T14:00:00Z")},
			{ID: "e2", ActivityType: models.ActivityVoiceJournal, OccurredAt: at("2023-06-11T02:00:00Z")},
		},
	}

	w, err := reportWindow("", "", ny)
	require.NoError(t, err)
	d := buildReport(export, w, analytics.DefaultStreakPolicy(), analytics.ReportOptions{}, at("2023-06-11T12:00:00Z"))
	assert.Equal(t, 1, d.Streak.State.TotalDaysActive)
	assert.Equal(t, 1, d.Streak.State.CurrentStreak)
}

func TestReportWindowErrors(t *testing.T) {
	_, err := reportWindow("2023-06-10", "2023-06-01", time.UTC)
	assert.Error(t, err)

	_, err = reportWindow("June 1", "", time.UTC)
	assert.Error(t, err)
}
