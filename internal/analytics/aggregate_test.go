package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func event(typ models.ActivityType, ts string, meta map[string]interface{}) models.ActivityEvent {
	return models.ActivityEvent{
		ID:           ts,
		UserID:       "user-1",
		ActivityType: typ,
		OccurredAt:   at(ts),
		Metadata:     meta,
	}
}

func TestAggregate(t *testing.T) {
	events := []models.ActivityEvent{
		// Monday 2023-06-12
		event(models.ActivityVoiceJournal, "2023-06-12T08:30:00Z", map[string]interface{}{"duration_seconds": 120.0}),
		event(models.ActivityVoiceJournal, "2023-06-12T20:00:00Z", map[string]interface{}{"duration": json.Number("60")}),
		event(models.ActivityToolUsage, "2023-06-13T13:00:00Z", map[string]interface{}{"tool_category": "breathing", "duration_seconds": 300}),
		event(models.ActivityEmotionalCheckIn, "2023-06-14T02:00:00Z", nil),
		// outside the window
		event(models.ActivityVoiceJournal, "2023-07-01T10:00:00Z", nil),
	}
	w := Window{Start: at("2023-06-01T00:00:00Z"), End: at("2023-06-30T23:59:59Z")}

	stats := Aggregate(events, w)

	assert.Equal(t, 4, stats.TotalEvents)
	assert.Equal(t, 2, stats.CountsByType[models.ActivityVoiceJournal])
	assert.Equal(t, 1, stats.CountsByType[models.ActivityToolUsage])
	assert.Equal(t, 480.0, stats.TotalDurationSeconds)
	assert.Equal(t, 180.0, stats.DurationByType[models.ActivityVoiceJournal])
	assert.Equal(t, 2, stats.ByDayOfWeek["Monday"])
	assert.Equal(t, 1, stats.ByDayOfWeek["Tuesday"])
	assert.Equal(t, 0, stats.ByDayOfWeek["Sunday"])
	assert.Len(t, stats.ByDayOfWeek, 7)
	assert.Equal(t, 1, stats.ByTimeOfDay[calendar.Morning])
	assert.Equal(t, 1, stats.ByTimeOfDay[calendar.Night])
	assert.Equal(t, 1, stats.ByToolCategory["breathing"])
	assert.Equal(t, 3, stats.ActiveDays)

	weeks := stats.Periods[calendar.Week]
	require.Len(t, weeks, 1)
	assert.Equal(t, "2023-W24", weeks[0].PeriodKey)
	assert.Equal(t, 4, weeks[0].Count)

	days := stats.Periods[calendar.Day]
	require.Len(t, days, 3)
	assert.Equal(t, "2023-06-12", days[0].PeriodKey)
	assert.Equal(t, 180.0, days[0].DurationSeconds)
}

func TestAggregate_EmptyWindow(t *testing.T) {
	stats := Aggregate(nil, Window{})

	assert.Equal(t, 0, stats.TotalEvents)
	assert.Equal(t, 0.0, stats.TotalDurationSeconds)
	assert.Len(t, stats.ByDayOfWeek, 7)
	assert.Len(t, stats.ByTimeOfDay, 4)
	for _, g := range calendar.Granularities {
		assert.Empty(t, stats.Periods[g])
	}
}

func TestAggregate_UsesWindowLocation(t *testing.T) {
	ny := time.FixedZone("EDT", -4*60*60)

	// 03:00 UTC on Tuesday is 23:00 Monday at UTC-4.
	events := []models.ActivityEvent{event(models.ActivityVoiceJournal, "2023-06-13T03:00:00Z", nil)}
	stats := Aggregate(events, Window{Loc: ny})

	assert.Equal(t, 1, stats.ByDayOfWeek["Monday"])
	assert.Equal(t, 1, stats.ByTimeOfDay[calendar.Evening])
	assert.Equal(t, "2023-06-12", stats.Periods[calendar.Day][0].PeriodKey)
}

func TestDistribution(t *testing.T) {
	events := []models.ActivityEvent{
		event(models.ActivityVoiceJournal, "2023-06-12T08:00:00Z", nil),
		event(models.ActivityVoiceJournal, "2023-06-12T09:00:00Z", nil),
		event(models.ActivityVoiceJournal, "2023-06-14T19:00:00Z", nil),
		event(models.ActivityVoiceJournal, "2023-06-18T19:30:00Z", nil),
	}

	byDay := Distribution(events, Window{}, models.DimensionDay)
	require.Len(t, byDay.Buckets, 7)
	assert.Equal(t, "Monday", byDay.Buckets[0].Label)
	assert.Equal(t, 50.0, byDay.Buckets[0].Percentage)
	assert.Equal(t, "Sunday", byDay.Buckets[6].Label)
	assert.Equal(t, 25.0, byDay.Buckets[6].Percentage)
	assert.Equal(t, "Monday", byDay.Peak)

	byTime := Distribution(events, Window{}, models.DimensionTime)
	require.Len(t, byTime.Buckets, 4)
	assert.Equal(t, string(calendar.Morning), byTime.Buckets[0].Label)
	assert.Equal(t, 2, byTime.Buckets[0].Count)
	assert.Equal(t, 2, byTime.Buckets[2].Count)
	// Ties resolve to the first slot in day order.
	assert.Equal(t, string(calendar.Morning), byTime.Peak)

	var total float64
	for _, b := range byTime.Buckets {
		total += b.Percentage
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestDistribution_Empty(t *testing.T) {
	d := Distribution(nil, Window{}, models.DimensionTime)
	assert.Equal(t, 0, d.Total)
	assert.Empty(t, d.Peak)
	for _, b := range d.Buckets {
		assert.Equal(t, 0.0, b.Percentage)
	}
}

func TestEmotionDistributionOf(t *testing.T) {
	checkins := []models.EmotionalCheckIn{
		checkin(models.EmotionJoy, 6, "2023-06-12T08:00:00Z"),
		checkin(models.EmotionAnxiety, 8, "2023-06-12T09:00:00Z"),
		checkin(models.EmotionAnxiety, 4, "2023-06-13T09:00:00Z"),
		checkin(models.EmotionSurprise, 5, "2023-06-14T09:00:00Z"),
	}

	d := EmotionDistributionOf(checkins, Window{})

	assert.Equal(t, 4, d.Total)
	require.Len(t, d.Emotions, 3)
	assert.Equal(t, models.EmotionAnxiety, d.Emotions[0].EmotionType)
	assert.Equal(t, 50.0, d.Emotions[0].Percentage)
	assert.Equal(t, 6.0, d.Emotions[0].AverageIntensity)
	assert.Equal(t, models.EmotionJoy, d.Emotions[1].EmotionType)
	assert.Equal(t, 2, d.Categories[models.CategoryNegative])
	assert.Equal(t, 1, d.Categories[models.CategoryPositive])
	assert.Equal(t, 1, d.Categories[models.CategoryNeutral])
}
