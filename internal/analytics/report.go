package analytics

import (
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// DefaultInsightLimit caps insights when the caller does not.
const DefaultInsightLimit = 10

// ReportOptions tunes Report
type ReportOptions struct {
	MinOccurrences int
	InsightLimit   int
	Granularity    calendar.Granularity
}

// GranularityFor picks a trend granularity that yields a readable number of
// buckets for the window length.
func GranularityFor(w Window) calendar.Granularity {
	if w.Start.IsZero() || w.End.IsZero() {
		return calendar.Week
	}
	days := w.End.Sub(w.Start).Hours() / 24
	switch {
	case days <= 14:
		return calendar.Day
	case days <= 120:
		return calendar.Week
	case days <= 730:
		return calendar.Month
	default:
		return calendar.Year
	}
}

// AllPatterns runs every pattern type over checkins and merges the results
// in confidence order.
func AllPatterns(checkins []models.EmotionalCheckIn, w Window, minOccurrences int) []models.EmotionalPattern {
	patterns := []models.EmotionalPattern{}
	for _, pt := range models.PatternTypes {
		patterns = append(patterns, DetectPatterns(checkins, w, pt, minOccurrences)...)
	}
	sortPatterns(patterns)
	return patterns
}

// Insights derives the distribution, trends and patterns of checkins and
// feeds them to GenerateInsights.
func Insights(checkins []models.EmotionalCheckIn, w Window, opts ReportOptions) []models.Insight {
	g := opts.Granularity
	if g == "" {
		g = GranularityFor(w)
	}
	limit := opts.InsightLimit
	if limit == 0 {
		limit = DefaultInsightLimit
	}
	return GenerateInsights(InsightInput{
		Distribution: EmotionDistributionOf(checkins, w),
		Trends:       ComputeTrends(checkins, nil, w, g),
		Patterns:     AllPatterns(checkins, w, opts.MinOccurrences),
	}, limit)
}

// Report computes every read model derivable from raw events and check-ins.
// Streak and achievement sections are left for the caller.
func Report(events []models.ActivityEvent, checkins []models.EmotionalCheckIn, w Window, opts ReportOptions, now time.Time) *models.Dashboard {
	g := opts.Granularity
	if g == "" {
		g = GranularityFor(w)
	}
	limit := opts.InsightLimit
	if limit == 0 {
		limit = DefaultInsightLimit
	}

	dist := EmotionDistributionOf(checkins, w)
	trends := ComputeTrends(checkins, nil, w, g)
	patterns := AllPatterns(checkins, w, opts.MinOccurrences)

	return &models.Dashboard{
		Start:               w.Start,
		End:                 w.End,
		Usage:               Aggregate(events, w),
		DayDistribution:     Distribution(events, w, models.DimensionDay),
		TimeDistribution:    Distribution(events, w, models.DimensionTime),
		EmotionDistribution: dist,
		Trends:              trends,
		Patterns:            patterns,
		Insights: GenerateInsights(InsightInput{
			Distribution: dist,
			Trends:       trends,
			Patterns:     patterns,
		}, limit),
		ComputedAt: now,
	}
}
