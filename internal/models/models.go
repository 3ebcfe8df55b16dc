package models

import (
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
)

// PeriodRollup aggregates activity for a single period bucket
type PeriodRollup struct {
	PeriodKey       string               `json:"period_key"`
	Count           int                  `json:"count"`
	DurationSeconds float64              `json:"duration_seconds"`
	CountsByType    map[ActivityType]int `json:"counts_by_type"`
}

// UsageStatistics summarises activity events over a window
type UsageStatistics struct {
	Start                time.Time                               `json:"start"`
	End                  time.Time                               `json:"end"`
	TotalEvents          int                                     `json:"total_events"`
	CountsByType         map[ActivityType]int                    `json:"counts_by_type"`
	TotalDurationSeconds float64                                 `json:"total_duration_seconds"`
	DurationByType       map[ActivityType]float64                `json:"duration_by_type"`
	ByDayOfWeek          map[string]int                          `json:"by_day_of_week"`
	ByTimeOfDay          map[calendar.TimeOfDay]int              `json:"by_time_of_day"`
	ByToolCategory       map[string]int                          `json:"by_tool_category"`
	ActiveDays           int                                     `json:"active_days"`
	Periods              map[calendar.Granularity][]PeriodRollup `json:"periods"`
}

// DistributionDimension selects how activity is distributed
type DistributionDimension string

const (
	DimensionDay  DistributionDimension = "day"
	DimensionTime DistributionDimension = "time"
)

// DistributionBucket is one slice of an activity distribution
type DistributionBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // 0-100
}

// ActivityDistribution is the response for get_activity_distribution
type ActivityDistribution struct {
	Dimension DistributionDimension `json:"dimension"`
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
	Total     int                   `json:"total"`
	Buckets   []DistributionBucket  `json:"buckets"`
	Peak      string                `json:"peak,omitempty"`
}

// TrendDirection describes how an emotion's intensity moved over a window
type TrendDirection string

const (
	TrendIncreasing  TrendDirection = "INCREASING"
	TrendDecreasing  TrendDirection = "DECREASING"
	TrendStable      TrendDirection = "STABLE"
	TrendFluctuating TrendDirection = "FLUCTUATING"
)

// TrendDataPoint holds intensity statistics for one period bucket
type TrendDataPoint struct {
	PeriodKey        string  `json:"period_key"`
	AverageIntensity float64 `json:"average_intensity"`
	OccurrenceCount  int     `json:"occurrence_count"`
	MinIntensity     int     `json:"min_intensity"`
	MaxIntensity     int     `json:"max_intensity"`
}

// EmotionalTrend is the chronological intensity series for one emotion
type EmotionalTrend struct {
	EmotionType      EmotionType          `json:"emotion_type"`
	Category         EmotionCategory      `json:"category"`
	Granularity      calendar.Granularity `json:"period_type"`
	DataPoints       []TrendDataPoint     `json:"data_points"`
	OverallTrend     TrendDirection       `json:"overall_trend"`
	AverageIntensity float64              `json:"average_intensity"`
	PeakIntensity    float64              `json:"peak_intensity"`
	PeakPeriod       string               `json:"peak_period,omitempty"`
	TotalCheckIns    int                  `json:"total_checkins"`
}

// EmotionShare is the count and share of one emotion within a window
type EmotionShare struct {
	EmotionType      EmotionType     `json:"emotion_type"`
	Category         EmotionCategory `json:"category"`
	Count            int             `json:"count"`
	Percentage       float64         `json:"percentage"` // 0-100
	AverageIntensity float64         `json:"average_intensity"`
}

// EmotionDistribution summarises check-ins per emotion and per category
type EmotionDistribution struct {
	Total      int                     `json:"total"`
	Emotions   []EmotionShare          `json:"emotions"`
	Categories map[EmotionCategory]int `json:"categories"`
}

// Dashboard composes every read model for a window
type Dashboard struct {
	UserID              string                `json:"user_id"`
	Start               time.Time             `json:"start"`
	End                 time.Time             `json:"end"`
	Streak              *StreakResponse       `json:"streak,omitempty"`
	Achievements        *AchievementPage      `json:"achievements,omitempty"`
	Usage               *UsageStatistics      `json:"usage"`
	DayDistribution     *ActivityDistribution `json:"day_distribution"`
	TimeDistribution    *ActivityDistribution `json:"time_distribution"`
	EmotionDistribution *EmotionDistribution  `json:"emotion_distribution"`
	Trends              []EmotionalTrend      `json:"trends"`
	Patterns            []EmotionalPattern    `json:"patterns"`
	Insights            []Insight             `json:"insights"`
	ComputedAt          time.Time             `json:"computed_at"`
}
