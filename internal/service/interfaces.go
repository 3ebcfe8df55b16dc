package service

import (
	"context"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// StreakService owns every mutation of a user's StreakState. Mutations are
// serialized per user.
type StreakService interface {
	GetStreak(ctx context.Context, userID string, loc *time.Location) (*models.StreakResponse, error)
	// RecordActivity applies an activity on the civil date day. loc decides
	// which day counts as today.
	RecordActivity(ctx context.Context, userID string, day time.Time, useGrace bool, loc *time.Location) (*models.StreakUpdate, error)
	ResetStreak(ctx context.Context, userID string, loc *time.Location) (*models.StreakUpdate, error)
	// UseGracePeriod bridges a single missed day ending today
	UseGracePeriod(ctx context.Context, userID string, loc *time.Location) (*models.StreakUpdate, error)
	NextMilestone(ctx context.Context, userID string) (*models.MilestoneProgress, error)
}

// AchievementService defines the interface for achievement business logic
type AchievementService interface {
	// ListAchievements evaluates the catalog without persisting anything
	ListAchievements(ctx context.Context, userID string, page, pageSize int) (*models.AchievementPage, error)
	// Refresh re-evaluates the catalog for a user and returns newly unlocked
	// types. A nil state is loaded from storage.
	Refresh(ctx context.Context, userID string, state *models.StreakState) ([]models.AchievementType, error)
}

// ActivityService records activity events and feeds the streak tracker
type ActivityService interface {
	RecordActivity(ctx context.Context, userID string, req *models.CreateActivityRequest, loc *time.Location) (*models.ActivityResponse, error)
}

// CheckInService defines the interface for emotional check-in business logic
type CheckInService interface {
	CreateCheckIn(ctx context.Context, userID string, req *models.CreateCheckInRequest, loc *time.Location) (*models.CheckInResponse, error)
	GetCheckIn(ctx context.Context, userID, checkInID string) (*models.EmotionalCheckIn, error)
	ListCheckIns(ctx context.Context, userID string, w analytics.Window) ([]models.EmotionalCheckIn, error)
}

// AnalyticsService computes read-only reports over a window. Nothing it
// returns is persisted.
type AnalyticsService interface {
	GetActivityDistribution(ctx context.Context, userID string, w analytics.Window, dim models.DistributionDimension) (*models.ActivityDistribution, error)
	GetUsageStatistics(ctx context.Context, userID string, w analytics.Window) (*models.UsageStatistics, error)
	GetTrends(ctx context.Context, userID string, w analytics.Window, emotions []models.EmotionType, g calendar.Granularity) ([]models.EmotionalTrend, error)
	DetectPatterns(ctx context.Context, userID string, w analytics.Window, pt models.PatternType, minOccurrences int) ([]models.EmotionalPattern, error)
	GetInsights(ctx context.Context, userID string, w analytics.Window, limit int) ([]models.Insight, error)
	GetDashboard(ctx context.Context, userID string, w analytics.Window) (*models.Dashboard, error)
}
