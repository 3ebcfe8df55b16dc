package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

// EngineConfig holds the tunables of the analytics engine
type EngineConfig struct {
	DefaultMinOccurrences int
	DefaultInsightLimit   int
}

type analyticsService struct {
	events       repository.ActivityEventRepository
	checkins     repository.CheckInRepository
	streaks      StreakService
	achievements AchievementService
	cfg          EngineConfig
	now          func() time.Time
}

// NewAnalyticsService creates a new analytics service. streaks and
// achievements are only used by GetDashboard and may be nil.
func NewAnalyticsService(events repository.ActivityEventRepository, checkins repository.CheckInRepository, streaks StreakService, achievements AchievementService, cfg EngineConfig, opts ...Option) AnalyticsService {
	o := newOptions(opts)
	if cfg.DefaultMinOccurrences <= 0 {
		cfg.DefaultMinOccurrences = analytics.DefaultMinOccurrences
	}
	if cfg.DefaultInsightLimit <= 0 {
		cfg.DefaultInsightLimit = analytics.DefaultInsightLimit
	}
	return &analyticsService{
		events:       events,
		checkins:     checkins,
		streaks:      streaks,
		achievements: achievements,
		cfg:          cfg,
		now:          o.now,
	}
}

func validateWindow(w analytics.Window) error {
	if !w.Start.IsZero() && !w.End.IsZero() && w.Start.After(w.End) {
		return NewValidationError("start", "range", "start must not be after end")
	}
	return nil
}

func (s *analyticsService) loadEvents(ctx context.Context, userID string, w analytics.Window) ([]models.ActivityEvent, error) {
	events, err := s.events.ListByUserAndRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity events: %w", err)
	}
	return events, nil
}

func (s *analyticsService) loadCheckIns(ctx context.Context, userID string, w analytics.Window) ([]models.EmotionalCheckIn, error) {
	checkins, err := s.checkins.ListByUserAndRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}
	return checkins, nil
}

func (s *analyticsService) GetActivityDistribution(ctx context.Context, userID string, w analytics.Window, dim models.DistributionDimension) (*models.ActivityDistribution, error) {
	if dim != models.DimensionDay && dim != models.DimensionTime {
		return nil, NewValidationError("dimension", "oneof", "must be one of: day, time")
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}
	events, err := s.loadEvents(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	return analytics.Distribution(events, w, dim), nil
}

func (s *analyticsService) GetUsageStatistics(ctx context.Context, userID string, w analytics.Window) (*models.UsageStatistics, error) {
	if err := validateWindow(w); err != nil {
		return nil, err
	}
	events, err := s.loadEvents(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	return analytics.Aggregate(events, w), nil
}

func (s *analyticsService) GetTrends(ctx context.Context, userID string, w analytics.Window, emotions []models.EmotionType, g calendar.Granularity) ([]models.EmotionalTrend, error) {
	var fields []FieldError
	for _, e := range emotions {
		if !e.Valid() {
			fields = append(fields, FieldError{Field: "emotions", Code: "emotion_type", Message: fmt.Sprintf("unknown emotion type %q", e)})
		}
	}
	if g == "" {
		g = analytics.GranularityFor(w)
	} else if parsed, err := calendar.ParseGranularity(string(g)); err != nil {
		fields = append(fields, FieldError{Field: "period", Code: "oneof", Message: err.Error()})
	} else {
		g = parsed
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	checkins, err := s.loadCheckIns(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeTrends(checkins, emotions, w, g), nil
}

func (s *analyticsService) DetectPatterns(ctx context.Context, userID string, w analytics.Window, pt models.PatternType, minOccurrences int) ([]models.EmotionalPattern, error) {
	var fields []FieldError
	if !pt.Valid() {
		fields = append(fields, FieldError{Field: "type", Code: "oneof", Message: "must be one of: daily, weekly, situational"})
	}
	if minOccurrences < 0 {
		fields = append(fields, FieldError{Field: "min_occurrences", Code: "min", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}
	if minOccurrences == 0 {
		minOccurrences = s.cfg.DefaultMinOccurrences
	}

	checkins, err := s.loadCheckIns(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	return analytics.DetectPatterns(checkins, w, pt, minOccurrences), nil
}

func (s *analyticsService) GetInsights(ctx context.Context, userID string, w analytics.Window, limit int) ([]models.Insight, error) {
	if limit < 0 {
		return nil, NewValidationError("limit", "min", "must not be negative")
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = s.cfg.DefaultInsightLimit
	}

	checkins, err := s.loadCheckIns(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	return analytics.Insights(checkins, w, analytics.ReportOptions{
		MinOccurrences: s.cfg.DefaultMinOccurrences,
		InsightLimit:   limit,
	}), nil
}

// GetDashboard loads every input concurrently and composes the report.
// The first failure cancels the remaining loads.
func (s *analyticsService) GetDashboard(ctx context.Context, userID string, w analytics.Window) (*models.Dashboard, error) {
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	var (
		events       []models.ActivityEvent
		checkins     []models.EmotionalCheckIn
		streak       *models.StreakResponse
		achievements *models.AchievementPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.loadEvents(gctx, userID, w)
		return err
	})
	g.Go(func() error {
		var err error
		checkins, err = s.loadCheckIns(gctx, userID, w)
		return err
	})
	if s.streaks != nil {
		g.Go(func() error {
			var err error
			streak, err = s.streaks.GetStreak(gctx, userID, w.Loc)
			return err
		})
	}
	if s.achievements != nil {
		g.Go(func() error {
			var err error
			achievements, err = s.achievements.ListAchievements(gctx, userID, 1, MaxPageSize)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dashboard := analytics.Report(events, checkins, w, analytics.ReportOptions{
		MinOccurrences: s.cfg.DefaultMinOccurrences,
		InsightLimit:   s.cfg.DefaultInsightLimit,
	}, s.now().UTC())
	dashboard.UserID = userID
	dashboard.Streak = streak
	dashboard.Achievements = achievements
	return dashboard, nil
}
