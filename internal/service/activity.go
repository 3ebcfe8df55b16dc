package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

type activityService struct {
	events       repository.ActivityEventRepository
	streaks      StreakService
	achievements AchievementService
	now          func() time.Time
}

// NewActivityService creates a new activity service. streaks and
// achievements may be nil, in which case events are only stored.
func NewActivityService(events repository.ActivityEventRepository, streaks StreakService, achievements AchievementService, opts ...Option) ActivityService {
	o := newOptions(opts)
	return &activityService{
		events:       events,
		streaks:      streaks,
		achievements: achievements,
		now:          o.now,
	}
}

func (s *activityService) RecordActivity(ctx context.Context, userID string, req *models.CreateActivityRequest, loc *time.Location) (*models.ActivityResponse, error) {
	now := s.now()

	var fields []FieldError
	if !req.ActivityType.Valid() {
		fields = append(fields, FieldError{Field: "activity_type", Code: "activity_type", Message: "unknown activity type"})
	}
	id, idErr := resolveID(req.ID, now)
	if idErr != nil {
		fields = append(fields, *idErr)
	}
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
		if occurredAt.After(now.Add(maxClockSkew)) {
			fields = append(fields, FieldError{Field: "occurred_at", Code: "future_timestamp", Message: "timestamp cannot be more than 1 minute in the future"})
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	event := &models.ActivityEvent{
		ID:            id,
		UserID:        userID,
		ActivityType:  req.ActivityType,
		OccurredAt:    occurredAt.UTC(),
		RelatedItemID: req.RelatedItemID,
		Metadata:      req.Metadata,
		CreatedAt:     now.UTC(),
	}
	created, err := s.events.Create(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("activity %s already recorded: %w", id, err)
		}
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	resp := &models.ActivityResponse{Event: created}
	if req.SkipStreak || s.streaks == nil {
		s.refreshAchievements(ctx, userID)
		return resp, nil
	}

	day := streakDay(occurredAt, now, loc)
	update, err := s.streaks.RecordActivity(ctx, userID, day, req.UseGracePeriod, loc)
	switch {
	case errors.Is(err, analytics.ErrBackdatedActivity), errors.Is(err, analytics.ErrFutureDate):
		// The event is already stored; only the streak update is skipped.
		logger.Ctx(ctx).Info("activity not applied to streak",
			logger.String("user_id", userID),
			logger.String("activity_id", created.ID),
			logger.Day("day", day),
			logger.Err(err),
		)
		s.refreshAchievements(ctx, userID)
	case err != nil:
		return nil, err
	default:
		resp.Streak = update
	}
	return resp, nil
}

// streakDay is the local calendar day an event counts toward. Timestamps
// inside the clock skew allowance can land on tomorrow; they count as today.
func streakDay(occurredAt, now time.Time, loc *time.Location) time.Time {
	loc = locationOrUTC(loc)
	day := calendar.Civil(occurredAt.In(loc))
	if today := calendar.Civil(now.In(loc)); day.After(today) {
		return today
	}
	return day
}

func (s *activityService) refreshAchievements(ctx context.Context, userID string) {
	if s.achievements == nil {
		return
	}
	if _, err := s.achievements.Refresh(ctx, userID, nil); err != nil {
		logger.Ctx(ctx).Error("failed to refresh achievements",
			logger.String("user_id", userID),
			logger.Err(err),
		)
	}
}
