package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

type checkInService struct {
	checkins   repository.CheckInRepository
	activities ActivityService
	now        func() time.Time
}

// NewCheckInService creates a new check-in service. Every stored check-in is
// mirrored as an EMOTIONAL_CHECKIN activity when activities is non-nil.
func NewCheckInService(checkins repository.CheckInRepository, activities ActivityService, opts ...Option) CheckInService {
	o := newOptions(opts)
	return &checkInService{
		checkins:   checkins,
		activities: activities,
		now:        o.now,
	}
}

func (s *checkInService) CreateCheckIn(ctx context.Context, userID string, req *models.CreateCheckInRequest, loc *time.Location) (*models.CheckInResponse, error) {
	now := s.now()

	var fields []FieldError
	if !req.EmotionType.Valid() {
		fields = append(fields, FieldError{Field: "emotion_type", Code: "emotion_type", Message: "unknown emotion type"})
	}
	if req.Intensity < models.MinIntensity || req.Intensity > models.MaxIntensity {
		fields = append(fields, FieldError{Field: "intensity", Code: "range", Message: fmt.Sprintf("must be between %d and %d", models.MinIntensity, models.MaxIntensity)})
	}
	if !req.Context.Valid() {
		fields = append(fields, FieldError{Field: "context", Code: "checkin_context", Message: "unknown check-in context"})
	}
	id, idErr := resolveID(req.ID, now)
	if idErr != nil {
		fields = append(fields, *idErr)
	}
	createdAt := now
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
		if createdAt.After(now.Add(maxClockSkew)) {
			fields = append(fields, FieldError{Field: "created_at", Code: "future_timestamp", Message: "timestamp cannot be more than 1 minute in the future"})
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	checkin := &models.EmotionalCheckIn{
		ID:               id,
		UserID:           userID,
		EmotionType:      req.EmotionType,
		Intensity:        req.Intensity,
		Context:          req.Context,
		Notes:            req.Notes,
		RelatedJournalID: req.RelatedJournalID,
		RelatedToolID:    req.RelatedToolID,
		CreatedAt:        createdAt.UTC(),
	}
	created, err := s.checkins.Create(ctx, checkin)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("check-in %s already recorded: %w", id, err)
		}
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	resp := &models.CheckInResponse{CheckIn: created}
	if s.activities == nil {
		return resp, nil
	}

	relatedID := created.ID
	activity, err := s.activities.RecordActivity(ctx, userID, &models.CreateActivityRequest{
		ActivityType:  models.ActivityEmotionalCheckIn,
		OccurredAt:    &created.CreatedAt,
		RelatedItemID: &relatedID,
		Metadata: map[string]interface{}{
			"emotion_type": string(created.EmotionType),
			"intensity":    created.Intensity,
			"context":      string(created.Context),
		},
	}, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to record check-in activity: %w", err)
	}
	resp.Streak = activity.Streak
	return resp, nil
}

func (s *checkInService) GetCheckIn(ctx context.Context, userID, checkInID string) (*models.EmotionalCheckIn, error) {
	checkin, err := s.checkins.GetByID(ctx, userID, checkInID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "check-in", ID: checkInID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	return checkin, nil
}

func (s *checkInService) ListCheckIns(ctx context.Context, userID string, w analytics.Window) ([]models.EmotionalCheckIn, error) {
	if err := validateWindow(w); err != nil {
		return nil, err
	}
	checkins, err := s.checkins.ListByUserAndRange(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	if checkins == nil {
		checkins = []models.EmotionalCheckIn{}
	}
	return checkins, nil
}
