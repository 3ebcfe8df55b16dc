package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

type checkInRepository struct {
	client *supabase.Client
}

// NewCheckInRepository creates a new check-in repository
func NewCheckInRepository(client *supabase.Client) CheckInRepository {
	return &checkInRepository{client: client}
}

func (r *checkInRepository) Create(ctx context.Context, checkin *models.EmotionalCheckIn) (*models.EmotionalCheckIn, error) {
	data := map[string]interface{}{
		"id":           checkin.ID,
		"user_id":      checkin.UserID,
		"emotion_type": checkin.EmotionType,
		"intensity":    checkin.Intensity,
		"context":      checkin.Context,
		"created_at":   checkin.CreatedAt.UTC(),
	}
	if checkin.Notes != nil {
		data["notes"] = *checkin.Notes
	}
	if checkin.RelatedJournalID != nil {
		data["related_journal_id"] = *checkin.RelatedJournalID
	}
	if checkin.RelatedToolID != nil {
		data["related_tool_id"] = *checkin.RelatedToolID
	}

	body, err := r.client.Insert(ctx, "emotional_checkins", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create check-in: %w", translate(err))
	}

	var checkins []models.EmotionalCheckIn
	if err := json.Unmarshal(body, &checkins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(checkins) == 0 {
		return nil, fmt.Errorf("no check-in returned")
	}

	return &checkins[0], nil
}

func (r *checkInRepository) GetByID(ctx context.Context, userID, id string) (*models.EmotionalCheckIn, error) {
	query := map[string]interface{}{
		"id":      fmt.Sprintf("eq.%s", id),
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	body, err := r.client.Query(ctx, "emotional_checkins", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}

	var checkins []models.EmotionalCheckIn
	if err := json.Unmarshal(body, &checkins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(checkins) == 0 {
		return nil, ErrNotFound
	}

	return &checkins[0], nil
}

func (r *checkInRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.EmotionalCheckIn, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "created_at.asc",
	}
	addRange(query, "created_at", start, end)

	body, err := r.client.Query(ctx, "emotional_checkins", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	var checkins []models.EmotionalCheckIn
	if err := json.Unmarshal(body, &checkins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return checkins, nil
}
