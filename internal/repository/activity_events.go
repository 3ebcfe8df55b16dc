package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

type activityEventRepository struct {
	client *supabase.Client
}

// NewActivityEventRepository creates a new activity event repository
func NewActivityEventRepository(client *supabase.Client) ActivityEventRepository {
	return &activityEventRepository{client: client}
}

func (r *activityEventRepository) Create(ctx context.Context, event *models.ActivityEvent) (*models.ActivityEvent, error) {
	data := map[string]interface{}{
		"id":            event.ID,
		"user_id":       event.UserID,
		"activity_type": event.ActivityType,
		"occurred_at":   event.OccurredAt.UTC(),
	}
	if event.RelatedItemID != nil {
		data["related_item_id"] = *event.RelatedItemID
	}
	if len(event.Metadata) > 0 {
		data["metadata"] = event.Metadata
	}

	body, err := r.client.Insert(ctx, "activity_events", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity event: %w", translate(err))
	}

	var events []models.ActivityEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no activity event returned")
	}

	return &events[0], nil
}

func (r *activityEventRepository) ListByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.ActivityEvent, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "occurred_at.asc",
	}
	addRange(query, "occurred_at", start, end)

	body, err := r.client.Query(ctx, "activity_events", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}

	var events []models.ActivityEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return events, nil
}

func (r *activityEventRepository) CountByType(ctx context.Context, userID string) (map[models.ActivityType]int, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "activity_type",
	}

	body, err := r.client.Query(ctx, "activity_events", query)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity events: %w", err)
	}

	var rows []struct {
		ActivityType models.ActivityType `json:"activity_type"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	counts := make(map[models.ActivityType]int)
	for _, row := range rows {
		counts[row.ActivityType]++
	}

	return counts, nil
}
