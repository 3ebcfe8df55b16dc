package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

type achievementRepository struct {
	client *supabase.Client
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(client *supabase.Client) AchievementRepository {
	return &achievementRepository{client: client}
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID string) ([]models.Achievement, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	body, err := r.client.Query(ctx, "achievements", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	var achievements []models.Achievement
	if err := json.Unmarshal(body, &achievements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return achievements, nil
}

func (r *achievementRepository) Upsert(ctx context.Context, achievements []models.Achievement) error {
	// PostgREST merges only the columns present in the payload, so unearned
	// rows are sent without earned_date and never clear an existing one.
	var earned, open []map[string]interface{}
	for _, a := range achievements {
		row := map[string]interface{}{
			"id":         a.ID,
			"user_id":    a.UserID,
			"type":       a.Type,
			"category":   a.Category,
			"points":     a.Points,
			"is_hidden":  a.IsHidden,
			"progress":   a.Progress,
			"updated_at": a.UpdatedAt,
		}
		if a.Earned() {
			row["earned_date"] = a.EarnedDate
			earned = append(earned, row)
			continue
		}
		open = append(open, row)
	}

	for _, rows := range [][]map[string]interface{}{earned, open} {
		if len(rows) == 0 {
			continue
		}
		if _, err := r.client.Upsert(ctx, "achievements", rows, "user_id,type"); err != nil {
			return fmt.Errorf("failed to upsert achievements: %w", err)
		}
	}
	return nil
}
