package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/calendar"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

// streakRow is the streak_states table shape; date columns travel as
// YYYY-MM-DD strings.
type streakRow struct {
	UserID               string    `json:"user_id"`
	CurrentStreak        int       `json:"current_streak"`
	LongestStreak        int       `json:"longest_streak"`
	LastActivityDate     *string   `json:"last_activity_date"`
	TotalDaysActive      int       `json:"total_days_active"`
	ActivityDates        []string  `json:"activity_dates"`
	GracePeriodUsedCount int       `json:"grace_period_used_count"`
	GracePeriodResetDate *string   `json:"grace_period_reset_date"`
	Version              int64     `json:"version"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := calendar.DayKey(*t)
	return &s
}

func parseDay(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := calendar.ParseDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toStreakRow(s *models.StreakState) streakRow {
	dates := s.ActivityDates
	if dates == nil {
		dates = []string{}
	}
	return streakRow{
		UserID:               s.UserID,
		CurrentStreak:        s.CurrentStreak,
		LongestStreak:        s.LongestStreak,
		LastActivityDate:     formatDay(s.LastActivityDate),
		TotalDaysActive:      s.TotalDaysActive,
		ActivityDates:        dates,
		GracePeriodUsedCount: s.GracePeriodUsedCount,
		GracePeriodResetDate: formatDay(s.GracePeriodResetDate),
		Version:              s.Version,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (row streakRow) toModel() (*models.StreakState, error) {
	last, err := parseDay(row.LastActivityDate)
	if err != nil {
		return nil, fmt.Errorf("invalid last_activity_date: %w", err)
	}
	reset, err := parseDay(row.GracePeriodResetDate)
	if err != nil {
		return nil, fmt.Errorf("invalid grace_period_reset_date: %w", err)
	}
	dates := row.ActivityDates
	if dates == nil {
		dates = []string{}
	}
	return &models.StreakState{
		UserID:               row.UserID,
		CurrentStreak:        row.CurrentStreak,
		LongestStreak:        row.LongestStreak,
		LastActivityDate:     last,
		TotalDaysActive:      row.TotalDaysActive,
		ActivityDates:        dates,
		GracePeriodUsedCount: row.GracePeriodUsedCount,
		GracePeriodResetDate: reset,
		Version:              row.Version,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

type streakRepository struct {
	client *supabase.Client
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(client *supabase.Client) StreakRepository {
	return &streakRepository{client: client}
}

func (r *streakRepository) Get(ctx context.Context, userID string) (*models.StreakState, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
	}

	body, err := r.client.Query(ctx, "streak_states", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak state: %w", err)
	}

	var rows []streakRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return rows[0].toModel()
}

func (r *streakRepository) Save(ctx context.Context, state *models.StreakState) (*models.StreakState, error) {
	row := toStreakRow(state)
	expected := state.Version
	row.Version = expected + 1
	row.UpdatedAt = time.Now().UTC()

	var (
		body []byte
		err  error
	)
	if expected == 0 {
		body, err = r.client.Insert(ctx, "streak_states", row)
		if err != nil {
			if errors.Is(translate(err), ErrDuplicate) {
				return nil, ErrVersionConflict
			}
			return nil, fmt.Errorf("failed to insert streak state: %w", err)
		}
	} else {
		query := map[string]interface{}{
			"user_id": fmt.Sprintf("eq.%s", state.UserID),
			"version": fmt.Sprintf("eq.%d", expected),
		}
		body, err = r.client.UpdateWhere(ctx, "streak_states", query, row)
		if err != nil {
			return nil, fmt.Errorf("failed to update streak state: %w", err)
		}
	}

	var rows []streakRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// PATCH with a stale version matches nothing.
	if len(rows) == 0 {
		return nil, ErrVersionConflict
	}

	return rows[0].toModel()
}
