package gormstore

import (
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

type activityEventRecord struct {
	ID            string                 `gorm:"primaryKey;size:64"`
	UserID        string                 `gorm:"index:idx_activity_user_time;size:64;not null"`
	ActivityType  string                 `gorm:"size:32;not null"`
	OccurredAt    time.Time              `gorm:"index:idx_activity_user_time;not null"`
	RelatedItemID *string                `gorm:"size:64"`
	Metadata      map[string]interface{} `gorm:"serializer:json"`
	CreatedAt     time.Time
}

func (activityEventRecord) TableName() string { return "activity_events" }

func newActivityEventRecord(e *models.ActivityEvent) *activityEventRecord {
	return &activityEventRecord{
		ID:            e.ID,
		UserID:        e.UserID,
		ActivityType:  string(e.ActivityType),
		OccurredAt:    e.OccurredAt.UTC(),
		RelatedItemID: e.RelatedItemID,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
}

func (r *activityEventRecord) toModel() models.ActivityEvent {
	return models.ActivityEvent{
		ID:            r.ID,
		UserID:        r.UserID,
		ActivityType:  models.ActivityType(r.ActivityType),
		OccurredAt:    r.OccurredAt,
		RelatedItemID: r.RelatedItemID,
		Metadata:      r.Metadata,
		CreatedAt:     r.CreatedAt,
	}
}

type checkInRecord struct {
	ID               string `gorm:"primaryKey;size:64"`
	UserID           string `gorm:"index:idx_checkin_user_time;size:64;not null"`
	EmotionType      string `gorm:"size:32;not null"`
	Intensity        int    `gorm:"not null"`
	Context          string `gorm:"size:32;not null"`
	Notes            *string
	RelatedJournalID *string   `gorm:"size:64"`
	RelatedToolID    *string   `gorm:"size:64"`
	CreatedAt        time.Time `gorm:"index:idx_checkin_user_time;not null"`
}

func (checkInRecord) TableName() string { return "emotional_checkins" }

func newCheckInRecord(c *models.EmotionalCheckIn) *checkInRecord {
	return &checkInRecord{
		ID:               c.ID,
		UserID:           c.UserID,
		EmotionType:      string(c.EmotionType),
		Intensity:        c.Intensity,
		Context:          string(c.Context),
		Notes:            c.Notes,
		RelatedJournalID: c.RelatedJournalID,
		RelatedToolID:    c.RelatedToolID,
		CreatedAt:        c.CreatedAt.UTC(),
	}
}

func (r *checkInRecord) toModel() models.EmotionalCheckIn {
	return models.EmotionalCheckIn{
		ID:               r.ID,
		UserID:           r.UserID,
		EmotionType:      models.EmotionType(r.EmotionType),
		Intensity:        r.Intensity,
		Context:          models.CheckInContext(r.Context),
		Notes:            r.Notes,
		RelatedJournalID: r.RelatedJournalID,
		RelatedToolID:    r.RelatedToolID,
		CreatedAt:        r.CreatedAt,
	}
}

type streakRecord struct {
	UserID               string `gorm:"primaryKey;size:64"`
	CurrentStreak        int    `gorm:"not null"`
	LongestStreak        int    `gorm:"not null"`
	LastActivityDate     *time.Time
	TotalDaysActive      int      `gorm:"not null"`
	ActivityDates        []string `gorm:"serializer:json"`
	GracePeriodUsedCount int      `gorm:"not null"`
	GracePeriodResetDate *time.Time
	Version              int64 `gorm:"not null"`
	UpdatedAt            time.Time
}

func (streakRecord) TableName() string { return "streak_states" }

func newStreakRecord(s *models.StreakState) *streakRecord {
	dates := s.ActivityDates
	if dates == nil {
		dates = []string{}
	}
	return &streakRecord{
		UserID:               s.UserID,
		CurrentStreak:        s.CurrentStreak,
		LongestStreak:        s.LongestStreak,
		LastActivityDate:     s.LastActivityDate,
		TotalDaysActive:      s.TotalDaysActive,
		ActivityDates:        dates,
		GracePeriodUsedCount: s.GracePeriodUsedCount,
		GracePeriodResetDate: s.GracePeriodResetDate,
		Version:              s.Version,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (r *streakRecord) toModel() *models.StreakState {
	dates := r.ActivityDates
	if dates == nil {
		dates = []string{}
	}
	return &models.StreakState{
		UserID:               r.UserID,
		CurrentStreak:        r.CurrentStreak,
		LongestStreak:        r.LongestStreak,
		LastActivityDate:     utcPtr(r.LastActivityDate),
		TotalDaysActive:      r.TotalDaysActive,
		ActivityDates:        dates,
		GracePeriodUsedCount: r.GracePeriodUsedCount,
		GracePeriodResetDate: utcPtr(r.GracePeriodResetDate),
		Version:              r.Version,
		UpdatedAt:            r.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

type achievementRecord struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     string `gorm:"uniqueIndex:idx_achievement_user_type;size:64;not null"`
	Type       string `gorm:"uniqueIndex:idx_achievement_user_type;size:32;not null"`
	Category   string `gorm:"size:32"`
	Points     int
	IsHidden   bool
	EarnedDate *time.Time
	Progress   float64
	UpdatedAt  time.Time
}

func (achievementRecord) TableName() string { return "achievements" }

func newAchievementRecord(a models.Achievement) achievementRecord {
	return achievementRecord{
		ID:         a.ID,
		UserID:     a.UserID,
		Type:       string(a.Type),
		Category:   string(a.Category),
		Points:     a.Points,
		IsHidden:   a.IsHidden,
		EarnedDate: a.EarnedDate,
		Progress:   a.Progress,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (r *achievementRecord) toModel() models.Achievement {
	return models.Achievement{
		ID:         r.ID,
		UserID:     r.UserID,
		Type:       models.AchievementType(r.Type),
		Category:   models.AchievementCategory(r.Category),
		Points:     r.Points,
		IsHidden:   r.IsHidden,
		EarnedDate: utcPtr(r.EarnedDate),
		Progress:   r.Progress,
		UpdatedAt:  r.UpdatedAt,
	}
}

type idempotencyRecord struct {
	ID           string  `gorm:"primaryKey;size:64"`
	Key          string  `gorm:"uniqueIndex:idx_idempotency_scope;size:255;not null"`
	Route        string  `gorm:"uniqueIndex:idx_idempotency_scope;size:255;not null"`
	UserID       string  `gorm:"uniqueIndex:idx_idempotency_scope;size:64;not null"`
	RequestHash  *string `gorm:"size:64"`
	ResponseBody []byte
	StatusCode   int
	CreatedAt    time.Time `gorm:"index"`
}

func (idempotencyRecord) TableName() string { return "idempotency_keys" }

func idempotencyRecordFrom(k *models.IdempotencyKey) *idempotencyRecord {
	return &idempotencyRecord{
		ID:           k.ID,
		Key:          k.Key,
		Route:        k.Route,
		UserID:       k.UserID,
		RequestHash:  k.RequestHash,
		ResponseBody: k.ResponseBody,
		StatusCode:   k.StatusCode,
		CreatedAt:    k.CreatedAt,
	}
}

func (r idempotencyRecord) toModel() *models.IdempotencyKey {
	return &models.IdempotencyKey{
		ID:           r.ID,
		Key:          r.Key,
		Route:        r.Route,
		UserID:       r.UserID,
		RequestHash:  r.RequestHash,
		ResponseBody: r.ResponseBody,
		StatusCode:   r.StatusCode,
		CreatedAt:    r.CreatedAt,
	}
}
