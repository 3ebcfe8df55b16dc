package models

import "time"

// AchievementType identifies an unlockable achievement
type AchievementType string

const (
	AchievementFirstJournal  AchievementType = "FIRST_JOURNAL"
	AchievementJournals10    AchievementType = "JOURNALS_10"
	AchievementJournals50    AchievementType = "JOURNALS_50"
	AchievementFirstCheckIn  AchievementType = "FIRST_CHECKIN"
	AchievementCheckIns30    AchievementType = "CHECKINS_30"
	AchievementToolExplorer  AchievementType = "TOOL_EXPLORER"
	AchievementTools25       AchievementType = "TOOLS_25"
	AchievementStreak3Days   AchievementType = "STREAK_3_DAYS"
	AchievementStreak7Days   AchievementType = "STREAK_7_DAYS"
	AchievementStreak14Days  AchievementType = "STREAK_14_DAYS"
	AchievementStreak30Days  AchievementType = "STREAK_30_DAYS"
	AchievementStreak90Days  AchievementType = "STREAK_90_DAYS"
	AchievementActiveDays30  AchievementType = "ACTIVE_DAYS_30"
	AchievementActiveDays100 AchievementType = "ACTIVE_DAYS_100"
)

// AchievementCategory groups achievements for display
type AchievementCategory string

const (
	AchievementCategoryStreak      AchievementCategory = "STREAK"
	AchievementCategoryJournaling  AchievementCategory = "JOURNALING"
	AchievementCategoryCheckIn     AchievementCategory = "CHECK_IN"
	AchievementCategoryTools       AchievementCategory = "TOOLS"
	AchievementCategoryConsistency AchievementCategory = "CONSISTENCY"
)

// Achievement is a user's record for one achievement type. EarnedDate is set
// once and never cleared; Progress only moves while unearned.
type Achievement struct {
	ID          string              `json:"id,omitempty"`
	UserID      string              `json:"user_id"`
	Type        AchievementType     `json:"type"`
	Category    AchievementCategory `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Points      int                 `json:"points"`
	IsHidden    bool                `json:"is_hidden"`
	EarnedDate  *time.Time          `json:"earned_date,omitempty"`
	Progress    float64             `json:"progress"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Earned reports whether the achievement has been unlocked
func (a *Achievement) Earned() bool {
	return a.EarnedDate != nil
}

// AchievementPage is a paginated achievement listing
type AchievementPage struct {
	Achievements []Achievement `json:"achievements"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	Total        int           `json:"total"`
	TotalPoints  int           `json:"total_points"`
	EarnedCount  int           `json:"earned_count"`
}
