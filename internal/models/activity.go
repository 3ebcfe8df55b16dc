package models

import "time"

// ActivityType identifies the kind of engagement an activity event records
type ActivityType string

const (
	ActivityVoiceJournal     ActivityType = "VOICE_JOURNAL"
	ActivityEmotionalCheckIn ActivityType = "EMOTIONAL_CHECKIN"
	ActivityToolUsage        ActivityType = "TOOL_USAGE"
)

// ActivityTypes lists every activity type in display order
var ActivityTypes = []ActivityType{ActivityVoiceJournal, ActivityEmotionalCheckIn, ActivityToolUsage}

// Valid reports whether t is a known activity type
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityVoiceJournal, ActivityEmotionalCheckIn, ActivityToolUsage:
		return true
	}
	return false
}

// Metadata keys read by the aggregator
const (
	MetadataDuration       = "duration_seconds"
	MetadataDurationLegacy = "duration"
	MetadataToolCategory   = "tool_category"
)

// ActivityEvent is an immutable record of user engagement
type ActivityEvent struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	ActivityType  ActivityType           `json:"activity_type"`
	OccurredAt    time.Time              `json:"occurred_at"`
	RelatedItemID *string                `json:"related_item_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// CreateActivityRequest represents the request to record an activity event
type CreateActivityRequest struct {
	ID             *string                `json:"id"`
	ActivityType   ActivityType           `json:"activity_type" binding:"required,activity_type"`
	OccurredAt     *time.Time             `json:"occurred_at"`
	RelatedItemID  *string                `json:"related_item_id"`
	Metadata       map[string]interface{} `json:"metadata"`
	UseGracePeriod bool                   `json:"use_grace_period"`
	SkipStreak     bool                   `json:"skip_streak"`
}

// ActivityResponse is returned after an activity is recorded
type ActivityResponse struct {
	Event  *ActivityEvent `json:"event"`
	Streak *StreakUpdate  `json:"streak,omitempty"`
}
