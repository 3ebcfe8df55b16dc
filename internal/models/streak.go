package models

import (
	"sort"
	"time"
)

// StreakState is the per-user streak record. It is mutated only by the
// streak service; Version guards against lost updates.
type StreakState struct {
	UserID               string     `json:"user_id"`
	CurrentStreak        int        `json:"current_streak"`
	LongestStreak        int        `json:"longest_streak"`
	LastActivityDate     *time.Time `json:"last_activity_date,omitempty"`
	TotalDaysActive      int        `json:"total_days_active"`
	ActivityDates        []string   `json:"activity_dates"`
	GracePeriodUsedCount int        `json:"grace_period_used_count"`
	GracePeriodResetDate *time.Time `json:"grace_period_reset_date,omitempty"`
	Version              int64      `json:"version"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewStreakState returns an empty state for a user with no history
func NewStreakState(userID string) *StreakState {
	return &StreakState{
		UserID:        userID,
		ActivityDates: []string{},
	}
}

// HasActivityOn reports whether dayKey is already in the activity set
func (s *StreakState) HasActivityOn(dayKey string) bool {
	i := sort.SearchStrings(s.ActivityDates, dayKey)
	return i < len(s.ActivityDates) && s.ActivityDates[i] == dayKey
}

// AddActivityDate inserts dayKey keeping ActivityDates sorted and unique
func (s *StreakState) AddActivityDate(dayKey string) {
	i := sort.SearchStrings(s.ActivityDates, dayKey)
	if i < len(s.ActivityDates) && s.ActivityDates[i] == dayKey {
		return
	}
	s.ActivityDates = append(s.ActivityDates, "")
	copy(s.ActivityDates[i+1:], s.ActivityDates[i:])
	s.ActivityDates[i] = dayKey
	s.TotalDaysActive = len(s.ActivityDates)
}

// Clone returns a deep copy so callers can mutate without aliasing storage
func (s *StreakState) Clone() *StreakState {
	if s == nil {
		return nil
	}
	c := *s
	c.ActivityDates = append([]string(nil), s.ActivityDates...)
	if s.LastActivityDate != nil {
		d := *s.LastActivityDate
		c.LastActivityDate = &d
	}
	if s.GracePeriodResetDate != nil {
		d := *s.GracePeriodResetDate
		c.GracePeriodResetDate = &d
	}
	return &c
}

// MilestoneProgress describes progress toward the next streak milestone
type MilestoneProgress struct {
	CurrentStreak      int     `json:"current_streak"`
	NextMilestone      int     `json:"next_milestone"`
	Progress           float64 `json:"progress"`
	DaysRemaining      int     `json:"days_remaining"`
	AchievedMilestones []int   `json:"achieved_milestones"`
}

// StreakOutcome reports what a record_activity call did to the state
type StreakOutcome struct {
	Changed        bool `json:"changed"`
	SameDay        bool `json:"same_day"`
	Contiguous     bool `json:"contiguous"`
	GraceConsumed  bool `json:"grace_period_consumed"`
	GraceExhausted bool `json:"grace_period_exhausted"`
	Reset          bool `json:"reset"`
}

// StreakUpdate is returned by streak mutations
type StreakUpdate struct {
	State           *StreakState      `json:"state"`
	Outcome         StreakOutcome     `json:"outcome"`
	Milestone       MilestoneProgress `json:"milestone"`
	GraceRemaining  int               `json:"grace_periods_remaining"`
	NewAchievements []AchievementType `json:"new_achievements,omitempty"`
}

// StreakResponse is returned by get_streak
type StreakResponse struct {
	State          *StreakState      `json:"state"`
	Milestone      MilestoneProgress `json:"milestone"`
	GraceRemaining int               `json:"grace_periods_remaining"`
}

// RecordActivityRequest represents the request to record a streak day
type RecordActivityRequest struct {
	Date           string `json:"date"`
	UseGracePeriod bool   `json:"use_grace_period"`
}
