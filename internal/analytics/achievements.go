package analytics

import (
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
)

// Metric names the counter an achievement is measured against.
type Metric string

const (
	MetricJournals      Metric = "journals"
	MetricCheckIns      Metric = "checkins"
	MetricToolUses      Metric = "tool_uses"
	MetricLongestStreak Metric = "longest_streak"
	MetricActiveDays    Metric = "active_days"
)

// AchievementDefinition is one entry of the fixed achievement catalog.
type AchievementDefinition struct {
	Type        models.AchievementType
	Category    models.AchievementCategory
	Title       string
	Description string
	Points      int
	Hidden      bool
	Metric      Metric
	Threshold   int
}

var catalog = []AchievementDefinition{
	{models.AchievementFirstJournal, models.AchievementCategoryJournaling, "First Words", "Record your first voice journal", 10, false, MetricJournals, 1},
	{models.AchievementJournals10, models.AchievementCategoryJournaling, "Finding Your Voice", "Record 10 voice journals", 25, false, MetricJournals, 10},
	{models.AchievementJournals50, models.AchievementCategoryJournaling, "Storyteller", "Record 50 voice journals", 100, false, MetricJournals, 50},
	{models.AchievementFirstCheckIn, models.AchievementCategoryCheckIn, "Checking In", "Complete your first emotional check-in", 10, false, MetricCheckIns, 1},
	{models.AchievementCheckIns30, models.AchievementCategoryCheckIn, "Self Aware", "Complete 30 emotional check-ins", 50, false, MetricCheckIns, 30},
	{models.AchievementToolExplorer, models.AchievementCategoryTools, "Tool Explorer", "Use wellness tools 5 times", 15, false, MetricToolUses, 5},
	{models.AchievementTools25, models.AchievementCategoryTools, "Toolkit Regular", "Use wellness tools 25 times", 50, false, MetricToolUses, 25},
	{models.AchievementStreak3Days, models.AchievementCategoryStreak, "Getting Started", "Reach a 3 day streak", 10, false, MetricLongestStreak, 3},
	{models.AchievementStreak7Days, models.AchievementCategoryStreak, "One Week Strong", "Reach a 7 day streak", 25, false, MetricLongestStreak, 7},
	{models.AchievementStreak14Days, models.AchievementCategoryStreak, "Two Week Habit", "Reach a 14 day streak", 50, false, MetricLongestStreak, 14},
	{models.AchievementStreak30Days, models.AchievementCategoryStreak, "Monthly Devotion", "Reach a 30 day streak", 100, false, MetricLongestStreak, 30},
	{models.AchievementStreak90Days, models.AchievementCategoryStreak, "Unstoppable", "Reach a 90 day streak", 300, false, MetricLongestStreak, 90},
	{models.AchievementActiveDays30, models.AchievementCategoryConsistency, "Regular", "Be active on 30 different days", 75, false, MetricActiveDays, 30},
	{models.AchievementActiveDays100, models.AchievementCategoryConsistency, "Centurion", "Be active on 100 different days", 200, true, MetricActiveDays, 100},
}

// Catalog returns a copy of the achievement catalog in display order.
func Catalog() []AchievementDefinition {
	out := make([]AchievementDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// Definition looks up the catalog entry for t.
func Definition(t models.AchievementType) (AchievementDefinition, bool) {
	for _, d := range catalog {
		if d.Type == t {
			return d, true
		}
	}
	return AchievementDefinition{}, false
}

// Counters are the inputs achievements are evaluated against.
type Counters struct {
	LongestStreak   int
	TotalDaysActive int
	ActivityCounts  map[models.ActivityType]int
}

// CountersFrom builds Counters from a streak state and per-type event counts.
func CountersFrom(s *models.StreakState, counts map[models.ActivityType]int) Counters {
	c := Counters{ActivityCounts: counts}
	if s != nil {
		c.LongestStreak = s.LongestStreak
		c.TotalDaysActive = s.TotalDaysActive
	}
	return c
}

// Value returns the counter m measures.
func (c Counters) Value(m Metric) int {
	switch m {
	case MetricJournals:
		return c.ActivityCounts[models.ActivityVoiceJournal]
	case MetricCheckIns:
		return c.ActivityCounts[models.ActivityEmotionalCheckIn]
	case MetricToolUses:
		return c.ActivityCounts[models.ActivityToolUsage]
	case MetricLongestStreak:
		return c.LongestStreak
	case MetricActiveDays:
		return c.TotalDaysActive
	}
	return 0
}

// Satisfied reports whether c meets d's criteria.
func (d AchievementDefinition) Satisfied(c Counters) bool {
	return c.Value(d.Metric) >= d.Threshold
}

// Progress returns c's progress toward d, in [0,1). A satisfied definition
// reports 1.
func (d AchievementDefinition) Progress(c Counters) float64 {
	if d.Threshold <= 0 || d.Satisfied(c) {
		return 1
	}
	v := c.Value(d.Metric)
	if v <= 0 {
		return 0
	}
	return float64(v) / float64(d.Threshold)
}

// Evaluate returns every achievement whose criteria the streak and activity
// counts satisfy, in catalog order.
func Evaluate(s *models.StreakState, counts map[models.ActivityType]int) []models.AchievementType {
	c := CountersFrom(s, counts)
	satisfied := []models.AchievementType{}
	for _, d := range catalog {
		if d.Satisfied(c) {
			satisfied = append(satisfied, d.Type)
		}
	}
	return satisfied
}

// Reconcile merges stored achievement records with freshly computed counters.
// It returns the full catalog-ordered set, the records that changed and the
// types unlocked by this call. Earned records are never cleared.
func Reconcile(userID string, existing []models.Achievement, c Counters, now time.Time) (all []models.Achievement, changed []models.Achievement, unlocked []models.AchievementType) {
	byType := make(map[models.AchievementType]models.Achievement, len(existing))
	for _, a := range existing {
		byType[a.Type] = a
	}

	for _, d := range catalog {
		a, ok := byType[d.Type]
		if !ok {
			a = models.Achievement{UserID: userID, Type: d.Type}
		}
		a.Category = d.Category
		a.Title = d.Title
		a.Description = d.Description
		a.Points = d.Points
		a.IsHidden = d.Hidden

		dirty := !ok
		switch {
		case a.Earned():
			if a.Progress != 1 {
				a.Progress = 1
				dirty = true
			}
		case d.Satisfied(c):
			earned := now
			a.EarnedDate = &earned
			a.Progress = 1
			unlocked = append(unlocked, d.Type)
			dirty = true
		default:
			p := d.Progress(c)
			if p > a.Progress {
				a.Progress = p
				dirty = true
			}
		}
		if dirty {
			a.UpdatedAt = now
			changed = append(changed, a)
		}
		all = append(all, a)
	}
	return all, changed, unlocked
}
