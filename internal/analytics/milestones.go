package analytics

import "github.com/JonnyWalker81/innerlog/backend/internal/models"

// Milestones are the streak lengths, in days, that trigger recognition.
var Milestones = []int{3, 7, 14, 30, 60, 90}

// NextMilestone returns the smallest milestone strictly greater than current,
// or the largest milestone once every milestone has been passed.
func NextMilestone(current int) int {
	for _, m := range Milestones {
		if m > current {
			return m
		}
	}
	return Milestones[len(Milestones)-1]
}

// AchievedMilestones returns the milestones reached by a streak of the given
// length in ascending order.
func AchievedMilestones(streak int) []int {
	achieved := []int{}
	for _, m := range Milestones {
		if streak >= m {
			achieved = append(achieved, m)
		}
	}
	return achieved
}

// MilestoneFor reports progress of the current streak toward its next
// milestone. Progress is capped at 1.0.
func MilestoneFor(current int) models.MilestoneProgress {
	if current < 0 {
		current = 0
	}
	next := NextMilestone(current)
	progress := float64(current) / float64(next)
	if progress > 1 {
		progress = 1
	}
	remaining := next - current
	if remaining < 0 {
		remaining = 0
	}
	return models.MilestoneProgress{
		CurrentStreak:      current,
		NextMilestone:      next,
		Progress:           progress,
		DaysRemaining:      remaining,
		AchievedMilestones: AchievedMilestones(current),
	}
}

// CrossedMilestone returns the milestone newly reached when a streak moved
// from before to after, or zero.
func CrossedMilestone(before, after int) int {
	for _, m := range Milestones {
		if before < m && after >= m {
			return m
		}
	}
	return 0
}
