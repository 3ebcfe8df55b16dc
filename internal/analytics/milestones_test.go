package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextMilestone(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 3},
		{2, 3},
		{3, 7},
		{5, 7},
		{13, 14},
		{29, 30},
		{59, 60},
		{89, 90},
		{90, 90},
		{365, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextMilestone(tt.current), "current=%d", tt.current)
	}
}

func TestMilestoneFor(t *testing.T) {
	m := MilestoneFor(5)
	assert.Equal(t, 7, m.NextMilestone)
	assert.InDelta(t, 5.0/7.0, m.Progress, 1e-9)
	assert.Equal(t, 2, m.DaysRemaining)
	assert.Equal(t, []int{3}, m.AchievedMilestones)

	capped := MilestoneFor(120)
	assert.Equal(t, 90, capped.NextMilestone)
	assert.Equal(t, 1.0, capped.Progress)
	assert.Equal(t, 0, capped.DaysRemaining)
	assert.Equal(t, Milestones, capped.AchievedMilestones)
}

func TestMilestoneProgressBound(t *testing.T) {
	for current := 0; current <= 200; current++ {
		p := MilestoneFor(current).Progress
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestCrossedMilestone(t *testing.T) {
	assert.Equal(t, 3, CrossedMilestone(2, 3))
	assert.Equal(t, 0, CrossedMilestone(3, 4))
	assert.Equal(t, 7, CrossedMilestone(6, 7))
	assert.Equal(t, 0, CrossedMilestone(7, 1))
}
