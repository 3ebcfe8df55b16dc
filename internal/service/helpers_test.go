package service

import (
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(s string) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	c.now = t
}

func civil(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type testEnv struct {
	clock        *fakeClock
	events       *memory.ActivityEventStore
	checkinStore *memory.CheckInStore
	streakStore  *memory.StreakStore
	achStore     *memory.AchievementStore

	achievements AchievementService
	streaks      StreakService
	activities   ActivityService
	checkins     CheckInService
	analytics    AnalyticsService
}

func newTestEnv(now string) *testEnv {
	env := &testEnv{
		clock:        &fakeClock{},
		events:       memory.NewActivityEventStore(),
		checkinStore: memory.NewCheckInStore(),
		streakStore:  memory.NewStreakStore(),
		achStore:     memory.NewAchievementStore(),
	}
	env.clock.Set(now)
	opt := WithClock(env.clock.Now)
	locker := lock.NewKeyed()

	env.achievements = NewAchievementService(env.achStore, env.events, env.streakStore, opt, WithLocker(locker))
	env.streaks = NewStreakService(env.streakStore, env.achievements, locker, analytics.DefaultStreakPolicy(), opt)
	env.activities = NewActivityService(env.events, env.streaks, env.achievements, opt)
	env.checkins = NewCheckInService(env.checkinStore, env.activities, opt)
	env.analytics = NewAnalyticsService(env.events, env.checkinStore, env.streaks, env.achievements, EngineConfig{}, opt)
	return env
}
