package middleware

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestRateLimiterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2023, 6, 13, 12, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(2, time.Minute, "test")
	defer limiter.Stop()
	limiter.now = clock.now

	assert.Equal(t, decision{allowed: true, count: 1, remaining: 1}, limiter.take("u1"))
	assert.Equal(t, decision{allowed: true, count: 2, remaining: 0}, limiter.take("u1"))

	clock.advance(20 * time.Second)
	d := limiter.take("u1")
	assert.False(t, d.allowed)
	assert.Equal(t, 40, d.retryAfter)

	assert.True(t, limiter.take("u2").allowed, "keys are independent")

	clock.advance(40 * time.Second)
	assert.True(t, limiter.take("u1").allowed, "a new window starts")

	clock.advance(3 * time.Minute)
	assert.Equal(t, 2, limiter.evictIdle())
}

// Run with -race.
func TestRateLimiterConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute, "test-concurrent")
	defer limiter.Stop()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				key := "shared"
				if j%3 == 0 {
					key = fmt.Sprintf("user-%d", id)
				}
				if limiter.take(key).allowed && key == "shared" {
					allowed.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 100, allowed.Load(), "exactly rate requests pass for a shared key")
}

func TestRateLimiterConcurrentWithSweep(t *testing.T) {
	limiter := NewRateLimiter(5, 10*time.Millisecond, "test-sweep")
	defer limiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				limiter.take(fmt.Sprintf("10.0.0.%d", id%10))
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	wg.Wait()
}
