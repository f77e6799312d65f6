package scheduler

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_Validation(t *testing.T) {
	s := New(Options{})
	pass := func(context.Context, time.Time) error { return nil }

	assert.Error(t, s.Add(Job{Interval: time.Second, Run: pass}))
	assert.Error(t, s.Add(Job{Name: "noop", Run: pass}))
	assert.Error(t, s.Add(Job{Name: "noop", Interval: time.Second}))
	assert.Error(t, s.Add(Job{Name: "locked", Interval: time.Second, Run: pass, SingleActive: true}),
		"single-active needs a pool for the advisory lock")
	assert.NoError(t, s.Add(Job{Name: "noop", Interval: time.Second, Run: pass}))
}

func TestRun_NoJobs(t *testing.T) {
	s := New(Options{})
	assert.Error(t, s.Run(context.Background()))
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	var runs atomic.Int64
	s := New(Options{})
	require.NoError(t, s.Add(Job{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context, time.Time) error {
			runs.Add(1)
			return nil
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, runs.Load(), int64(1))
}

func TestJitter_Bounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	assert.Zero(t, jitter(r, 0))
	assert.Zero(t, jitter(nil, time.Second))
	for i := 0; i < 100; i++ {
		d := jitter(r, 50*time.Millisecond)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestAdvisoryLockKey_Stable(t *testing.T) {
	assert.Equal(t, advisoryLockKey("scheduler:autonomy"), advisoryLockKey("scheduler:autonomy"))
	assert.NotEqual(t, advisoryLockKey("scheduler:autonomy"), advisoryLockKey("scheduler:sla-check"))
}
