package scheduler

import (
	"context"
	"errors"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Pass is a single idempotent evaluation run. The scheduler supplies the
// wall-clock instant the pass should evaluate against.
type Pass func(ctx context.Context, now time.Time) error

// Job describes one periodically executed pass. SingleActive jobs take a
// Postgres advisory lock around each run so overlapping instances cannot
// execute the pass concurrently.
type Job struct {
	Name         string
	Interval     time.Duration
	SingleActive bool
	Run          Pass
}

type Options struct {
	Pool      *pgxpool.Pool
	Logger    *logrus.Entry
	JitterMax time.Duration
	Rand      *rand.Rand
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		o.Logger = logrus.NewEntry(l)
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
}

type Scheduler struct {
	jobs []Job
	opts Options
	m    *metrics
}

func New(opts Options) *Scheduler {
	opts.setDefaults()
	return &Scheduler{
		opts: opts,
		m:    getMetrics(),
	}
}

func (s *Scheduler) Add(job Job) error {
	if job.Name == "" {
		return errors.New("scheduler: job name is required")
	}
	if job.Interval <= 0 {
		return errors.New("scheduler: job interval must be positive")
	}
	if job.Run == nil {
		return errors.New("scheduler: job run function is required")
	}
	if job.SingleActive && s.opts.Pool == nil {
		return errors.New("scheduler: single-active jobs require a pool")
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Run blocks until ctx is cancelled, ticking every job on its own interval.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return errors.New("scheduler: no jobs registered")
	}

	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.runJob(ctx, job)
		}(job)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if d := jitter(s.opts.Rand, s.opts.JitterMax); d > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
		}

		if err := s.tick(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			s.opts.Logger.WithError(err).WithField("job", job.Name).Warn("scheduler: pass failed")
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, job Job) error {
	if !job.SingleActive {
		return s.execute(ctx, job)
	}

	conn, err := s.opts.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	lockKey := advisoryLockKey("scheduler:" + job.Name)
	var leader bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1::bigint)`, lockKey).Scan(&leader); err != nil {
		return err
	}
	if !leader {
		s.m.leader.WithLabelValues(job.Name).Set(0)
		s.m.skippedRuns.WithLabelValues(job.Name).Inc()
		return nil
	}
	s.m.leader.WithLabelValues(job.Name).Set(1)

	defer func() {
		var unlocked bool
		// Release on a fresh context so cancellation cannot strand the lock.
		_ = conn.QueryRow(context.Background(), `SELECT pg_advisory_unlock($1::bigint)`, lockKey).Scan(&unlocked)
	}()

	return s.execute(ctx, job)
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	start := time.Now()
	err := job.Run(ctx, start)
	result := "success"
	if err != nil {
		result = "failure"
	}
	s.m.runsTotal.WithLabelValues(job.Name, result).Inc()
	s.m.runDuration.WithLabelValues(job.Name, result).Observe(time.Since(start).Seconds())
	return err
}

func jitter(r *rand.Rand, maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 || r == nil {
		return 0
	}
	// [0, maxJitter]
	return time.Duration(r.Int63n(int64(maxJitter) + 1)) //nolint:gosec
}

func advisoryLockKey(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
