package service

import (
	"context"
	"math/rand/v2"
	"time"
)

// delays between remote calls
const (
	postFetchDelayMin = 700 * time.Millisecond
	postFetchDelayMax = 900 * time.Millisecond
	voteDelayMin      = 2 * time.Second
	voteDelayMax      = 5 * time.Second
	rateLimitCooldown = 2 * time.Second
	intervalVariation = 0.25
)

// Pacer sleeps for randomized durations and wakes early on cancellation
type Pacer struct {
	sleep  func(ctx context.Context, d time.Duration) error
	random func() float64
}

// NewPacer creates a pacer backed by real timers
func NewPacer() *Pacer {
	return &Pacer{
		sleep:  sleepContext,
		random: rand.Float64,
	}
}

// Between sleeps for a uniform duration in [lo, hi] and returns it
func (p *Pacer) Between(ctx context.Context, lo, hi time.Duration) (time.Duration, error) {
	d := lo + time.Duration(p.random()*float64(hi-lo))
	return d, p.sleep(ctx, d)
}

// Around sleeps for base plus or minus fraction of base
func (p *Pacer) Around(ctx context.Context, base time.Duration, fraction float64) (time.Duration, error) {
	spread := time.Duration(float64(base) * fraction)
	return p.Between(ctx, base-spread, base+spread)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
