package stealth

import (
	"context"
	"math/rand"
	"time"
)

// Jitter implements randomized timing
type Jitter struct {
	rng *rand.Rand
}

// NewJitter creates a new Jitter instance
func NewJitter() *Jitter {
	return NewJitterWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewJitterWithSource creates a Jitter drawing from src
func NewJitterWithSource(src rand.Source) *Jitter {
	return &Jitter{rng: rand.New(src)}
}

// RandomInt64 returns a random integer between min and max (inclusive)
func (j *Jitter) RandomInt64(min, max int64) int64 {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}
	return min + j.rng.Int63n(max-min+1)
}

// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case
func Sleep(ctx context.Context, d time.Duration) error {
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
