package coordinator

import (
	"math/rand/v2"
	"time"
)

const (
	// maxJitter caps the random offset applied to a repository sync interval
	maxJitter = 30 * time.Second
	// minInterval is the shortest interval between two sync triggers of a repository
	minInterval = time.Second
)

// jitteredInterval returns interval with a random offset of up to ±10% (at most ±maxJitter)
// so several indexer instances do not trigger the same repository in lockstep.
func jitteredInterval(interval time.Duration) time.Duration {
	jitter := min(interval/10, maxJitter)
	if jitter <= 0 {
		return max(interval, minInterval)
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for scheduling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return max(interval+offset, minInterval)
}
