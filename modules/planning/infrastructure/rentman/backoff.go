package rentman

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

func backoff(attempts int, maxBackoff time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	// 1s * 2^(attempts-1)
	seconds := math.Pow(2, float64(attempts-1))
	d := time.Duration(seconds * float64(time.Second))
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// lockedRand makes a *rand.Rand safe for the concurrent retries of one client.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) jitter(maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 || l == nil || l.r == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// [0, maxJitter]
	return time.Duration(l.r.Int63n(int64(maxJitter) + 1)) //nolint:gosec
}
