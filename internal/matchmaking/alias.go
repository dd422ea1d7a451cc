package matchmaking

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// aliasWindow is how long a handed-out alias is kept out of circulation.
// Collisions after the window are cosmetic, not correctness-critical.
const aliasWindow = 15 * time.Minute

// AliasTracker hands out short ephemeral display tags (e.g. "Guest-4821")
// and avoids re-issuing a tag that was used within the trailing window.
type AliasTracker struct {
	mu     sync.Mutex
	inUse  map[string]time.Time
	now    func() time.Time
}

// NewAliasTracker creates a tracker using the wall clock.
func NewAliasTracker() *AliasTracker {
	return &AliasTracker{
		inUse: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Next returns a fresh alias not seen within the exclusion window.
func (t *AliasTracker) Next() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.prune(now)

	for i := 0; i < 100; i++ {
		alias := fmt.Sprintf("Guest-%04d", rand.Intn(10000))
		if _, taken := t.inUse[alias]; !taken {
			t.inUse[alias] = now
			return alias
		}
	}

	// The 4-digit space is saturated within the window; fall back to a
	// timestamped tag that cannot collide.
	alias := fmt.Sprintf("Guest-%d", now.UnixNano()%1000000)
	t.inUse[alias] = now
	return alias
}

func (t *AliasTracker) prune(now time.Time) {
	for alias, issued := range t.inUse {
		if now.Sub(issued) > aliasWindow {
			delete(t.inUse, alias)
		}
	}
}
