package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAliasTrackerAvoidsReuseWithinWindow(t *testing.T) {
	tracker := NewAliasTracker()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		alias := tracker.Next()
		assert.False(t, seen[alias], "alias %q re-issued within the window", alias)
		seen[alias] = true
	}
}

func TestAliasTrackerRecyclesAfterWindow(t *testing.T) {
	current := time.Now()
	tracker := NewAliasTracker()
	tracker.now = func() time.Time { return current }

	first := tracker.Next()
	assert.NotEmpty(t, first)
	assert.Len(t, tracker.inUse, 1)

	// Beyond the exclusion window the old alias is pruned and may circulate again.
	current = current.Add(aliasWindow + time.Minute)
	tracker.Next()
	_, stillHeld := tracker.inUse[first]
	if stillHeld {
		// Only held if the random draw picked the same tag again.
		assert.Equal(t, 1, len(tracker.inUse))
	}
	assert.LessOrEqual(t, len(tracker.inUse), 2)
}

func TestAliasShape(t *testing.T) {
	tracker := NewAliasTracker()
	alias := tracker.Next()
	assert.Regexp(t, `^Guest-\d+$`, alias)
}
