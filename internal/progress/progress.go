// Package progress tracks completed lessons and gates the game corner.
package progress

import "sync"

// GameUnlockThreshold is the number of completed lessons needed to open
// the game corner.
const GameUnlockThreshold = 3

// Counter is a monotonically non-decreasing count of completed lessons.
type Counter struct {
	mu    sync.RWMutex
	value int
}

// NewCounter returns a counter starting at value. Negative values clamp to 0.
func NewCounter(value int) *Counter {
	if value < 0 {
		value = 0
	}
	return &Counter{value: value}
}

// Step describes the outcome of an Increment.
type Step struct {
	Before int
	After  int
}

// JustUnlocked reports whether this step crossed the unlock threshold.
func (s Step) JustUnlocked() bool {
	return s.Before < GameUnlockThreshold && s.After >= GameUnlockThreshold
}

// Increment adds n to the counter. Non-positive n leaves it unchanged.
func (c *Counter) Increment(n int) Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := Step{Before: c.value, After: c.value}
	if n <= 0 {
		return step
	}
	c.value += n
	step.After = c.value
	return step
}

// Set overwrites the value during rehydration. It never lowers the count.
func (c *Counter) Set(value int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value > c.value {
		c.value = value
	}
}

// Reset zeroes the counter. Only used when the learner's data is wiped.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.value = 0
	c.mu.Unlock()
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// IsUnlocked reports whether the game corner is open.
func (c *Counter) IsUnlocked() bool {
	return IsUnlocked(c.Value())
}

// Remaining returns how many more lessons are needed, never negative.
func (c *Counter) Remaining() int {
	return Remaining(c.Value())
}

// IsUnlocked reports whether count opens the game corner.
func IsUnlocked(count int) bool {
	return count >= GameUnlockThreshold
}

// Remaining returns how many more lessons count needs to unlock games.
func Remaining(count int) int {
	if count >= GameUnlockThreshold {
		return 0
	}
	return GameUnlockThreshold - count
}

// Fraction returns progress toward the threshold in [0, 1].
func Fraction(count int) float64 {
	if count >= GameUnlockThreshold {
		return 1
	}
	if count <= 0 {
		return 0
	}
	return float64(count) / float64(GameUnlockThreshold)
}
