// Package testutil provides deterministic collaborators for tests.
package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Epoch is the time FixedClock starts at.
var Epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a chat.Clock under test control. Now returns queued times in
// order, then keeps returning the last one until moved with Set or Advance.
type StubClock struct {
	mu     sync.Mutex
	now    time.Time
	queued []time.Time
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to Epoch.
func FixedClock() *StubClock {
	return NewStubClock(Epoch)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queued) > 0 {
		c.now, c.queued = c.queued[0], c.queued[1:]
	}
	return c.now
}

// Set moves the clock to t, which may be earlier than the current time.
func (c *StubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
	c.queued = nil
}

// Advance moves the clock by d. A negative d moves it backwards.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.queued = nil
}

// Queue makes the next calls to Now return ts in order.
func (c *StubClock) Queue(ts ...time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued = append(c.queued, ts...)
}

// StubIDGenerator returns "<prefix>-1", "<prefix>-2", ...
type StubIDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued int
}

// NewStubIDGenerator returns a generator issuing "id-1", "id-2", ...
func NewStubIDGenerator() *StubIDGenerator {
	return NewPrefixedIDGenerator("id")
}

// NewPrefixedIDGenerator returns a generator whose ids start with prefix.
// Separate generators with distinct prefixes never collide.
func NewPrefixedIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return fmt.Sprintf("%s-%d", g.prefix, g.issued)
}
