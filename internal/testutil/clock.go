package testutil

import (
	"fmt"
	"sync"
	"time"

	"moodlog/internal/mood"
)

// FixedMillis is FixedClock's instant as an entry timestamp.
const FixedMillis int64 = 1705314600000

// StubClock is a mood.Clock for tests. It stands still unless a tick is set,
// in which case every Now call moves it forward by the tick afterwards, so
// consecutive entries get distinct timestamps.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
}

var _ mood.Clock = (*StubClock)(nil)

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock stopped at 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.UnixMilli(FixedMillis).UTC())
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.tick)
	return t
}

// Tick makes each later Now call advance the clock by d.
func (c *StubClock) Tick(d time.Duration) *StubClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = d
	return c
}

// Millis returns the instant the next Now call will report, in Unix
// milliseconds.
func (c *StubClock) Millis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.UnixMilli()
}

// StubIDGenerator hands out "id-1", "id-2", ... as export name suffixes.
type StubIDGenerator struct {
	mu     sync.Mutex
	issued []string
}

var _ mood.IDGenerator = (*StubIDGenerator)(nil)

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("id-%d", len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// Issued returns every id handed out so far, oldest first.
func (g *StubIDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
