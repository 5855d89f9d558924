package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// testClock pins the scheduler to a settable instant.
type testClock struct {
	t time.Time
}

func (tc *testClock) now() time.Time          { return tc.t }
func (tc *testClock) advance(d time.Duration) { tc.t = tc.t.Add(d) }

func newTestScheduler() (*ChargeScheduler, *testClock) {
	clock := &testClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cs := NewChargeScheduler()
	cs.now = clock.now
	return cs, clock
}

func TestNewMemberStartsWithOneCharge(t *testing.T) {
	cs, _ := newTestScheduler()
	avail, _ := cs.Available("g", "u")
	assert.Equal(t, 1, avail)
}

func TestConsumeDrainsAndReportsWait(t *testing.T) {
	cs, _ := newTestScheduler()

	ok, _ := cs.Consume("g", "u")
	assert.True(t, ok)

	ok, wait := cs.Consume("g", "u")
	assert.False(t, ok)
	assert.Equal(t, time.Hour, wait)
}

func TestProgressiveAccrual(t *testing.T) {
	cs, clock := newTestScheduler()
	ok, _ := cs.Consume("g", "u")
	assert.True(t, ok)

	// First replacement charge after 1h.
	clock.advance(59 * time.Minute)
	avail, wait := cs.Available("g", "u")
	assert.Equal(t, 0, avail)
	assert.Equal(t, time.Minute, wait)

	clock.advance(time.Minute)
	avail, _ = cs.Available("g", "u")
	assert.Equal(t, 1, avail)

	// Second at 2.5h cumulative, third at 4.5h.
	clock.advance(90 * time.Minute)
	avail, _ = cs.Available("g", "u")
	assert.Equal(t, 2, avail)

	clock.advance(2 * time.Hour)
	avail, _ = cs.Available("g", "u")
	assert.Equal(t, 3, avail)
}

func TestAccrualCapsAtMaxCharges(t *testing.T) {
	cs, clock := newTestScheduler()
	cs.Available("g", "u")
	clock.advance(1000 * time.Hour)
	avail, _ := cs.Available("g", "u")
	assert.Equal(t, MaxCharges, avail)
}

func TestConsumeResetsAccrualClock(t *testing.T) {
	cs, clock := newTestScheduler()
	cs.Available("g", "u")

	clock.advance(5 * time.Hour)
	ok, _ := cs.Consume("g", "u")
	assert.True(t, ok)

	// Banked 3, spent 1; the elapsed time was consumed with it.
	avail, _ := cs.Available("g", "u")
	assert.Equal(t, 2, avail)

	clock.advance(30 * time.Minute)
	avail, _ = cs.Available("g", "u")
	assert.Equal(t, 2, avail)
}

func TestRefundCapsAtMax(t *testing.T) {
	cs, clock := newTestScheduler()
	cs.Available("g", "u")
	clock.advance(5 * time.Hour)

	ok, _ := cs.Consume("g", "u")
	assert.True(t, ok)
	cs.Refund("g", "u")
	avail, _ := cs.Available("g", "u")
	assert.Equal(t, 3, avail)

	// A stray second refund cannot push past the cap.
	cs.Refund("g", "u")
	avail, _ = cs.Available("g", "u")
	assert.Equal(t, MaxCharges, avail)
}

func TestMembersAreIndependent(t *testing.T) {
	cs, _ := newTestScheduler()
	ok, _ := cs.Consume("g", "a")
	assert.True(t, ok)

	avail, _ := cs.Available("g", "b")
	assert.Equal(t, 1, avail)
	avail, _ = cs.Available("g2", "a")
	assert.Equal(t, 1, avail)
}
