package utils

import (
	"sync"
	"time"
)

// MaxCharges caps how many roll charges a member can bank.
const MaxCharges = 3

const (
	chargeBaseInterval = time.Hour
	chargeIntervalStep = 30 * time.Minute
)

// ChargeState tracks one member's roll budget. Charges replenish lazily
// from elapsed time; there is no background clock.
type ChargeState struct {
	LastAction time.Time
	Charges    int
}

// ChargeScheduler gates the roll action on a progressive charge schedule:
// the first replacement charge takes 1h, the next 1.5h more, the next 2h
// more, so a fully drained member waits 1h / 2.5h / 4.5h cumulative.
type ChargeScheduler struct {
	mu     sync.Mutex
	states map[string]map[string]*ChargeState
	now    func() time.Time
}

// NewChargeScheduler returns an empty scheduler.
func NewChargeScheduler() *ChargeScheduler {
	return &ChargeScheduler{
		states: make(map[string]map[string]*ChargeState),
		now:    time.Now,
	}
}

// chargeThreshold is the cumulative elapsed time after which the (n+1)th
// replacement charge has accrued.
func chargeThreshold(n int) time.Duration {
	var total time.Duration
	for i := 0; i <= n; i++ {
		total += chargeBaseInterval + time.Duration(i)*chargeIntervalStep
	}
	return total
}

// state fetches or creates the member's charge state. New members start
// with a single banked charge. Caller must hold the lock.
func (cs *ChargeScheduler) state(guildID, userID string) *ChargeState {
	g := cs.states[guildID]
	if g == nil {
		g = make(map[string]*ChargeState)
		cs.states[guildID] = g
	}
	st := g[userID]
	if st == nil {
		st = &ChargeState{LastAction: cs.now(), Charges: 1}
		g[userID] = st
	}
	return st
}

// available computes banked plus accrued charges, capped at MaxCharges,
// and the wait until the next charge when none are available.
// Caller must hold the lock.
func (cs *ChargeScheduler) available(st *ChargeState) (int, time.Duration) {
	elapsed := cs.now().Sub(st.LastAction)
	accrued := 0
	for accrued < MaxCharges && elapsed >= chargeThreshold(accrued) {
		accrued++
	}
	avail := st.Charges + accrued
	if avail > MaxCharges {
		avail = MaxCharges
	}
	var wait time.Duration
	if avail <= 0 {
		wait = chargeThreshold(accrued) - elapsed
	}
	return avail, wait
}

// Available reports the member's current charge count and, when zero, the
// time remaining until the next charge.
func (cs *ChargeScheduler) Available(guildID, userID string) (int, time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.available(cs.state(guildID, userID))
}

// Consume atomically spends one charge and resets the accrual clock. The
// check and the spend happen under one lock so concurrent invocations
// cannot both pass the gate. Returns false plus the wait time when no
// charge is available.
func (cs *ChargeScheduler) Consume(guildID, userID string) (bool, time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	st := cs.state(guildID, userID)
	avail, wait := cs.available(st)
	if avail <= 0 {
		return false, wait
	}
	st.Charges = avail - 1
	st.LastAction = cs.now()
	return true, 0
}

// Refund returns a consumed charge after an aborted action, capped at
// MaxCharges. The accrual clock is left untouched.
func (cs *ChargeScheduler) Refund(guildID, userID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	st := cs.state(guildID, userID)
	if st.Charges < MaxCharges {
		st.Charges++
	}
}
