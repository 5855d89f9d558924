package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MaxSpinsPerMonth caps how many distinct members may spin per guild per
// calendar month.
const MaxSpinsPerMonth = 5

var (
	// ErrSpinQuotaReached means the guild's monthly spin slots are taken.
	ErrSpinQuotaReached = errors.New("monthly spin quota reached")
	// ErrAlreadySpun means the member already spun this month.
	ErrAlreadySpun = errors.New("member already spun this month")
)

// SpinEntry records one member's spin.
type SpinEntry struct {
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
	Won    bool      `json:"won"`
}

// SpinRecord is one guild's spin ledger for a calendar month.
type SpinRecord struct {
	Month        string      `json:"month"`
	Participants []SpinEntry `json:"participants"`
}

// SpinStore tracks monthly spin participation per guild. Month rollover is
// lazy: a stale record is replaced the first time the current month is
// read.
type SpinStore struct {
	mu       sync.Mutex
	records  map[string]*SpinRecord
	onChange func()
	now      func() time.Time
}

// NewSpinStore returns an empty store.
func NewSpinStore() *SpinStore {
	return &SpinStore{
		records: make(map[string]*SpinRecord),
		now:     time.Now,
	}
}

// SetOnChange registers the hook fired after every mutation.
func (ss *SpinStore) SetOnChange(fn func()) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.onChange = fn
}

// record returns the guild's record for the current month, resetting a
// stale one. Caller must hold the lock.
func (ss *SpinStore) record(guildID string) *SpinRecord {
	month := ss.now().Format("2006-01")
	rec := ss.records[guildID]
	if rec == nil || rec.Month != month {
		rec = &SpinRecord{Month: month}
		ss.records[guildID] = rec
	}
	return rec
}

// CanSpin reports whether the member may spin this month.
func (ss *SpinStore) CanSpin(guildID, userID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.check(ss.record(guildID), userID)
}

func (ss *SpinStore) check(rec *SpinRecord, userID string) error {
	for _, p := range rec.Participants {
		if p.UserID == userID {
			return ErrAlreadySpun
		}
	}
	if len(rec.Participants) >= MaxSpinsPerMonth {
		return ErrSpinQuotaReached
	}
	return nil
}

// Record validates quota and uniqueness and appends the member's outcome
// in one atomic step, so two near-simultaneous spins cannot both claim the
// last slot.
func (ss *SpinStore) Record(guildID, userID string, won bool) error {
	ss.mu.Lock()
	rec := ss.record(guildID)
	if err := ss.check(rec, userID); err != nil {
		ss.mu.Unlock()
		return err
	}
	rec.Participants = append(rec.Participants, SpinEntry{
		UserID: userID,
		At:     ss.now(),
		Won:    won,
	})
	hook := ss.onChange
	ss.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

// MarshalSnapshot serializes all guild records for the snapshot layer.
func (ss *SpinStore) MarshalSnapshot() ([]byte, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return json.Marshal(ss.records)
}

// LoadSnapshot replaces the store contents from a serialized snapshot.
func (ss *SpinStore) LoadSnapshot(data []byte) error {
	var records map[string]*SpinRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decode spin snapshot: %w", err)
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if records == nil {
		records = make(map[string]*SpinRecord)
	}
	ss.records = records
	return nil
}
