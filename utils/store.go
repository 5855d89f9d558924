package utils

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"boombot/models"
)

// XP granted per explosion event, uniform in [XPRewardMin, XPRewardMax].
const (
	XPRewardMin = 20
	XPRewardMax = 50
)

// AdjustField selects which counter an administrative adjustment targets.
type AdjustField string

// AdjustOp selects how the amount is applied.
type AdjustOp string

const (
	FieldExplosions AdjustField = "explosions"
	FieldXP         AdjustField = "xp"

	OpAdd    AdjustOp = "add"
	OpRemove AdjustOp = "remove"
	OpSet    AdjustOp = "set"
)

// LedgerStore is the in-memory ledger of per-member records, keyed
// guild → member. It is owned by the process; the snapshot layer only
// serializes it. Every mutation fires the on-change hook so the snapshot
// can schedule a debounced write.
type LedgerStore struct {
	mu       sync.RWMutex
	guilds   map[string]map[string]*models.MemberRecord
	onChange func()
	rng      *rand.Rand
}

// NewLedgerStore returns an empty ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		guilds: make(map[string]map[string]*models.MemberRecord),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetOnChange registers the hook fired after every mutation.
func (ls *LedgerStore) SetOnChange(fn func()) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.onChange = fn
}

// GetOrDefault returns the member's record, or the default record if none
// exists. Reading does not insert; only mutations materialize a record.
func (ls *LedgerStore) GetOrDefault(guildID, userID string) models.MemberRecord {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	if g, ok := ls.guilds[guildID]; ok {
		if rec, ok := g[userID]; ok {
			return *rec
		}
	}
	return models.NewMemberRecord()
}

// record returns the stored record for mutation, inserting the default if
// absent. Caller must hold the write lock.
func (ls *LedgerStore) record(guildID, userID string) *models.MemberRecord {
	g := ls.guilds[guildID]
	if g == nil {
		g = make(map[string]*models.MemberRecord)
		ls.guilds[guildID] = g
	}
	rec := g[userID]
	if rec == nil {
		def := models.NewMemberRecord()
		rec = &def
		g[userID] = rec
	}
	return rec
}

// ApplyExplosion records one restriction event against the member:
// the explosion counter goes up by one and a random XP reward in
// [XPRewardMin, XPRewardMax] is granted, with the level recomputed.
func (ls *LedgerStore) ApplyExplosion(guildID, userID string) models.MemberRecord {
	ls.mu.Lock()
	rec := ls.record(guildID, userID)
	rec.Explosions++
	rec.XP += XPRewardMin + int64(ls.rng.Intn(XPRewardMax-XPRewardMin+1))
	rec.Level = LevelFromXP(rec.XP)
	out := *rec
	hook := ls.onChange
	ls.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out
}

// Adjust is the administrative override path. Amounts are non-negative;
// remove clamps at zero and set clamps negative input to zero. XP
// adjustments recompute the level.
func (ls *LedgerStore) Adjust(guildID, userID string, field AdjustField, op AdjustOp, amount int64) (models.MemberRecord, error) {
	if amount < 0 {
		return models.MemberRecord{}, fmt.Errorf("amount must be non-negative, got %d", amount)
	}

	ls.mu.Lock()
	rec := ls.record(guildID, userID)

	var target *int64
	switch field {
	case FieldExplosions:
		target = &rec.Explosions
	case FieldXP:
		target = &rec.XP
	default:
		ls.mu.Unlock()
		return models.MemberRecord{}, fmt.Errorf("unknown field %q", field)
	}

	switch op {
	case OpAdd:
		*target += amount
	case OpRemove:
		*target -= amount
		if *target < 0 {
			*target = 0
		}
	case OpSet:
		*target = amount
	default:
		ls.mu.Unlock()
		return models.MemberRecord{}, fmt.Errorf("unknown op %q", op)
	}

	if field == FieldXP {
		rec.Level = LevelFromXP(rec.XP)
	}
	out := *rec
	hook := ls.onChange
	ls.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

// MarshalSnapshot serializes the full ledger for the snapshot layer.
func (ls *LedgerStore) MarshalSnapshot() ([]byte, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return json.Marshal(ls.guilds)
}

// LoadSnapshot replaces the ledger contents from a serialized snapshot.
// Legacy bare-number member entries are upgraded during decode (see
// models.MemberRecord.UnmarshalJSON).
func (ls *LedgerStore) LoadSnapshot(data []byte) error {
	var guilds map[string]map[string]*models.MemberRecord
	if err := json.Unmarshal(data, &guilds); err != nil {
		return fmt.Errorf("decode ledger snapshot: %w", err)
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if guilds == nil {
		guilds = make(map[string]map[string]*models.MemberRecord)
	}
	ls.guilds = guilds
	return nil
}
