package models

import "encoding/json"

// MemberRecord holds one member's explosion count and progression.
// Explosions double as the wagering currency for the games.
type MemberRecord struct {
	Explosions int64 `json:"explosions"`
	XP         int64 `json:"xp"`
	Level      int   `json:"level"`
}

// NewMemberRecord returns the default record for a member that has never
// been hit or wagered.
func NewMemberRecord() MemberRecord {
	return MemberRecord{Explosions: 0, XP: 0, Level: 1}
}

// UnmarshalJSON accepts both the current object form and the legacy form,
// which stored a bare explosion count per member. Legacy values are
// upgraded in place: the number becomes Explosions, XP starts at 0 and
// Level at 1. This is the single migration point for old snapshots.
func (r *MemberRecord) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*r = MemberRecord{Explosions: n, XP: 0, Level: 1}
		return nil
	}

	type plain MemberRecord
	var rec plain
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = MemberRecord(rec)
	if r.Level < 1 {
		r.Level = 1
	}
	return nil
}
