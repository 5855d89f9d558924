package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalLegacyBareCount(t *testing.T) {
	var rec MemberRecord
	require.NoError(t, json.Unmarshal([]byte(`50`), &rec))
	assert.Equal(t, MemberRecord{Explosions: 50, XP: 0, Level: 1}, rec)
}

func TestUnmarshalObjectForm(t *testing.T) {
	var rec MemberRecord
	require.NoError(t, json.Unmarshal([]byte(`{"explosions":7,"xp":450,"level":3}`), &rec))
	assert.Equal(t, MemberRecord{Explosions: 7, XP: 450, Level: 3}, rec)
}

func TestUnmarshalClampsLevel(t *testing.T) {
	var rec MemberRecord
	require.NoError(t, json.Unmarshal([]byte(`{"explosions":2,"xp":0,"level":0}`), &rec))
	assert.Equal(t, 1, rec.Level)
}

func TestMigrationIsIdempotent(t *testing.T) {
	var rec MemberRecord
	require.NoError(t, json.Unmarshal([]byte(`50`), &rec))

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var again MemberRecord
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, rec, again)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var rec MemberRecord
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &rec))
}
