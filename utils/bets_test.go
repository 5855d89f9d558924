package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBet(t *testing.T) {
	tests := []struct {
		in      string
		balance int64
		want    int64
		wantErr bool
	}{
		{"100", 1000, 100, false},
		{"all", 1000, 1000, false},
		{"ALLIN", 1000, 1000, false},
		{"max", 1000, 1000, false},
		{"half", 1000, 500, false},
		{"50%", 1000, 500, false},
		{"10%", 333, 33, false},
		{"2k", 10000, 2000, false},
		{"1m", 5000000, 1000000, false},
		{"1,000", 5000, 1000, false},
		{"1_000", 5000, 1000, false},
		{"150%", 1000, 0, true},
		{"abc", 1000, 0, true},
		{"", 1000, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBet(tt.in, tt.balance)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestValidateWager(t *testing.T) {
	assert.NoError(t, ValidateWager(1, 1))
	assert.NoError(t, ValidateWager(500, 1000))
	assert.Error(t, ValidateWager(0, 1000))
	assert.Error(t, ValidateWager(-5, 1000))
	assert.Error(t, ValidateWager(1001, 1000))
}
