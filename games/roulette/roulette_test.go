package roulette

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor(t *testing.T) {
	assert.Equal(t, "green", Color(0))
	assert.Equal(t, "red", Color(1))
	assert.Equal(t, "black", Color(2))
	assert.Equal(t, "red", Color(36))
	assert.Equal(t, "black", Color(35))
}

func TestResolveSingleNumber(t *testing.T) {
	mult, win, err := Resolve("17", 17)
	require.NoError(t, err)
	assert.True(t, win)
	assert.Equal(t, int64(35), mult)

	_, win, err = Resolve("17", 18)
	require.NoError(t, err)
	assert.False(t, win)

	_, _, err = Resolve("37", 0)
	assert.Error(t, err)
	_, _, err = Resolve("-1", 0)
	assert.Error(t, err)
}

func TestResolveZeroLosesOutsideBets(t *testing.T) {
	for _, space := range []string{"red", "black", "even", "odd", "low", "high", "1st12", "2nd12", "3rd12"} {
		_, win, err := Resolve(space, 0)
		require.NoError(t, err, "space %s", space)
		assert.False(t, win, "zero must lose on %s", space)
	}

	mult, win, err := Resolve("0", 0)
	require.NoError(t, err)
	assert.True(t, win)
	assert.Equal(t, int64(35), mult)
}

func TestResolveEvenMoneySpaces(t *testing.T) {
	_, win, _ := Resolve("even", 4)
	assert.True(t, win)
	_, win, _ = Resolve("odd", 4)
	assert.False(t, win)
	_, win, _ = Resolve("odd", 7)
	assert.True(t, win)
	_, win, _ = Resolve("red", 1)
	assert.True(t, win)
	_, win, _ = Resolve("black", 1)
	assert.False(t, win)

	_, win, _ = Resolve("low", 18)
	assert.True(t, win)
	_, win, _ = Resolve("low", 19)
	assert.False(t, win)
	_, win, _ = Resolve("high", 19)
	assert.True(t, win)
}

func TestResolveDozens(t *testing.T) {
	for n := 1; n <= 36; n++ {
		var winning string
		switch {
		case n <= 12:
			winning = "1st12"
		case n <= 24:
			winning = "2nd12"
		default:
			winning = "3rd12"
		}
		for _, space := range []string{"1st12", "2nd12", "3rd12"} {
			mult, win, err := Resolve(space, n)
			require.NoError(t, err)
			assert.Equal(t, space == winning, win, "space %s number %d", space, n)
			assert.Equal(t, int64(2), mult)
		}
	}
}

func TestResolveAliasesAndCase(t *testing.T) {
	mult, win, err := Resolve("  RED ", 1)
	require.NoError(t, err)
	assert.True(t, win)
	assert.Equal(t, int64(1), mult)

	_, win, err = Resolve("1-18", 10)
	require.NoError(t, err)
	assert.True(t, win)

	_, win, err = Resolve("13-24", 20)
	require.NoError(t, err)
	assert.True(t, win)
}

func TestResolveUnknownSpace(t *testing.T) {
	_, _, err := Resolve("corner", 5)
	assert.Error(t, err)
}

func TestRedBlackPartitionWholeWheel(t *testing.T) {
	red, black := 0, 0
	for n := 1; n <= 36; n++ {
		switch Color(n) {
		case "red":
			red++
		case "black":
			black++
		default:
			t.Fatal(fmt.Sprintf("number %d has no color", n))
		}
	}
	assert.Equal(t, 18, red)
	assert.Equal(t, 18, black)
}
