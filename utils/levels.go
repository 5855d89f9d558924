package utils

import "math"

// LevelFromXP maps accumulated XP to a level using a quadratic curve:
// level = floor(0.1 * sqrt(xp)) + 1. Negative XP is clamped to 0.
func LevelFromXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Floor(0.1*math.Sqrt(float64(xp)))) + 1
}

// XPForLevel returns the minimum XP required to reach a level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	d := float64(level-1) / 0.1
	return int64(d * d)
}
