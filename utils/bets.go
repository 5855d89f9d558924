package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBet parses a wager string against the member's explosion balance.
// Supports exact amounts, "all"/"max", "half", percentages, and k/m
// suffixes.
func ParseBet(betStr string, balance int64) (int64, error) {
	betStr = strings.TrimSpace(strings.ToLower(betStr))
	betStr = strings.ReplaceAll(betStr, ",", "")
	betStr = strings.ReplaceAll(betStr, "_", "")

	switch betStr {
	case "all", "allin", "max":
		return balance, nil
	case "half":
		return balance / 2, nil
	}

	if strings.HasSuffix(betStr, "%") {
		percentStr := strings.TrimSuffix(betStr, "%")
		percent, err := strconv.ParseFloat(percentStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage: %s", betStr)
		}
		if percent < 0 || percent > 100 {
			return 0, fmt.Errorf("percentage must be between 0 and 100")
		}
		return int64(float64(balance) * percent / 100), nil
	}

	multiplier := int64(1)
	if strings.HasSuffix(betStr, "k") {
		multiplier = 1000
		betStr = strings.TrimSuffix(betStr, "k")
	} else if strings.HasSuffix(betStr, "m") {
		multiplier = 1000000
		betStr = strings.TrimSuffix(betStr, "m")
	}

	bet, err := strconv.ParseInt(betStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bet amount: %s", betStr)
	}

	return bet * multiplier, nil
}

// ValidateWager checks a parsed wager against the balance.
func ValidateWager(wager, balance int64) error {
	if wager <= 0 {
		return fmt.Errorf("wager must be greater than 0")
	}
	if wager > balance {
		return fmt.Errorf("insufficient explosions: need %d, have %d", wager, balance)
	}
	return nil
}
