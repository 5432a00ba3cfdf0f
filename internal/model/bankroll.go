package model

import (
	"fmt"
	"strings"
)

// Strategy identifies how a round was played.
type Strategy string

const (
	StrategyEarlyCashout Strategy = "EARLY_CASHOUT"
	StrategyTwoBets      Strategy = "TWO_BETS"
	StrategyManual       Strategy = "MANUAL"
)

// CoverKey is the strategyDefaults key holding the multiplier of the covering
// half of a two-bet round.
const CoverKey = "TWO_BETS_COVER"

// Legacy wire values written by older backups.
var legacyStrategies = map[string]string{
	"SAQUE_PRECOCE":      string(StrategyEarlyCashout),
	"DUAS_APOSTAS":       string(StrategyTwoBets),
	"DUAS_APOSTAS_COVER": CoverKey,
}

// ParseStrategy accepts current and legacy names, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if v, ok := legacyStrategies[key]; ok {
		key = v
	}
	switch Strategy(key) {
	case StrategyEarlyCashout, StrategyTwoBets, StrategyManual:
		return Strategy(key), nil
	}
	switch strings.ToLower(key) {
	case "early", "cashout":
		return StrategyEarlyCashout, nil
	case "two", "twobets", "two-bets":
		return StrategyTwoBets, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// UnmarshalText normalises legacy strategy names.
func (s *Strategy) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = StrategyManual
		return nil
	}
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// BankrollConfig holds the user's bankroll and risk settings.
type BankrollConfig struct {
	InitialCapital          float64            `json:"initialCapital"`
	CurrentCapital          float64            `json:"currentCapital"`
	BetPercentage           float64            `json:"betPercentage"`
	StopLossPercentage      float64            `json:"stopLossPercentage"`
	StopWinPercentage       float64            `json:"stopWinPercentage"`
	DailyGoalPercentage     float64            `json:"dailyGoalPercentage"`
	DefaultTargetMultiplier float64            `json:"defaultTargetMultiplier,omitempty"`
	StrategyDefaults        map[string]float64 `json:"strategyDefaults,omitempty"`
}

// DefaultDailyGoalPercentage applies when the configured goal is unset.
const DefaultDailyGoalPercentage = 5.0

// GoalPercentage returns the daily goal percentage, falling back to the default.
func (c BankrollConfig) GoalPercentage() float64 {
	if c.DailyGoalPercentage <= 0 {
		return DefaultDailyGoalPercentage
	}
	return c.DailyGoalPercentage
}

// TargetFor returns the default cash-out multiplier for a strategy key.
func (c BankrollConfig) TargetFor(key string) float64 {
	if v, ok := c.StrategyDefaults[key]; ok && v > 0 {
		return v
	}
	switch key {
	case CoverKey:
		return 1.20
	case string(StrategyTwoBets):
		return 2.00
	}
	if c.DefaultTargetMultiplier > 0 {
		return c.DefaultTargetMultiplier
	}
	return 2.00
}

// normalizeKeys rewrites legacy strategyDefaults keys.
func (c *BankrollConfig) normalizeKeys() {
	if len(c.StrategyDefaults) == 0 {
		c.StrategyDefaults = nil
		return
	}
	out := make(map[string]float64, len(c.StrategyDefaults))
	for k, v := range c.StrategyDefaults {
		if nk, ok := legacyStrategies[strings.ToUpper(k)]; ok {
			k = nk
		}
		out[k] = v
	}
	c.StrategyDefaults = out
}

// DefaultConfig is the configuration used before onboarding.
func DefaultConfig() BankrollConfig {
	return BankrollConfig{
		InitialCapital:          100,
		CurrentCapital:          100,
		BetPercentage:           1.5,
		StopLossPercentage:      15,
		StopWinPercentage:       7.5,
		DailyGoalPercentage:     5,
		DefaultTargetMultiplier: 1.20,
		StrategyDefaults: map[string]float64{
			string(StrategyEarlyCashout): 1.20,
			string(StrategyTwoBets):      2.00,
			CoverKey:                     1.20,
			string(StrategyManual):       0,
		},
	}
}
