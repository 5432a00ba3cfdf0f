package bankroll

import (
	"fmt"
	"math"
	"time"

	"BankrollSentinel/internal/model"

	"github.com/google/uuid"
)

// Two-bet rounds split the stake between a covering bet and a target bet.
const (
	coverShare  = 0.60
	targetShare = 0.40
)

// RoundInput is what the player reports after a round resolves.
type RoundInput struct {
	BetAmount  float64
	Multiplier float64 // 0 means the configured default for the strategy
	Win        bool
	Strategy   model.Strategy
}

// ComputeProfit returns the signed result of a round. cover is the cash-out
// multiplier of the covering half of a two-bet round.
func ComputeProfit(in RoundInput, cover float64) float64 {
	if !in.Win {
		return -in.BetAmount
	}
	if in.Strategy == model.StrategyTwoBets {
		gainCover := in.BetAmount * coverShare * cover
		gainTarget := in.BetAmount * targetShare * in.Multiplier
		return gainCover + gainTarget - in.BetAmount
	}
	return in.BetAmount*in.Multiplier - in.BetAmount
}

// NewRound validates the input, fills in defaults from cfg and computes the
// round profit.
func NewRound(in RoundInput, cfg model.BankrollConfig, now time.Time) (model.Round, error) {
	if !validAmount(in.BetAmount) {
		return model.Round{}, fmt.Errorf("%w: bet %v", ErrInvalidAmount, in.BetAmount)
	}
	if in.Strategy == "" {
		in.Strategy = model.StrategyEarlyCashout
	}
	if in.Multiplier == 0 {
		in.Multiplier = cfg.TargetFor(string(in.Strategy))
	}
	if in.Win && in.Multiplier < 1 {
		return model.Round{}, fmt.Errorf("%w: multiplier %.2f below 1.00", ErrInvalidAmount, in.Multiplier)
	}
	return model.Round{
		ID:         uuid.NewString(),
		Timestamp:  now.UnixMilli(),
		BetAmount:  in.BetAmount,
		Multiplier: in.Multiplier,
		Win:        in.Win,
		Profit:     ComputeProfit(in, cfg.TargetFor(model.CoverKey)),
		Strategy:   in.Strategy,
	}, nil
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
