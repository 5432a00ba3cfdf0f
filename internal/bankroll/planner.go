package bankroll

import (
	"fmt"
	"math"
	"time"

	"BankrollSentinel/internal/calculator"
	"BankrollSentinel/internal/model"
)

// MaxSessionDuration is how long a session may run before it is flagged as
// overtime.
const MaxSessionDuration = 30 * time.Minute

// RecommendedBet is the stake suggested by the configured bet percentage.
func RecommendedBet(cfg model.BankrollConfig) float64 {
	return calculator.RoundCents(cfg.CurrentCapital * cfg.BetPercentage / 100)
}

// SessionProgress measures the running session against limits computed from
// the capital the session opened with.
type SessionProgress struct {
	Active        bool
	Elapsed       time.Duration
	Overtime      bool
	Rounds        int
	StartCapital  float64
	Profit        float64
	Goal          float64
	StopLoss      float64
	RemainingGoal float64
	HitGoal       bool
	HitStopLoss   bool
}

// Progress computes the progress of the active session. maxDuration <= 0
// uses MaxSessionDuration.
func Progress(state *model.AppState, now time.Time, maxDuration time.Duration) SessionProgress {
	if maxDuration <= 0 {
		maxDuration = MaxSessionDuration
	}
	profit := 0.0
	for _, r := range state.CurrentSessionRounds {
		profit += r.Profit
	}
	start := state.SessionStartBalance
	if start == 0 {
		start = state.Config.CurrentCapital - profit
	}

	p := SessionProgress{
		Active:       state.IsSessionActive,
		Rounds:       len(state.CurrentSessionRounds),
		StartCapital: start,
		Profit:       profit,
		Goal:         start * state.Config.GoalPercentage() / 100,
		StopLoss:     -(start * state.Config.StopLossPercentage / 100),
	}
	if state.IsSessionActive && state.SessionStartTime != nil {
		p.Elapsed = now.Sub(time.UnixMilli(*state.SessionStartTime))
		if p.Elapsed < 0 {
			p.Elapsed = 0
		}
		p.Overtime = p.Elapsed >= maxDuration
	}
	p.RemainingGoal = math.Max(0, p.Goal-profit)
	p.HitGoal = profit >= p.Goal
	p.HitStopLoss = profit <= p.StopLoss
	return p
}

// RoundsNeeded is how many winning rounds at the given stake and target are
// still required to close the remaining goal. Zero when nothing remains or a
// win would not be profitable.
func RoundsNeeded(remainingGoal, bet, target float64, strategy model.Strategy, cover float64) int {
	if target <= 1 || bet <= 0 || remainingGoal <= 0 {
		return 0
	}
	perWin := ComputeProfit(RoundInput{BetAmount: bet, Multiplier: target, Win: true, Strategy: strategy}, cover)
	if perWin <= 0 {
		return 0
	}
	return int(math.Ceil(remainingGoal / perWin))
}

// RiskLevel grades a stake relative to the bankroll.
type RiskLevel string

const (
	RiskControlled RiskLevel = "CONTROLLED"
	RiskHigh       RiskLevel = "HIGH"
	RiskExtreme    RiskLevel = "EXTREME"
)

// Recovery is the stake needed to win back a previous loss in one round.
type Recovery struct {
	Bet         float64
	Multiplier  float64
	RiskPercent float64
	Level       RiskLevel
}

// RecoveryBet computes loss / (multiplier - 1) and grades it against bankroll.
func RecoveryBet(loss, multiplier, bankroll float64) (Recovery, error) {
	if !validAmount(loss) {
		return Recovery{}, fmt.Errorf("%w: loss %v", ErrInvalidAmount, loss)
	}
	if multiplier <= 1 {
		return Recovery{}, fmt.Errorf("%w: multiplier must be above 1.00", ErrInvalidAmount)
	}
	rec := Recovery{
		Bet:        calculator.RoundCents(loss / (multiplier - 1)),
		Multiplier: multiplier,
		Level:      RiskControlled,
	}
	if bankroll > 0 {
		rec.RiskPercent = rec.Bet / bankroll * 100
	}
	switch {
	case rec.RiskPercent > 30:
		rec.Level = RiskExtreme
	case rec.RiskPercent > 10:
		rec.Level = RiskHigh
	}
	return rec, nil
}
