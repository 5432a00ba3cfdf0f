package calculator

import (
	"math"

	"BankrollSentinel/internal/model"
)

// DepositThreshold is how far a session may open above the previous close
// before the difference is treated as injected capital.
const DepositThreshold = 1.00

// EvolutionPoint pairs the real balance after a session with the simulated
// balance for the same day index. Either side may be missing.
type EvolutionPoint struct {
	Day      int
	Real     float64
	HasReal  bool
	Ideal    float64
	HasIdeal bool
}

// DetectedDeposit is a gap between consecutive sessions that gambling cannot
// explain.
type DetectedDeposit struct {
	SessionIndex int
	Amount       float64
}

// Evolution is the real-vs-projected chart series.
type Evolution struct {
	Points   []EvolutionPoint
	Deposits []DetectedDeposit
}

// BuildEvolution merges the session history with a simulated projection.
// Point 0 holds initialCapital and the simulation start; point i holds the
// end balance of the i-th session and the rounded simulated balance on day i.
func BuildEvolution(sessions []model.DailySession, initialCapital, simCapital, percent float64, days int) Evolution {
	if days < 0 {
		days = 0
	}
	n := max(len(sessions), days)
	ev := Evolution{Points: make([]EvolutionPoint, 0, n+1)}

	sim := simCapital
	for i := 0; i <= n; i++ {
		pt := EvolutionPoint{Day: i}
		switch {
		case i == 0:
			pt.Real, pt.HasReal = initialCapital, true
		case i <= len(sessions):
			pt.Real, pt.HasReal = sessions[i-1].EndBalance, true
		}
		if i <= days {
			pt.Ideal, pt.HasIdeal = math.Round(sim), true
		}
		ev.Points = append(ev.Points, pt)
		if i < days {
			sim *= 1 + percent/100
		}
	}
	ev.Deposits = DetectDeposits(sessions, initialCapital)
	return ev
}

// DetectDeposits flags sessions that opened more than DepositThreshold above
// the previous session's close. The first session is compared with
// initialCapital.
func DetectDeposits(sessions []model.DailySession, initialCapital float64) []DetectedDeposit {
	var out []DetectedDeposit
	prev := initialCapital
	for i, s := range sessions {
		if gap := s.StartBalance - prev; gap > DepositThreshold {
			out = append(out, DetectedDeposit{SessionIndex: i, Amount: RoundCents(gap)})
		}
		prev = s.EndBalance
	}
	return out
}
