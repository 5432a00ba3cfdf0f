package rank

import "BankrollSentinel/internal/model"

// Ranks is the career ladder, ordered by ascending MinProfit.
var Ranks = []model.CareerRank{
	{ID: "rookie", Name: "Rookie", MinProfit: 0, Color: "#94A3B8"},
	{ID: "apprentice", Name: "Apprentice", MinProfit: 100, Color: "#60A5FA"},
	{ID: "pro", Name: "Professional", MinProfit: 500, Color: "#34D399"},
	{ID: "elite", Name: "Elite Sniper", MinProfit: 2000, Color: "#C084FC"},
	{ID: "master", Name: "Bankroll Master", MinProfit: 5000, Color: "#EF4444"},
	{ID: "baron", Name: "Crash Baron", MinProfit: 10000, Color: "#FACC15"},
}

// Standing is where a lifetime profit sits on the ladder.
type Standing struct {
	Current  model.CareerRank
	Next     *model.CareerRank // nil at the top rank
	Profit   float64
	Progress float64 // percent toward Next, 100 at the top
	ToNext   float64 // profit still missing for Next
}

// Top reports whether the last rank has been reached.
func (s Standing) Top() bool { return s.Next == nil }

// Lookup returns the highest rank whose threshold is covered by
// lifetimeProfit. Profits below the first threshold stay on the first rank.
func Lookup(lifetimeProfit float64) Standing {
	idx := 0
	for i, r := range Ranks {
		if lifetimeProfit < r.MinProfit {
			break
		}
		idx = i
	}

	s := Standing{Current: Ranks[idx], Profit: lifetimeProfit, Progress: 100}
	if idx+1 < len(Ranks) {
		next := Ranks[idx+1]
		s.Next = &next
		span := next.MinProfit - s.Current.MinProfit
		s.Progress = clamp((lifetimeProfit-s.Current.MinProfit)/span*100, 0, 100)
		s.ToNext = next.MinProfit - lifetimeProfit
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
