package calculator

import (
	"math"

	"BankrollSentinel/internal/model"
)

// Debrief summarises the rounds of one session.
type Debrief struct {
	Rounds        int
	Wins          int
	Losses        int
	WinRate       float64
	GrossWin      float64
	GrossLoss     float64 // absolute value
	ProfitFactor  float64
	NetProfit     float64
	LargestWin    float64
	LargestLoss   float64 // absolute value
	MaxWinStreak  int
	MaxLossStreak int
	AllIns        []int // indexes of rounds staked with (almost) the whole balance
}

// BuildDebrief scans the rounds once. startBalance is the balance the session
// opened with and is used to spot all-in bets.
func BuildDebrief(rounds []model.Round, startBalance float64) Debrief {
	var d Debrief
	var winRun, lossRun int
	balance := startBalance
	for i, r := range rounds {
		d.Rounds++
		if isAllIn(r.BetAmount, balance) {
			d.AllIns = append(d.AllIns, i)
		}
		balance += r.Profit

		if r.Profit > 0 {
			d.GrossWin += r.Profit
			d.LargestWin = math.Max(d.LargestWin, r.Profit)
		} else if r.Profit < 0 {
			d.GrossLoss += -r.Profit
			d.LargestLoss = math.Max(d.LargestLoss, -r.Profit)
		}

		if r.Win {
			d.Wins++
			winRun++
			lossRun = 0
		} else {
			d.Losses++
			lossRun++
			winRun = 0
		}
		d.MaxWinStreak = max(d.MaxWinStreak, winRun)
		d.MaxLossStreak = max(d.MaxLossStreak, lossRun)
	}
	if d.Rounds > 0 {
		d.WinRate = float64(d.Wins) / float64(d.Rounds) * 100
	}
	d.NetProfit = d.GrossWin - d.GrossLoss
	d.ProfitFactor = ProfitFactor(d.GrossWin, d.GrossLoss)
	return d
}

// ProfitFactor is grossWin / grossLoss, or grossWin when nothing was lost.
func ProfitFactor(grossWin, grossLoss float64) float64 {
	if grossLoss == 0 {
		return grossWin
	}
	return grossWin / math.Abs(grossLoss)
}

func isAllIn(bet, balance float64) bool {
	if balance <= 0 {
		return false
	}
	return math.Abs(bet-balance) < 0.5 || bet >= balance*0.99
}
