package calculator

import (
	"errors"
	"math"

	"BankrollSentinel/internal/model"
)

// ProjectionDay is one day of a compound-growth simulation.
type ProjectionDay struct {
	Day    int
	Start  float64
	Profit float64
	Total  float64
}

// Projection is a day-by-day compound-growth series.
type Projection struct {
	Capital      float64
	Percent      float64
	FinalBalance float64
	TotalProfit  float64
	Days         []ProjectionDay
}

// CompoundProjection grows capital by percent every day for the given number
// of days: balance[i] = balance[i-1] * (1 + percent/100).
func CompoundProjection(capital, percent float64, days int) (Projection, error) {
	if days < 0 {
		return Projection{}, errors.New("days must not be negative")
	}
	if capital < 0 {
		return Projection{}, errors.New("capital must not be negative")
	}
	p := Projection{Capital: capital, Percent: percent, Days: make([]ProjectionDay, 0, days)}
	balance := capital
	for i := 1; i <= days; i++ {
		profit := balance * (percent / 100)
		p.Days = append(p.Days, ProjectionDay{Day: i, Start: balance, Profit: profit, Total: balance + profit})
		balance += profit
	}
	p.FinalBalance = balance
	p.TotalProfit = balance - capital
	return p, nil
}

// FutureValue is the closed form of CompoundProjection's final balance.
func FutureValue(capital, percent float64, days int) float64 {
	return capital * math.Pow(1+percent/100, float64(days))
}

// MilestoneDays are the horizons shown next to a projection.
var MilestoneDays = []int{7, 15, 30, 90, 180, 365}

// Milestone is the projected balance after a fixed number of days.
type Milestone struct {
	Days    int
	Balance float64
}

// Milestones evaluates FutureValue at every MilestoneDays horizon.
func Milestones(capital, percent float64) []Milestone {
	out := make([]Milestone, len(MilestoneDays))
	for i, d := range MilestoneDays {
		out[i] = Milestone{Days: d, Balance: FutureValue(capital, percent, d)}
	}
	return out
}

// ForecastDays is the horizon of the realistic projection.
const ForecastDays = 30

// Forecast compounds the historical average session yield forward.
type Forecast struct {
	Sessions     int     // sessions that contributed to the average
	AverageYield float64 // percent per session
	Projection   Projection
}

// RealisticProjection averages profit/startBalance over every session with a
// positive start balance and compounds that rate from currentCapital for
// ForecastDays days.
func RealisticProjection(sessions []model.DailySession, currentCapital float64) (Forecast, error) {
	sum, n := 0.0, 0
	for _, s := range sessions {
		if s.StartBalance <= 0 {
			continue
		}
		sum += s.Profit / s.StartBalance
		n++
	}
	if n == 0 {
		return Forecast{}, errors.New("no sessions with a positive start balance")
	}
	avg := sum / float64(n) * 100
	proj, err := CompoundProjection(math.Max(currentCapital, 0), avg, ForecastDays)
	if err != nil {
		return Forecast{}, err
	}
	return Forecast{Sessions: n, AverageYield: avg, Projection: proj}, nil
}
