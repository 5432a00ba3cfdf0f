package bankroll

import (
	"time"

	"BankrollSentinel/internal/model"
)

// LockResult is the outcome of evaluating today's play against the daily
// goal and stop-loss.
type LockResult struct {
	Status            model.LockStatus
	DailyProfit       float64
	StartOfDayCapital float64
	DailyGoal         float64
	DailyStopLoss     float64
	UnlockAt          time.Time
}

// DayRange returns local midnight of the day containing t and the following
// midnight, both in loc.
func DayRange(t time.Time, loc *time.Location) (start, end time.Time) {
	t = t.In(loc)
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DayKey formats the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// SessionsOn returns the sessions that ended on the calendar day containing t.
func SessionsOn(sessions []model.DailySession, t time.Time, loc *time.Location) []model.DailySession {
	start, end := DayRange(t, loc)
	var out []model.DailySession
	for _, s := range sessions {
		if !s.Date.Before(start) && s.Date.Before(end) {
			out = append(out, s)
		}
	}
	return out
}

// EvaluateLock decides whether play is blocked until the next local midnight.
// The day's opening capital is taken from opening when it was recorded today,
// otherwise it is derived from the current capital.
func EvaluateLock(sessions []model.DailySession, cfg model.BankrollConfig, opening *model.DayOpening, now time.Time, loc *time.Location) LockResult {
	if loc == nil {
		loc = time.Local
	}
	dailyProfit := 0.0
	for _, s := range SessionsOn(sessions, now, loc) {
		dailyProfit += s.Profit
	}

	startCapital := cfg.CurrentCapital - dailyProfit
	if opening != nil && opening.Date == DayKey(now, loc) {
		startCapital = opening.Balance
	}

	_, next := DayRange(now, loc)
	res := LockResult{
		DailyProfit:       dailyProfit,
		StartOfDayCapital: startCapital,
		DailyStopLoss:     -(startCapital * cfg.StopLossPercentage / 100),
		DailyGoal:         startCapital * cfg.GoalPercentage() / 100,
		UnlockAt:          next,
	}

	// Goal checked last: hitting both in one evaluation reports WIN.
	if dailyProfit <= res.DailyStopLoss {
		res.Status = model.LockLoss
	}
	if dailyProfit >= res.DailyGoal {
		res.Status = model.LockWin
	}
	return res
}

// TimeToUnlock is the countdown until the lock lifts; zero when unlocked.
func (r LockResult) TimeToUnlock(now time.Time) time.Duration {
	if !r.Status.Locked() {
		return 0
	}
	d := r.UnlockAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
