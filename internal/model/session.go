package model

import "time"

// SessionStatus summarises a finished session by the sign of its profit.
type SessionStatus string

const (
	StatusWin       SessionStatus = "WIN"
	StatusLoss      SessionStatus = "LOSS"
	StatusBreakEven SessionStatus = "BREAK_EVEN"
)

// StatusForProfit maps a profit to its session status.
func StatusForProfit(profit float64) SessionStatus {
	switch {
	case profit > 0:
		return StatusWin
	case profit < 0:
		return StatusLoss
	default:
		return StatusBreakEven
	}
}

// Round is one resolved bet.
type Round struct {
	ID         string   `json:"id"`
	Timestamp  int64    `json:"timestamp"` // unix ms
	BetAmount  float64  `json:"betAmount"`
	Multiplier float64  `json:"multiplier"`
	Win        bool     `json:"win"`
	Profit     float64  `json:"profit"`
	Strategy   Strategy `json:"strategy"`
}

// Time returns the round timestamp as a time.Time.
func (r Round) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// DailySession is the immutable summary of a finished session.
type DailySession struct {
	ID              string        `json:"id"`
	Date            time.Time     `json:"date"`
	StartBalance    float64       `json:"startBalance"`
	EndBalance      float64       `json:"endBalance"`
	Profit          float64       `json:"profit"`
	DurationSeconds int64         `json:"durationSeconds"`
	Rounds          int           `json:"rounds"`
	Status          SessionStatus `json:"status"`
	RoundsDetail    []Round       `json:"roundsDetail"`
}
