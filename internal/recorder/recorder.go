package recorder

import "BankrollSentinel/internal/model"

// DailySummary is the closing snapshot of one calendar day.
type DailySummary struct {
	Day          string // YYYY-MM-DD in the configured zone
	Sessions     int
	Rounds       int
	Profit       float64
	StartCapital float64
	EndCapital   float64
	LockStatus   model.LockStatus
}

// LockEvent records the moment a day became locked.
type LockEvent struct {
	Day         string
	Status      model.LockStatus
	DailyProfit float64
	Threshold   float64 // goal for WIN, stop-loss for LOSS
}

// Recorder keeps an append-only ledger of finished play for later analysis.
type Recorder interface {
	RecordSession(s *model.DailySession) error
	RecordAdjustment(adj *model.CapitalAdjustment) error
	RecordDailySummary(sum *DailySummary) error
	RecordLockEvent(evt *LockEvent) error
	Close() error
}
