package model

// LockStatus tells whether further play is blocked for the rest of the day.
type LockStatus string

const (
	LockNone LockStatus = ""
	LockWin  LockStatus = "WIN"
	LockLoss LockStatus = "LOSS"
)

// Locked reports whether a new session may not be started.
func (l LockStatus) Locked() bool { return l != LockNone }
