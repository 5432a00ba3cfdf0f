package bankroll

import "errors"

var (
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoActiveSession = errors.New("no active session")
	ErrDayLocked       = errors.New("play is locked for today")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidConfig   = errors.New("invalid bankroll configuration")
	ErrNotOnboarded    = errors.New("onboarding not completed")
	ErrCorruptState    = errors.New("saved state is corrupt")
	ErrInvalidBackup   = errors.New("invalid backup: expected a config object and a sessions array")
)
