package bankroll

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"BankrollSentinel/internal/model"

	"github.com/google/uuid"
)

// Manager owns the application state and persists it after every change.
type Manager struct {
	mu        sync.Mutex
	state     *model.AppState
	filePath  string
	loc       *time.Location
	now       func() time.Time
	recovered bool
}

// NewManager creates a Manager, loading or initializing state from disk.
// Calendar days are evaluated in loc (time.Local when nil).
func NewManager(filePath string, loc *time.Location) (*Manager, error) {
	if loc == nil {
		loc = time.Local
	}
	m := &Manager{filePath: filePath, loc: loc, now: time.Now}
	if err := m.load(); err != nil {
		return nil, err
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetClock replaces the time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Location is the zone calendar days are evaluated in.
func (m *Manager) Location() *time.Location { return m.loc }

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

// Recovered reports whether the last load found a corrupt state file and
// fell back to defaults.
func (m *Manager) Recovered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recovered
}

// Reload re-reads the state file, picking up changes made by other processes.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// State returns a deep copy of the current state.
func (m *Manager) State() model.AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// RequireOnboarded fails with ErrNotOnboarded until onboarding is done.
func (m *Manager) RequireOnboarded() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.HasCompletedOnboarding {
		return ErrNotOnboarded
	}
	return nil
}

// CompleteOnboarding installs the configuration chosen in the onboarding
// wizard. The first run sets both initial and current capital. Running it
// again keeps the initial capital and logs the move to the new capital as a
// manual override. It is refused while a session is active.
func (m *Manager) CompleteOnboarding(cfg model.BankrollConfig) error {
	capital := cfg.InitialCapital
	cfg.CurrentCapital = capital
	if cfg.StrategyDefaults == nil {
		cfg.StrategyDefaults = model.DefaultConfig().StrategyDefaults
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.IsSessionActive {
		return ErrSessionActive
	}
	if m.state.HasCompletedOnboarding {
		cfg.InitialCapital = m.state.Config.InitialCapital
		if delta := capital - m.state.Config.CurrentCapital; delta != 0 {
			m.adjust(model.AdjustmentOverride, delta, capital, "onboarding rerun")
		}
	}
	m.state.Config = cfg
	m.state.HasCompletedOnboarding = true
	return m.save()
}

// UpdateConfig replaces the configuration. A changed current capital is
// logged as a manual override instead of being counted as profit. The
// initial capital is fixed by onboarding and cannot be edited here.
func (m *Manager) UpdateConfig(cfg model.BankrollConfig) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.InitialCapital != m.state.Config.InitialCapital {
		return fmt.Errorf("%w: initial capital is set by onboarding", ErrInvalidConfig)
	}
	if delta := cfg.CurrentCapital - m.state.Config.CurrentCapital; delta != 0 {
		m.adjust(model.AdjustmentOverride, delta, cfg.CurrentCapital, "manual capital edit")
	}
	m.state.Config = cfg
	return m.save()
}

// Deposit injects external capital.
func (m *Manager) Deposit(amount float64) (model.CapitalAdjustment, error) {
	if !validAmount(amount) {
		return model.CapitalAdjustment{}, fmt.Errorf("%w: deposit %v", ErrInvalidAmount, amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	balance := m.state.Config.CurrentCapital + amount
	adj := m.adjust(model.AdjustmentDeposit, amount, balance, "")
	m.state.Config.CurrentCapital = balance
	return adj, m.save()
}

// adjust logs a non-gambling capital change. Changes during a session also
// move the session's opening balance so they never show up as session profit.
func (m *Manager) adjust(kind model.AdjustmentKind, amount, balanceAfter float64, note string) model.CapitalAdjustment {
	adj := model.CapitalAdjustment{
		ID:           uuid.NewString(),
		Timestamp:    m.now().UnixMilli(),
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Note:         note,
	}
	m.state.Adjustments = append(m.state.Adjustments, adj)
	if m.state.IsSessionActive {
		m.state.SessionStartBalance += amount
	}
	return adj
}

// StartSession opens a new session. It fails while another session is
// active or while today's play is locked.
func (m *Manager) StartSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.IsSessionActive {
		return ErrSessionActive
	}
	now := m.now()
	if lock := m.evaluate(now); lock.Status.Locked() {
		return fmt.Errorf("%w (%s) until %s", ErrDayLocked, lock.Status, lock.UnlockAt.Format("2006-01-02 15:04"))
	}

	start := now.UnixMilli()
	capital := m.state.Config.CurrentCapital
	m.state.IsSessionActive = true
	m.state.SessionStartTime = &start
	m.state.SessionStartBalance = capital
	m.state.CurrentSessionRounds = []model.Round{}
	if day := DayKey(now, m.loc); m.state.DayOpening == nil || m.state.DayOpening.Date != day {
		// Sessions that already ended today, including one that started
		// yesterday, are part of the day's result and not of its opening.
		opening := capital
		for _, s := range SessionsOn(m.state.Sessions, now, m.loc) {
			opening -= s.Profit
		}
		m.state.DayOpening = &model.DayOpening{Date: day, Balance: opening}
	}
	return m.save()
}

// AddRound appends a round to the active session and applies its profit to
// the current capital immediately.
func (m *Manager) AddRound(r model.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsSessionActive {
		return ErrNoActiveSession
	}
	if !validAmount(r.BetAmount) {
		return fmt.Errorf("%w: bet %v", ErrInvalidAmount, r.BetAmount)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = m.now().UnixMilli()
	}
	m.state.CurrentSessionRounds = append(m.state.CurrentSessionRounds, r)
	m.state.Config.CurrentCapital += r.Profit
	return m.save()
}

// RecordRound builds a round from the player's input and adds it.
func (m *Manager) RecordRound(in RoundInput) (model.Round, error) {
	m.mu.Lock()
	cfg, now := m.state.Config, m.now()
	m.mu.Unlock()

	r, err := NewRound(in, cfg, now)
	if err != nil {
		return model.Round{}, err
	}
	return r, m.AddRound(r)
}

// EndSession folds the buffered rounds into a DailySession and appends it to
// the history.
func (m *Manager) EndSession() (model.DailySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsSessionActive || m.state.SessionStartTime == nil {
		return model.DailySession{}, ErrNoActiveSession
	}
	now := m.now()

	profit := 0.0
	for _, r := range m.state.CurrentSessionRounds {
		profit += r.Profit
	}
	endBalance := m.state.Config.CurrentCapital
	startBalance := m.state.SessionStartBalance
	if startBalance == 0 {
		// States written before opening balances were stored.
		startBalance = endBalance - profit
	}

	session := model.DailySession{
		ID:              uuid.NewString(),
		Date:            now.UTC(),
		StartBalance:    startBalance,
		EndBalance:      endBalance,
		Profit:          profit,
		DurationSeconds: (now.UnixMilli() - *m.state.SessionStartTime) / 1000,
		Rounds:          len(m.state.CurrentSessionRounds),
		Status:          model.StatusForProfit(profit),
		RoundsDetail:    append([]model.Round{}, m.state.CurrentSessionRounds...),
	}

	m.state.Sessions = append(m.state.Sessions, session)
	m.state.IsSessionActive = false
	m.state.SessionStartTime = nil
	m.state.SessionStartBalance = 0
	m.state.CurrentSessionRounds = []model.Round{}
	return session, m.save()
}

// ClearHistory drops every recorded session.
func (m *Manager) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Sessions = []model.DailySession{}
	return m.save()
}

// Lock evaluates today's lock status.
func (m *Manager) Lock() LockResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluate(m.now())
}

// Progress reports the active session against its limits.
func (m *Manager) Progress(maxDuration time.Duration) SessionProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Progress(m.state, m.now(), maxDuration)
}

// Export writes the persisted document to w.
func (m *Manager) Export(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Export(w, m.state)
}

// ExportFile writes a dated backup into dir.
func (m *Manager) ExportFile(dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ExportFile(dir, m.state, m.now().In(m.loc))
}

// Import replaces the whole state with a backup. The current state is left
// untouched when the backup is invalid.
func (m *Manager) Import(r io.Reader) error {
	state, err := DecodeBackup(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return m.save()
}

func (m *Manager) evaluate(now time.Time) LockResult {
	return EvaluateLock(m.state.Sessions, m.state.Config, m.state.DayOpening, now, m.loc)
}

func (m *Manager) load() error {
	state, err := LoadState(m.filePath)
	if errors.Is(err, ErrCorruptState) {
		log.Printf("[WARN] %v; reverting to defaults", err)
		if dst, qerr := quarantine(m.filePath, m.now()); qerr != nil {
			log.Printf("[ERROR] keep corrupt state file: %v", qerr)
		} else {
			log.Printf("[WARN] corrupt state kept at %s", dst)
		}
		m.recovered = true
		err = nil
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	m.state = state
	return nil
}

func (m *Manager) save() error {
	if err := SaveState(m.filePath, m.state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func validateConfig(cfg model.BankrollConfig) error {
	switch {
	case !validAmount(cfg.InitialCapital):
		return fmt.Errorf("%w: initial capital must be positive", ErrInvalidConfig)
	case cfg.CurrentCapital < 0:
		return fmt.Errorf("%w: current capital cannot be negative", ErrInvalidConfig)
	case cfg.BetPercentage <= 0 || cfg.BetPercentage > 100:
		return fmt.Errorf("%w: bet percentage must be in (0, 100]", ErrInvalidConfig)
	case cfg.StopLossPercentage <= 0 || cfg.StopLossPercentage > 100:
		return fmt.Errorf("%w: stop-loss percentage must be in (0, 100]", ErrInvalidConfig)
	case cfg.StopWinPercentage < 0 || cfg.DailyGoalPercentage < 0:
		return fmt.Errorf("%w: percentages cannot be negative", ErrInvalidConfig)
	case cfg.DefaultTargetMultiplier != 0 && cfg.DefaultTargetMultiplier < 1:
		return fmt.Errorf("%w: target multiplier must be at least 1.00", ErrInvalidConfig)
	}
	return nil
}
