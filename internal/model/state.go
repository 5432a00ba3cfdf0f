package model

// AdjustmentKind classifies a manual capital change.
type AdjustmentKind string

const (
	AdjustmentDeposit  AdjustmentKind = "DEPOSIT"
	AdjustmentOverride AdjustmentKind = "MANUAL_OVERRIDE"
)

// CapitalAdjustment records a capital change that is not gambling profit.
type CapitalAdjustment struct {
	ID           string         `json:"id"`
	Timestamp    int64          `json:"timestamp"` // unix ms
	Kind         AdjustmentKind `json:"kind"`
	Amount       float64        `json:"amount"`
	BalanceAfter float64        `json:"balanceAfter"`
	Note         string         `json:"note,omitempty"`
}

// DayOpening is the capital observed when the first session of a day started.
type DayOpening struct {
	Date    string  `json:"date"` // YYYY-MM-DD in the configured zone
	Balance float64 `json:"balance"`
}

// AppState is the whole persisted document.
type AppState struct {
	Config                 BankrollConfig      `json:"config"`
	Sessions               []DailySession      `json:"sessions"`
	CurrentSessionRounds   []Round             `json:"currentSessionRounds"`
	IsSessionActive        bool                `json:"isSessionActive"`
	SessionStartTime       *int64              `json:"sessionStartTime"` // unix ms
	SessionStartBalance    float64             `json:"sessionStartBalance,omitempty"`
	DayOpening             *DayOpening         `json:"dayOpening,omitempty"`
	Adjustments            []CapitalAdjustment `json:"adjustments"`
	HasCompletedOnboarding bool                `json:"hasCompletedOnboarding"`
}

// InitialState returns the state used before anything has been saved.
func InitialState() *AppState {
	s := &AppState{Config: DefaultConfig()}
	s.Normalize()
	return s
}

// Normalize replaces nil collections with empty ones so that a saved and
// reloaded state compares equal to the original.
func (s *AppState) Normalize() {
	if s.Sessions == nil {
		s.Sessions = []DailySession{}
	}
	for i := range s.Sessions {
		if s.Sessions[i].RoundsDetail == nil {
			s.Sessions[i].RoundsDetail = []Round{}
		}
	}
	if s.CurrentSessionRounds == nil {
		s.CurrentSessionRounds = []Round{}
	}
	if s.Adjustments == nil {
		s.Adjustments = []CapitalAdjustment{}
	}
	s.Config.normalizeKeys()
}

// Clone returns a deep copy.
func (s *AppState) Clone() AppState {
	out := *s
	out.Sessions = make([]DailySession, len(s.Sessions))
	for i, sess := range s.Sessions {
		sess.RoundsDetail = append([]Round{}, sess.RoundsDetail...)
		out.Sessions[i] = sess
	}
	out.CurrentSessionRounds = append([]Round{}, s.CurrentSessionRounds...)
	out.Adjustments = append([]CapitalAdjustment{}, s.Adjustments...)
	if s.SessionStartTime != nil {
		v := *s.SessionStartTime
		out.SessionStartTime = &v
	}
	if s.DayOpening != nil {
		d := *s.DayOpening
		out.DayOpening = &d
	}
	if s.Config.StrategyDefaults != nil {
		out.Config.StrategyDefaults = make(map[string]float64, len(s.Config.StrategyDefaults))
		for k, v := range s.Config.StrategyDefaults {
			out.Config.StrategyDefaults[k] = v
		}
	}
	return out
}

// LifetimeProfit sums the profit of every recorded session.
func (s *AppState) LifetimeProfit() float64 {
	total := 0.0
	for _, sess := range s.Sessions {
		total += sess.Profit
	}
	return total
}

// LastSession returns the most recent session, if any.
func (s *AppState) LastSession() (DailySession, bool) {
	if len(s.Sessions) == 0 {
		return DailySession{}, false
	}
	return s.Sessions[len(s.Sessions)-1], true
}
