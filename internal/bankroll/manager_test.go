package bankroll

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"BankrollSentinel/internal/model"
)

const eps = 1e-9

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T, capital float64) (*Manager, *fakeClock) {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "state.json"), time.UTC)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	clock := &fakeClock{t: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)}
	m.SetClock(clock.now)

	cfg := model.DefaultConfig()
	cfg.InitialCapital = capital
	cfg.BetPercentage = 3.5
	cfg.DailyGoalPercentage = 5
	cfg.StopLossPercentage = 15
	if err := m.CompleteOnboarding(cfg); err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	return m, clock
}

func TestAddRound_AppliesProfitImmediately(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	before := m.State().Config.CurrentCapital

	profits := []float64{1.75, -3.5, 0.35, -3.5, 2.1}
	sum := 0.0
	for _, p := range profits {
		clock.advance(time.Minute)
		if err := m.AddRound(model.Round{BetAmount: 3.5, Profit: p}); err != nil {
			t.Fatalf("AddRound: %v", err)
		}
		sum += p
		got := m.State().Config.CurrentCapital
		if math.Abs(got-(before+sum)) > eps {
			t.Errorf("capital = %.4f, want %.4f", got, before+sum)
		}
	}
	if n := len(m.State().CurrentSessionRounds); n != len(profits) {
		t.Errorf("buffered rounds = %d, want %d", n, len(profits))
	}
}

func TestAddRound_Rejections(t *testing.T) {
	m, _ := newTestManager(t, 100)
	if err := m.AddRound(model.Round{BetAmount: 1, Profit: 1}); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("AddRound while idle: got %v, want ErrNoActiveSession", err)
	}
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	for _, bet := range []float64{0, -2, math.NaN()} {
		if err := m.AddRound(model.Round{BetAmount: bet}); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("bet %v: got %v, want ErrInvalidAmount", bet, err)
		}
	}
	if got := m.State().Config.CurrentCapital; got != 100 {
		t.Errorf("capital changed to %.2f after rejected rounds", got)
	}
}

func TestEndSession_FoldsRounds(t *testing.T) {
	m, clock := newTestManager(t, 250)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []float64{4.2, -8.75, 1.05} {
		clock.advance(90 * time.Second)
		if err := m.AddRound(model.Round{BetAmount: 8.75, Profit: p}); err != nil {
			t.Fatal(err)
		}
	}
	sess, err := m.EndSession()
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	sum := 0.0
	for _, r := range sess.RoundsDetail {
		sum += r.Profit
	}
	if math.Abs(sess.Profit-sum) > eps {
		t.Errorf("profit %.4f != sum of rounds %.4f", sess.Profit, sum)
	}
	if math.Abs(sess.EndBalance-sess.StartBalance-sess.Profit) > eps {
		t.Errorf("end-start = %.4f, profit = %.4f", sess.EndBalance-sess.StartBalance, sess.Profit)
	}
	if sess.StartBalance != 250 {
		t.Errorf("start balance = %.2f, want 250", sess.StartBalance)
	}
	if sess.Status != model.StatusLoss {
		t.Errorf("status = %s, want LOSS", sess.Status)
	}
	if sess.Rounds != 3 || sess.DurationSeconds != 270 {
		t.Errorf("rounds=%d duration=%d, want 3 and 270", sess.Rounds, sess.DurationSeconds)
	}

	st := m.State()
	if st.IsSessionActive || st.SessionStartTime != nil || len(st.CurrentSessionRounds) != 0 {
		t.Error("manager not reset to idle after EndSession")
	}
	if len(st.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(st.Sessions))
	}
}

func TestEndSession_Idle(t *testing.T) {
	m, _ := newTestManager(t, 100)
	before := m.State()
	if _, err := m.EndSession(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("got %v, want ErrNoActiveSession", err)
	}
	if after := m.State(); len(after.Sessions) != len(before.Sessions) {
		t.Error("EndSession while idle changed history")
	}
}

func TestStartSession_RejectsDoubleStart(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	first := *m.State().SessionStartTime
	if err := m.AddRound(model.Round{BetAmount: 1, Profit: 0.2}); err != nil {
		t.Fatal(err)
	}

	clock.advance(5 * time.Minute)
	if err := m.StartSession(); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second start: got %v, want ErrSessionActive", err)
	}
	st := m.State()
	if *st.SessionStartTime != first {
		t.Error("second start re-armed the timer")
	}
	if len(st.CurrentSessionRounds) != 1 {
		t.Error("second start cleared the round buffer")
	}
}

func TestScenario_GoalLocksDay(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []float64{2.00, 2.00, 1.50} {
		clock.advance(time.Minute)
		if err := m.AddRound(model.Round{BetAmount: 3.5, Profit: p}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.EndSession(); err != nil {
		t.Fatal(err)
	}

	lock := m.Lock()
	if math.Abs(lock.DailyGoal-5) > eps {
		t.Errorf("daily goal = %.2f, want 5.00", lock.DailyGoal)
	}
	if math.Abs(lock.DailyProfit-5.5) > eps {
		t.Errorf("daily profit = %.2f, want 5.50", lock.DailyProfit)
	}
	if lock.Status != model.LockWin {
		t.Fatalf("lock = %q, want WIN", lock.Status)
	}
	if err := m.StartSession(); !errors.Is(err, ErrDayLocked) {
		t.Errorf("start while locked: got %v, want ErrDayLocked", err)
	}

	// Unlocks at the next midnight.
	clock.t = lock.UnlockAt
	if got := m.Lock().Status; got != model.LockNone {
		t.Errorf("lock after midnight = %q, want none", got)
	}
	if err := m.StartSession(); err != nil {
		t.Errorf("start after midnight: %v", err)
	}
}

func TestDeposit_DoesNotCountAsProfit(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if _, err := m.Deposit(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero deposit: got %v, want ErrInvalidAmount", err)
	}
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRound(model.Round{BetAmount: 2, Profit: -2}); err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Minute)
	adj, err := m.Deposit(50)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if adj.Kind != model.AdjustmentDeposit || adj.BalanceAfter != 148 {
		t.Errorf("adjustment = %+v", adj)
	}

	sess, err := m.EndSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess.Profit != -2 || sess.StartBalance != 150 || sess.EndBalance != 148 {
		t.Errorf("session start=%.2f end=%.2f profit=%.2f, want 150/148/-2",
			sess.StartBalance, sess.EndBalance, sess.Profit)
	}

	st := m.State()
	total := st.Config.InitialCapital + st.LifetimeProfit()
	for _, a := range st.Adjustments {
		total += a.Amount
	}
	if math.Abs(total-st.Config.CurrentCapital) > eps {
		t.Errorf("capital %.2f does not reconcile with history %.2f", st.Config.CurrentCapital, total)
	}
}

func TestUpdateConfig(t *testing.T) {
	m, _ := newTestManager(t, 100)
	cfg := m.State().Config
	cfg.CurrentCapital = 80
	if err := m.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	st := m.State()
	if len(st.Adjustments) != 1 || st.Adjustments[0].Kind != model.AdjustmentOverride || st.Adjustments[0].Amount != -20 {
		t.Errorf("adjustments = %+v, want one -20 override", st.Adjustments)
	}

	tests := []struct {
		name   string
		mutate func(*model.BankrollConfig)
	}{
		{"zero initial capital", func(c *model.BankrollConfig) { c.InitialCapital = 0 }},
		{"negative capital", func(c *model.BankrollConfig) { c.CurrentCapital = -1 }},
		{"zero bet", func(c *model.BankrollConfig) { c.BetPercentage = 0 }},
		{"zero stop-loss", func(c *model.BankrollConfig) { c.StopLossPercentage = 0 }},
		{"target below one", func(c *model.BankrollConfig) { c.DefaultTargetMultiplier = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := m.State().Config
			tt.mutate(&bad)
			if err := m.UpdateConfig(bad); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRecordRound(t *testing.T) {
	m, _ := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	r, err := m.RecordRound(RoundInput{BetAmount: 10, Win: true, Strategy: model.StrategyTwoBets})
	if err != nil {
		t.Fatalf("RecordRound: %v", err)
	}
	// 0.6*10*1.20 + 0.4*10*2.00 - 10
	if math.Abs(r.Profit-5.2) > eps {
		t.Errorf("profit = %.4f, want 5.20", r.Profit)
	}
	if got := m.State().Config.CurrentCapital; math.Abs(got-105.2) > eps {
		t.Errorf("capital = %.4f, want 105.20", got)
	}
}

func TestClearHistory(t *testing.T) {
	m, _ := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.EndSession(); err != nil {
		t.Fatal(err)
	}
	if err := m.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	if n := len(m.State().Sessions); n != 0 {
		t.Errorf("sessions = %d after clear", n)
	}
}

func TestRequireOnboarded(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "state.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.RequireOnboarded(); !errors.Is(err, ErrNotOnboarded) {
		t.Errorf("got %v, want ErrNotOnboarded", err)
	}
}

// checkInvariants asserts that capital reconciles with the history and that
// every session's balances agree with its profit.
func checkInvariants(t *testing.T, st model.AppState) {
	t.Helper()
	total := st.Config.InitialCapital + st.LifetimeProfit()
	for _, a := range st.Adjustments {
		total += a.Amount
	}
	if st.IsSessionActive {
		for _, r := range st.CurrentSessionRounds {
			total += r.Profit
		}
	}
	if math.Abs(total-st.Config.CurrentCapital) > eps {
		t.Errorf("capital %.2f does not reconcile with history %.2f", st.Config.CurrentCapital, total)
	}
	for i, s := range st.Sessions {
		if math.Abs(s.EndBalance-s.StartBalance-s.Profit) > eps {
			t.Errorf("session %d: end-start = %.2f, profit = %.2f", i, s.EndBalance-s.StartBalance, s.Profit)
		}
	}
}

func TestStartSession_AfterMidnightSession(t *testing.T) {
	m, clock := newTestManager(t, 100)
	clock.t = time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	clock.advance(30 * time.Minute)
	if err := m.AddRound(model.Round{BetAmount: 14, Profit: -14}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.EndSession(); err != nil {
		t.Fatal(err)
	}

	clock.advance(10 * time.Minute)
	before := m.Lock()
	if before.Status != model.LockNone {
		t.Fatalf("lock before start = %q, want none", before.Status)
	}
	if err := m.StartSession(); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	after := m.Lock()

	if after.Status != before.Status ||
		math.Abs(after.StartOfDayCapital-before.StartOfDayCapital) > eps ||
		math.Abs(after.DailyStopLoss-before.DailyStopLoss) > eps {
		t.Errorf("lock changed on start: before %+v, after %+v", before, after)
	}
	if math.Abs(after.StartOfDayCapital-100) > eps {
		t.Errorf("start of day capital = %.2f, want 100", after.StartOfDayCapital)
	}
	if math.Abs(after.DailyProfit+14) > eps {
		t.Errorf("daily profit = %.2f, want -14", after.DailyProfit)
	}
	checkInvariants(t, m.State())
}

func TestStartSession_KeepsLockEvaluation(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if _, err := m.Deposit(20); err != nil {
		t.Fatal(err)
	}
	for _, profit := range []float64{-4, 3} {
		before := m.Lock()
		if err := m.StartSession(); err != nil {
			t.Fatal(err)
		}
		after := m.Lock()
		if after != before {
			t.Errorf("lock changed on start: before %+v, after %+v", before, after)
		}
		clock.advance(time.Minute)
		if err := m.AddRound(model.Round{BetAmount: 4, Profit: profit}); err != nil {
			t.Fatal(err)
		}
		if _, err := m.EndSession(); err != nil {
			t.Fatal(err)
		}
		clock.advance(time.Hour)
	}
	checkInvariants(t, m.State())
}

func TestCompleteOnboarding_DuringSession(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRound(model.Round{BetAmount: 2, Profit: 2}); err != nil {
		t.Fatal(err)
	}

	cfg := m.State().Config
	cfg.InitialCapital = 500
	if err := m.CompleteOnboarding(cfg); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("onboarding during a session: got %v, want ErrSessionActive", err)
	}
	if got := m.State().Config.CurrentCapital; got != 102 {
		t.Errorf("capital = %.2f after rejected onboarding, want 102", got)
	}

	clock.advance(time.Minute)
	if err := m.AddRound(model.Round{BetAmount: 1, Profit: 1}); err != nil {
		t.Fatal(err)
	}
	sess, err := m.EndSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess.StartBalance != 100 || sess.EndBalance != 103 || sess.Profit != 3 {
		t.Errorf("session start=%.2f end=%.2f profit=%.2f, want 100/103/3",
			sess.StartBalance, sess.EndBalance, sess.Profit)
	}
	checkInvariants(t, m.State())
}

func TestCompleteOnboarding_Rerun(t *testing.T) {
	m, _ := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRound(model.Round{BetAmount: 2, Profit: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.EndSession(); err != nil {
		t.Fatal(err)
	}

	cfg := m.State().Config
	cfg.InitialCapital = 500
	cfg.BetPercentage = 2
	if err := m.CompleteOnboarding(cfg); err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	st := m.State()
	if st.Config.InitialCapital != 100 || st.Config.CurrentCapital != 500 || st.Config.BetPercentage != 2 {
		t.Errorf("config = %+v, want initial 100, current 500, bet 2", st.Config)
	}
	if n := len(st.Adjustments); n != 1 || st.Adjustments[0].Kind != model.AdjustmentOverride || st.Adjustments[0].Amount != 398 {
		t.Errorf("adjustments = %+v, want one 398 override", st.Adjustments)
	}
	checkInvariants(t, st)
}

func TestUpdateConfig_InitialCapitalIsFixed(t *testing.T) {
	m, clock := newTestManager(t, 100)
	if err := m.StartSession(); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRound(model.Round{BetAmount: 3, Profit: -3}); err != nil {
		t.Fatal(err)
	}

	cfg := m.State().Config
	cfg.InitialCapital = 200
	if err := m.UpdateConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("initial capital edit: got %v, want ErrInvalidConfig", err)
	}
	if got := m.State().Config.InitialCapital; got != 100 {
		t.Errorf("initial capital = %.2f, want 100", got)
	}

	// A capital edit mid-session is an adjustment, not session profit.
	cfg = m.State().Config
	cfg.CurrentCapital = 120
	if err := m.UpdateConfig(cfg); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	checkInvariants(t, m.State())

	clock.advance(time.Minute)
	sess, err := m.EndSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess.Profit != -3 || sess.EndBalance != 120 || sess.StartBalance != 123 {
		t.Errorf("session start=%.2f end=%.2f profit=%.2f, want 123/120/-3",
			sess.StartBalance, sess.EndBalance, sess.Profit)
	}
	checkInvariants(t, m.State())
}
