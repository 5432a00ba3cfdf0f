package scheduler

import (
	"bytes"
	"context"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/coach"
	"BankrollSentinel/internal/model"
	"BankrollSentinel/internal/recorder"
)

type fakeNotifier struct{ sent []string }

func (f *fakeNotifier) Send(text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return f.Send(text)
}

type fakeRecorder struct {
	recorder.NoopRecorder
	sessions  []string
	summaries []recorder.DailySummary
	locks     []recorder.LockEvent
}

func (f *fakeRecorder) RecordSession(s *model.DailySession) error {
	f.sessions = append(f.sessions, s.ID)
	return nil
}

func (f *fakeRecorder) RecordDailySummary(sum *recorder.DailySummary) error {
	f.summaries = append(f.summaries, *sum)
	return nil
}

func (f *fakeRecorder) RecordLockEvent(evt *recorder.LockEvent) error {
	f.locks = append(f.locks, *evt)
	return nil
}

type testEnv struct {
	sched *Scheduler
	bm    *bankroll.Manager
	n     *fakeNotifier
	rec   *fakeRecorder
	now   time.Time
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bm, err := bankroll.NewManager(filepath.Join(t.TempDir(), "state.json"), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{bm: bm, n: &fakeNotifier{}, rec: &fakeRecorder{}, now: time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC)}
	bm.SetClock(func() time.Time { return env.now })

	cfg := model.DefaultConfig()
	cfg.InitialCapital = 100
	if err := bm.CompleteOnboarding(cfg); err != nil {
		t.Fatal(err)
	}
	env.sched = NewScheduler(context.Background(), bm, env.n, env.rec,
		coach.New(rand.New(rand.NewPCG(1, 1))), Options{Currency: "$", SessionLimit: 30 * time.Minute})
	return env
}

func TestWatchdog_OvertimeAlertOnce(t *testing.T) {
	env := newTestEnv(t)
	if err := env.bm.StartSession(); err != nil {
		t.Fatal(err)
	}
	env.advance(10 * time.Minute)
	env.sched.watchdogTask()
	if len(env.n.sent) != 0 {
		t.Fatalf("alert before the limit: %v", env.n.sent)
	}

	env.advance(25 * time.Minute)
	env.sched.watchdogTask()
	env.advance(time.Minute)
	env.sched.watchdogTask()
	if len(env.n.sent) != 1 || !strings.Contains(env.n.sent[0], "Time's up") {
		t.Fatalf("sent = %v, want one overtime alert", env.n.sent)
	}
}

func TestWatchdog_DebriefsEndedSessions(t *testing.T) {
	env := newTestEnv(t)
	if err := env.bm.StartSession(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []float64{3, 3} {
		if err := env.bm.AddRound(model.Round{BetAmount: 3, Win: true, Profit: p}); err != nil {
			t.Fatal(err)
		}
	}
	sess, err := env.bm.EndSession()
	if err != nil {
		t.Fatal(err)
	}

	env.sched.watchdogTask()
	env.sched.watchdogTask()

	if len(env.rec.sessions) != 1 || env.rec.sessions[0] != sess.ID {
		t.Errorf("recorded sessions = %v", env.rec.sessions)
	}
	if len(env.n.sent) != 1 || !strings.Contains(env.n.sent[0], "Session debrief") {
		t.Fatalf("sent = %v, want one debrief", env.n.sent)
	}
	if !strings.Contains(env.n.sent[0], "Goal hit") {
		t.Errorf("debrief does not mention the lock:\n%s", env.n.sent[0])
	}
	if len(env.rec.locks) != 1 || env.rec.locks[0].Status != model.LockWin {
		t.Errorf("lock events = %+v", env.rec.locks)
	}
}

func playSession(t *testing.T, bm *bankroll.Manager, profit float64) model.DailySession {
	t.Helper()
	if err := bm.StartSession(); err != nil {
		t.Fatal(err)
	}
	if err := bm.AddRound(model.Round{BetAmount: 1, Win: profit > 0, Profit: profit}); err != nil {
		t.Fatal(err)
	}
	sess, err := bm.EndSession()
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func countDebriefs(sent []string) int {
	n := 0
	for _, text := range sent {
		if strings.Contains(text, "Session debrief") {
			n++
		}
	}
	return n
}

func TestWatchdog_HistoryReplaced(t *testing.T) {
	env := newTestEnv(t)
	first := playSession(t, env.bm, 1)
	env.sched.watchdogTask()

	// Clear, then play a new session so the count is back where it was.
	if err := env.bm.ClearHistory(); err != nil {
		t.Fatal(err)
	}
	env.advance(time.Minute)
	second := playSession(t, env.bm, -1)
	env.advance(time.Minute)
	env.sched.watchdogTask()

	if got := countDebriefs(env.n.sent); got != 2 {
		t.Fatalf("debriefs = %d, want 2", got)
	}
	if len(env.rec.sessions) != 2 || env.rec.sessions[0] != first.ID || env.rec.sessions[1] != second.ID {
		t.Fatalf("recorded sessions = %v", env.rec.sessions)
	}

	// Import a larger, older history: it is recorded but not debriefed.
	old, err := bankroll.NewManager(filepath.Join(t.TempDir(), "old.json"), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	oldNow := env.now.AddDate(0, 0, -7)
	old.SetClock(func() time.Time { return oldNow })
	cfg := model.DefaultConfig()
	cfg.InitialCapital = 100
	if err := old.CompleteOnboarding(cfg); err != nil {
		t.Fatal(err)
	}
	for _, p := range []float64{1, 1, -1} {
		playSession(t, old, p)
		oldNow = oldNow.Add(time.Hour)
	}
	var buf bytes.Buffer
	if err := old.Export(&buf); err != nil {
		t.Fatal(err)
	}
	if err := env.bm.Import(&buf); err != nil {
		t.Fatal(err)
	}

	env.advance(time.Minute)
	env.sched.watchdogTask()
	env.sched.watchdogTask()

	if got := countDebriefs(env.n.sent); got != 2 {
		t.Errorf("debriefs after import = %d, want still 2", got)
	}
	if len(env.rec.sessions) != 5 {
		t.Errorf("recorded sessions = %d, want 5", len(env.rec.sessions))
	}
}

func TestMidnightTask(t *testing.T) {
	env := newTestEnv(t)
	if err := env.bm.StartSession(); err != nil {
		t.Fatal(err)
	}
	if err := env.bm.AddRound(model.Round{BetAmount: 15, Profit: -15}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.bm.EndSession(); err != nil {
		t.Fatal(err)
	}
	if env.bm.Lock().Status != model.LockLoss {
		t.Fatal("expected a stop-loss lock")
	}

	env.now = time.Date(2024, 7, 2, 0, 0, 5, 0, time.UTC)
	env.sched.midnightTask()

	if len(env.rec.summaries) != 1 {
		t.Fatalf("summaries = %+v", env.rec.summaries)
	}
	sum := env.rec.summaries[0]
	if sum.Day != "2024-07-01" || sum.Sessions != 1 || sum.Profit != -15 || sum.LockStatus != model.LockLoss {
		t.Errorf("summary = %+v", sum)
	}
	if sum.StartCapital != 100 || sum.EndCapital != 85 {
		t.Errorf("capital %.2f -> %.2f, want 100 -> 85", sum.StartCapital, sum.EndCapital)
	}
	if len(env.n.sent) != 1 || !strings.Contains(env.n.sent[0], "play unlocked") {
		t.Errorf("sent = %v", env.n.sent)
	}
	if env.bm.Lock().Status.Locked() {
		t.Error("still locked after midnight")
	}
}

func TestHandleCommand(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		cmd  string
		want string
	}{
		{"/status", "Bankroll"},
		{"/STATUS@GuardBot", "Bankroll"},
		{"/rank", "Rookie"},
		{"/radar", "No rounds"},
		{"/forecast", "Not enough history"},
		{"/coach", "NERVES OF STEEL"},
		{"hello", "Commands"},
	}
	for _, tt := range tests {
		if got := env.sched.HandleCommand(tt.cmd); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.cmd, got, tt.want)
		}
	}
}

func TestWeeklyTask(t *testing.T) {
	env := newTestEnv(t)
	env.sched.weeklyTask()
	if len(env.n.sent) != 1 || !strings.Contains(env.n.sent[0], "Pattern radar") {
		t.Errorf("sent = %v", env.n.sent)
	}
}

func TestRegisterAll(t *testing.T) {
	env := newTestEnv(t)
	if err := env.sched.RegisterAll("5 0 0 * * *", "0 * * * * *", "0 0 10 * * 1"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(env.sched.Cron.Entries()); n != 3 {
		t.Errorf("entries = %d, want 3", n)
	}
	if err := env.sched.RegisterAll("bad", "0 * * * * *", "0 0 10 * * 1"); err == nil {
		t.Error("expected error for a bad spec")
	}
}
