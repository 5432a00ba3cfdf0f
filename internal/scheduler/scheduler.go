package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/calculator"
	"BankrollSentinel/internal/coach"
	"BankrollSentinel/internal/model"
	"BankrollSentinel/internal/notifier"
	"BankrollSentinel/internal/rank"
	"BankrollSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Options carries the display and limit settings used by the jobs.
type Options struct {
	Currency     string
	SessionLimit time.Duration
}

// Scheduler manages all cron tasks and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Bankroll *bankroll.Manager
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Coach    *coach.Coach
	Opts     Options
	Ctx      context.Context

	mu           sync.Mutex
	alertedStart int64           // start time of the session already warned about overtime
	seen         map[string]bool // ids of sessions already recorded
	lastTick     time.Time       // sessions that ended before this are not debriefed
	lockedDay    string          // day whose lock was already announced
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, bm *bankroll.Manager, n notifier.Notifier, rec recorder.Recorder, c *coach.Coach, opts Options) *Scheduler {
	if opts.SessionLimit <= 0 {
		opts.SessionLimit = bankroll.MaxSessionDuration
	}
	st := bm.State()
	seen := make(map[string]bool, len(st.Sessions))
	for _, sess := range st.Sessions {
		seen[sess.ID] = true
	}
	s := &Scheduler{
		Cron:         cron.New(cron.WithSeconds(), cron.WithLocation(bm.Location())),
		Bankroll:     bm,
		Notifier:     n,
		Recorder:     rec,
		Coach:        c,
		Opts:         opts,
		Ctx:          ctx,
		seen:         seen,
		lastTick:     bm.Now(),
	}
	if lock := bm.Lock(); lock.Status.Locked() {
		s.lockedDay = bankroll.DayKey(bm.Now(), bm.Location())
	}
	return s
}

// RegisterAll registers the midnight, watchdog and weekly tasks.
func (s *Scheduler) RegisterAll(midnightCron, watchdogCron, weeklyCron string) error {
	if _, err := s.Cron.AddFunc(midnightCron, s.midnightTask); err != nil {
		return fmt.Errorf("register midnight task: %w", err)
	}
	if _, err := s.Cron.AddFunc(watchdogCron, s.watchdogTask); err != nil {
		return fmt.Errorf("register watchdog task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// reload picks up changes the CLI wrote to the state file.
func (s *Scheduler) reload() bool {
	if err := s.Bankroll.Reload(); err != nil {
		log.Printf("[ERROR] reload state: %v", err)
		return false
	}
	return true
}

// midnightTask closes the previous day: it records a summary and announces
// that play is unlocked again.
func (s *Scheduler) midnightTask() {
	log.Println("[INFO] running midnight task")
	if !s.reload() {
		return
	}
	loc := s.Bankroll.Location()
	start, _ := bankroll.DayRange(s.Bankroll.Now(), loc)
	lastMoment := start.Add(-time.Nanosecond)
	day := bankroll.DayKey(lastMoment, loc)

	st := s.Bankroll.State()
	sessions := bankroll.SessionsOn(st.Sessions, lastMoment, loc)
	lock := bankroll.EvaluateLock(st.Sessions, st.Config, st.DayOpening, lastMoment, loc)

	sum := &recorder.DailySummary{
		Day:          day,
		Sessions:     len(sessions),
		Profit:       lock.DailyProfit,
		StartCapital: lock.StartOfDayCapital,
		EndCapital:   lock.StartOfDayCapital + lock.DailyProfit,
		LockStatus:   lock.Status,
	}
	for _, sess := range sessions {
		sum.Rounds += sess.Rounds
	}
	if err := s.Recorder.RecordDailySummary(sum); err != nil {
		log.Printf("[ERROR] record daily summary: %v", err)
	}

	s.mu.Lock()
	s.lockedDay = ""
	s.mu.Unlock()

	s.trySend(notifier.FormatDaySummary(s.Opts.Currency, day, sessions, lock))
}

// watchdogTask records unseen sessions, debriefs those ended since the last
// run, announces a new lock and warns once per session when it runs past the
// limit.
func (s *Scheduler) watchdogTask() {
	if !s.reload() {
		return
	}
	st := s.Bankroll.State()
	now := s.Bankroll.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	since := s.lastTick
	s.lastTick = now
	for _, sess := range st.Sessions {
		if s.seen[sess.ID] {
			continue
		}
		s.seen[sess.ID] = true
		if err := s.Recorder.RecordSession(&sess); err != nil {
			log.Printf("[ERROR] record session: %v", err)
		}
		// Imported history goes to the ledger without a debrief.
		if sess.Date.Before(since) {
			continue
		}
		d := calculator.BuildDebrief(sess.RoundsDetail, sess.StartBalance)
		s.trySend(notifier.FormatDebrief(s.Opts.Currency, sess, d, s.Bankroll.Lock(), now))
	}

	lock := s.Bankroll.Lock()
	day := bankroll.DayKey(now, s.Bankroll.Location())
	if lock.Status.Locked() && s.lockedDay != day {
		s.lockedDay = day
		threshold := lock.DailyGoal
		if lock.Status == model.LockLoss {
			threshold = lock.DailyStopLoss
		}
		if err := s.Recorder.RecordLockEvent(&recorder.LockEvent{
			Day: day, Status: lock.Status, DailyProfit: lock.DailyProfit, Threshold: threshold,
		}); err != nil {
			log.Printf("[ERROR] record lock event: %v", err)
		}
		log.Printf("[INFO] day %s locked: %s", day, lock.Status)
	}

	prog := s.Bankroll.Progress(s.Opts.SessionLimit)
	if prog.Active && prog.Overtime && st.SessionStartTime != nil && *st.SessionStartTime != s.alertedStart {
		s.alertedStart = *st.SessionStartTime
		log.Printf("[WARN] session overtime: %v", prog.Elapsed)
		s.trySend(notifier.FormatOvertime(s.Opts.Currency, prog))
	}
}

func (s *Scheduler) weeklyTask() {
	log.Println("[INFO] running weekly radar")
	if !s.reload() {
		return
	}
	s.trySend(s.radar())
}

func (s *Scheduler) radar() string {
	st := s.Bankroll.State()
	return notifier.FormatRadar(s.Opts.Currency, calculator.BuildPatterns(st.Sessions, s.Bankroll.Location()))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	s.reload()
	cmd, _, _ := strings.Cut(strings.TrimSpace(command), " ")
	// Commands may be addressed as /status@BotName in groups.
	cmd, _, _ = strings.Cut(strings.ToLower(cmd), "@")

	switch cmd {
	case "/status":
		st := s.Bankroll.State()
		return notifier.FormatStatus(s.Opts.Currency, &st, s.Bankroll.Lock(), s.Bankroll.Progress(s.Opts.SessionLimit), s.Bankroll.Now())
	case "/rank":
		st := s.Bankroll.State()
		return notifier.FormatRank(s.Opts.Currency, rank.Lookup(st.LifetimeProfit()))
	case "/radar":
		return s.radar()
	case "/forecast":
		st := s.Bankroll.State()
		f, err := calculator.RealisticProjection(st.Sessions, st.Config.CurrentCapital)
		if err != nil {
			return "🔮 Not enough history for a forecast yet."
		}
		return notifier.FormatForecast(s.Opts.Currency, f)
	case "/coach":
		st := s.Bankroll.State()
		var last *model.DailySession
		if sess, ok := st.LastSession(); ok {
			last = &sess
		}
		return notifier.FormatCoach(coach.ForSession(last), s.Coach.Tip())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
