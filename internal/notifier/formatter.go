package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/calculator"
	"BankrollSentinel/internal/coach"
	"BankrollSentinel/internal/model"
	"BankrollSentinel/internal/rank"
)

// FormatStatus formats the bankroll, today's lock and the running session.
func FormatStatus(cur string, st *model.AppState, lock bankroll.LockResult, prog bankroll.SessionProgress, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Bankroll</b> | %s\n\n", now.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Capital: %s\n", calculator.FormatMoney(cur, st.Config.CurrentCapital)))
	b.WriteString(fmt.Sprintf("Lifetime profit: %s\n", calculator.FormatSigned(cur, st.LifetimeProfit())))
	b.WriteString(fmt.Sprintf("Suggested bet: %s (%.1f%%)\n\n", calculator.FormatMoney(cur, bankroll.RecommendedBet(st.Config)), st.Config.BetPercentage))

	b.WriteString(fmt.Sprintf("Today: %s\n", calculator.FormatSigned(cur, lock.DailyProfit)))
	b.WriteString(fmt.Sprintf("  goal %s | stop %s\n",
		calculator.FormatMoney(cur, lock.DailyGoal), calculator.FormatMoney(cur, lock.DailyStopLoss)))
	b.WriteString(lockLine(lock, now))

	if prog.Active {
		b.WriteString(fmt.Sprintf("\n🎮 <b>Session running</b> %s, %d rounds, %s\n",
			formatDuration(prog.Elapsed), prog.Rounds, calculator.FormatSigned(cur, prog.Profit)))
		if prog.Overtime {
			b.WriteString("⏰ Over the time limit. End the session.\n")
		}
	}
	return b.String()
}

func lockLine(lock bankroll.LockResult, now time.Time) string {
	switch lock.Status {
	case model.LockWin:
		return fmt.Sprintf("🏆 Goal hit. Play locked for %s.\n", formatDuration(lock.TimeToUnlock(now)))
	case model.LockLoss:
		return fmt.Sprintf("🛑 Stop-loss hit. Play locked for %s.\n", formatDuration(lock.TimeToUnlock(now)))
	}
	return "🟢 Play open.\n"
}

// FormatDebrief formats the report sent when a session ends.
func FormatDebrief(cur string, s model.DailySession, d calculator.Debrief, lock bankroll.LockResult, now time.Time) string {
	var b strings.Builder
	icon := "⚖️"
	switch s.Status {
	case model.StatusWin:
		icon = "✅"
	case model.StatusLoss:
		icon = "🔻"
	}
	b.WriteString(fmt.Sprintf("%s <b>Session debrief</b> | %s\n\n", icon, s.Status))
	b.WriteString(fmt.Sprintf("Result: %s (%s → %s)\n", calculator.FormatSigned(cur, s.Profit),
		calculator.FormatMoney(cur, s.StartBalance), calculator.FormatMoney(cur, s.EndBalance)))
	b.WriteString(fmt.Sprintf("Duration: %s | Rounds: %d\n", formatDuration(time.Duration(s.DurationSeconds)*time.Second), s.Rounds))
	if d.Rounds > 0 {
		b.WriteString(fmt.Sprintf("Win rate: %.0f%% | Profit factor: %.2f\n", d.WinRate, d.ProfitFactor))
		b.WriteString(fmt.Sprintf("Streaks: %d wins, %d losses\n", d.MaxWinStreak, d.MaxLossStreak))
	}
	if n := len(d.AllIns); n > 0 {
		b.WriteString(fmt.Sprintf("💣 %d all-in bet(s). That is how bankrolls die.\n", n))
	}
	if lock.Status.Locked() {
		b.WriteString("\n" + lockLine(lock, now))
	}
	return b.String()
}

// FormatOvertime formats the alert sent when a session runs past its limit.
func FormatOvertime(cur string, prog bankroll.SessionProgress) string {
	return fmt.Sprintf("⏰ <b>Time's up</b>\n\nThe session has been running for %s (%d rounds, %s).\nFatigue costs money. End it now.",
		formatDuration(prog.Elapsed), prog.Rounds, calculator.FormatSigned(cur, prog.Profit))
}

// FormatDaySummary formats the midnight report for the day that just ended.
func FormatDaySummary(cur, day string, sessions []model.DailySession, lock bankroll.LockResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌙 <b>Day closed</b> | %s\n\n", day))
	if len(sessions) == 0 {
		b.WriteString("No sessions. A day off is a day the bankroll survived.\n")
	} else {
		rounds := 0
		for _, s := range sessions {
			rounds += s.Rounds
		}
		b.WriteString(fmt.Sprintf("Sessions: %d | Rounds: %d\n", len(sessions), rounds))
		b.WriteString(fmt.Sprintf("Result: %s\n", calculator.FormatSigned(cur, lock.DailyProfit)))
	}
	if lock.Status.Locked() {
		b.WriteString(fmt.Sprintf("Lock %s lifted.\n", lock.Status))
	}
	b.WriteString("\n🟢 New day, play unlocked.")
	return b.String()
}

// FormatRadar formats the pattern radar.
func FormatRadar(cur string, p calculator.Patterns) string {
	var b strings.Builder
	b.WriteString("📡 <b>Pattern radar</b>\n\n")
	if p.Rounds == 0 {
		b.WriteString("No rounds recorded yet.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Rounds analysed: %d\n\n", p.Rounds))
	writeBest(&b, cur, "Hour", p.Hours)
	writeBest(&b, cur, "Minute slot", p.FiveMinute)
	writeBest(&b, cur, "Weekday", p.Weekdays)
	writeBest(&b, cur, "Day of month", p.MonthDays)
	return b.String()
}

func writeBest(b *strings.Builder, cur, name string, buckets []calculator.Bucket) {
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", name))
	if best, ok := calculator.BestByProfit(buckets); ok {
		b.WriteString(fmt.Sprintf("  best profit: %s (%s)\n", best.Label, calculator.FormatSigned(cur, best.Profit)))
	}
	if worst, ok := calculator.WorstByProfit(buckets); ok {
		b.WriteString(fmt.Sprintf("  worst profit: %s (%s)\n", worst.Label, calculator.FormatSigned(cur, worst.Profit)))
	}
	if best, ok := calculator.BestByRate(buckets); ok {
		b.WriteString(fmt.Sprintf("  best win rate: %s (%.0f%% of %d)\n", best.Label, best.Rate(), best.Total))
	}
}

// FormatForecast formats the realistic 30-day projection.
func FormatForecast(cur string, f calculator.Forecast) string {
	var b strings.Builder
	b.WriteString("🔮 <b>Realistic forecast</b>\n\n")
	b.WriteString(fmt.Sprintf("Average yield: %+.2f%% per session (%d sessions)\n", f.AverageYield, f.Sessions))
	b.WriteString(fmt.Sprintf("In %d days: %s (%s)\n", len(f.Projection.Days),
		calculator.FormatMoney(cur, f.Projection.FinalBalance), calculator.FormatSigned(cur, f.Projection.TotalProfit)))
	if f.AverageYield < 0 {
		b.WriteString("\n⚠️ At this pace the bankroll shrinks. Review the strategy before the next session.")
	}
	return b.String()
}

// FormatRank formats the career standing.
func FormatRank(cur string, s rank.Standing) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎖 <b>%s</b>\n\n", html.EscapeString(s.Current.Name)))
	b.WriteString(fmt.Sprintf("Lifetime profit: %s\n", calculator.FormatSigned(cur, s.Profit)))
	if s.Top() {
		b.WriteString("Top rank reached. Nothing left to prove, keep the discipline.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Next: %s in %s (%.1f%%)", html.EscapeString(s.Next.Name),
		calculator.FormatMoney(cur, s.ToNext), s.Progress))
	return b.String()
}

// FormatCoach formats the coach message with one study tip.
func FormatCoach(msg coach.Message, tip coach.Tip) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧠 <b>%s</b>\n%s\n\n", html.EscapeString(msg.Title), html.EscapeString(msg.Message)))
	b.WriteString(fmt.Sprintf("📚 <b>%s</b> (%s)\n%s", html.EscapeString(tip.Title),
		html.EscapeString(tip.Category), html.EscapeString(tip.Content)))
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "📋 <b>Commands</b>\n\n" +
		"/status  bankroll, lock and running session\n" +
		"/rank    career rank\n" +
		"/radar   pattern radar\n" +
		"/forecast  30-day realistic forecast\n" +
		"/coach   mindset message and a study tip\n" +
		"/help    this list"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
