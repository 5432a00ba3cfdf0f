package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/calculator"
	"BankrollSentinel/internal/model"
	"BankrollSentinel/internal/rank"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

// promptFloatDefault asks for a number above min, accepting def on empty input.
func promptFloatDefault(label string, min, def float64) (float64, error) {
	for {
		fmt.Printf("%s [%g]: ", label, def)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return def, nil
		}
		v, err := parseAmount(text)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %g", min))
			continue
		}
		return v, nil
	}
}

func promptConfirm(label string) (bool, error) {
	fmt.Printf("%s (yes/no) [no]: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// parseAmount accepts both "12.5" and "12,5".
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

func money(cur string, v float64) string {
	return calculator.FormatMoney(cur, v)
}

func colorizeMoney(cur string, v float64) string {
	text := calculator.FormatSigned(cur, v)
	switch r := calculator.RoundCents(v); {
	case r > 0:
		return success.Sprint(text)
	case r < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func renderLockBanner(cur string, lock bankroll.LockResult, now time.Time) {
	var text string
	var border lipgloss.Color
	switch lock.Status {
	case model.LockWin:
		border = lipgloss.Color("#10B981")
		text = fmt.Sprintf("GOAL HIT  %s\nPlay locked. Unlocks in %s.", calculator.FormatSigned(cur, lock.DailyProfit), formatClock(lock.TimeToUnlock(now)))
	case model.LockLoss:
		border = lipgloss.Color("#EF4444")
		text = fmt.Sprintf("STOP-LOSS HIT  %s\nPlay locked. Unlocks in %s.", calculator.FormatSigned(cur, lock.DailyProfit), formatClock(lock.TimeToUnlock(now)))
	default:
		return
	}
	fmt.Println(boxStyle.BorderForeground(border).Render(text))
}

func renderRankBadge(cur string, s rank.Standing) {
	style := boxStyle.BorderForeground(lipgloss.Color(s.Current.Color))
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.Current.Color)).Render(strings.ToUpper(s.Current.Name))
	body := fmt.Sprintf("%s\nLifetime profit: %s\n%s", title, calculator.FormatSigned(cur, s.Profit), progressBar(s.Progress, 30))
	if s.Top() {
		body += "\nTop rank reached."
	} else {
		body += fmt.Sprintf(" %.1f%%\nNext: %s in %s", s.Progress, s.Next.Name, money(cur, s.ToNext))
	}
	fmt.Println(style.Render(body))
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func renderStatus(cur string, st model.AppState, lock bankroll.LockResult, prog bankroll.SessionProgress, now time.Time) {
	accent.Println("\n== BANKROLL ==")
	fmt.Printf("Capital:          %s\n", money(cur, st.Config.CurrentCapital))
	fmt.Printf("Initial capital:  %s\n", money(cur, st.Config.InitialCapital))
	fmt.Printf("Lifetime profit:  %s\n", colorizeMoney(cur, st.LifetimeProfit()))
	fmt.Printf("Suggested bet:    %s (%.1f%%)\n", money(cur, bankroll.RecommendedBet(st.Config)), st.Config.BetPercentage)

	fmt.Println()
	accent.Println("Today")
	fmt.Printf("Result:           %s\n", colorizeMoney(cur, lock.DailyProfit))
	fmt.Printf("Goal:             %s\n", money(cur, lock.DailyGoal))
	fmt.Printf("Stop-loss:        %s\n", money(cur, lock.DailyStopLoss))
	renderLockBanner(cur, lock, now)

	if prog.Active {
		fmt.Println()
		renderProgress(cur, prog)
	}
	fmt.Println()
}

func renderProgress(cur string, prog bankroll.SessionProgress) {
	accent.Println("Session")
	elapsed := formatClock(prog.Elapsed)
	if prog.Overtime {
		elapsed = danger.Sprint(elapsed + " OVERTIME")
	}
	fmt.Printf("Elapsed:          %s\n", elapsed)
	fmt.Printf("Rounds:           %d\n", prog.Rounds)
	fmt.Printf("Profit:           %s\n", colorizeMoney(cur, prog.Profit))
	fmt.Printf("Remaining goal:   %s\n", money(cur, prog.RemainingGoal))
	switch {
	case prog.HitGoal:
		printSuccess("Session goal reached. End the session now.")
	case prog.HitStopLoss:
		printError("Session stop-loss reached. End the session now.")
	}
	if prog.Overtime {
		printWarn("Fatigue costs money. Time to stop.")
	}
}

func renderDebrief(cur string, loc *time.Location, s model.DailySession, d calculator.Debrief) {
	accent.Printf("\n== DEBRIEF (%s) ==\n", s.Status)
	fmt.Printf("Result:           %s\n", colorizeMoney(cur, s.Profit))
	fmt.Printf("Balance:          %s -> %s\n", money(cur, s.StartBalance), money(cur, s.EndBalance))
	fmt.Printf("Duration:         %s\n", formatClock(time.Duration(s.DurationSeconds)*time.Second))
	fmt.Printf("Rounds:           %d (%d wins, %d losses)\n", d.Rounds, d.Wins, d.Losses)
	if d.Rounds == 0 {
		return
	}
	fmt.Printf("Win rate:         %.1f%%\n", d.WinRate)
	fmt.Printf("Profit factor:    %.2f\n", d.ProfitFactor)
	fmt.Printf("Best streaks:     %d wins / %d losses\n", d.MaxWinStreak, d.MaxLossStreak)
	fmt.Printf("Largest win/loss: %s / %s\n", money(cur, d.LargestWin), money(cur, d.LargestLoss))

	fmt.Printf("\n%-10s %-14s %10s %8s %12s\n", "TIME", "STRATEGY", "BET", "MULT", "PROFIT")
	allIn := make(map[int]bool, len(d.AllIns))
	for _, i := range d.AllIns {
		allIn[i] = true
	}
	for i, r := range s.RoundsDetail {
		mult := fmt.Sprintf("%.2fx", r.Multiplier)
		if !r.Win {
			mult = "LOSS"
		}
		line := fmt.Sprintf("%-10s %-14s %10s %8s %12s", r.Time().In(loc).Format("15:04:05"), r.Strategy,
			money("", r.BetAmount), mult, colorizeMoney("", r.Profit))
		if allIn[i] {
			line += " " + danger.Sprint("ALL-IN")
		}
		fmt.Println(line)
	}
}
