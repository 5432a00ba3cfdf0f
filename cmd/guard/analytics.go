package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"BankrollSentinel/internal/calculator"
	"BankrollSentinel/internal/coach"
	"BankrollSentinel/internal/model"
	"BankrollSentinel/internal/rank"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Projections, charts and pattern analysis",
	}
	cmd.AddCommand(
		newProjectionCmd(a),
		newEvolutionCmd(a),
		newRadarCmd(a),
		newForecastCmd(a),
		newDebriefCmd(a),
	)
	return cmd
}

func newProjectionCmd(a *app) *cobra.Command {
	var capital, percent float64
	var days int
	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Compound-growth simulation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.bm.State().Config
			if !cmd.Flags().Changed("capital") {
				capital = cfg.CurrentCapital
			}
			if !cmd.Flags().Changed("percent") {
				percent = cfg.GoalPercentage()
			}
			p, err := calculator.CompoundProjection(capital, percent, days)
			if err != nil {
				return err
			}
			cur := a.currency()
			accent.Printf("\n== PROJECTION (%.2f%% a day) ==\n", percent)
			fmt.Printf("%-6s %16s %14s %16s\n", "DAY", "START", "PROFIT", "TOTAL")
			for _, d := range p.Days {
				fmt.Printf("%-6d %16s %14s %16s\n", d.Day, money(cur, d.Start), money(cur, d.Profit), money(cur, d.Total))
			}
			fmt.Printf("\nFinal balance:    %s\n", money(cur, p.FinalBalance))
			fmt.Printf("Total profit:     %s\n", colorizeMoney(cur, p.TotalProfit))

			accent.Println("\nMilestones")
			for _, m := range calculator.Milestones(capital, percent) {
				fmt.Printf("%4d days  %s\n", m.Days, money(cur, m.Balance))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&capital, "capital", 0, "starting capital (default: current capital)")
	cmd.Flags().Float64Var(&percent, "percent", 0, "daily growth in percent (default: daily goal)")
	cmd.Flags().IntVar(&days, "days", 30, "days to simulate")
	return cmd
}

func newEvolutionCmd(a *app) *cobra.Command {
	var percent float64
	cmd := &cobra.Command{
		Use:   "evolution",
		Short: "Real balance per session against the ideal compound curve",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.bm.State()
			if !cmd.Flags().Changed("percent") {
				percent = st.Config.GoalPercentage()
			}
			cur := a.currency()
			ev := calculator.BuildEvolution(st.Sessions, st.Config.InitialCapital, st.Config.InitialCapital, percent, len(st.Sessions))

			accent.Println("\n== EVOLUTION ==")
			fmt.Printf("%-6s %16s %16s %10s\n", "DAY", "REAL", "IDEAL", "GAP")
			for _, p := range ev.Points {
				actual, ideal, gap := "-", "-", ""
				if p.HasReal {
					actual = money(cur, p.Real)
				}
				if p.HasIdeal {
					ideal = money(cur, p.Ideal)
				}
				if p.HasReal && p.HasIdeal && p.Ideal > 0 {
					gap = colorizePercent((p.Real - p.Ideal) / p.Ideal * 100)
				}
				fmt.Printf("%-6d %16s %16s %10s\n", p.Day, actual, ideal, gap)
			}
			if len(ev.Deposits) > 0 {
				fmt.Println()
				for _, d := range ev.Deposits {
					printWarn(fmt.Sprintf("Deposit of %s detected before session %d.", money(cur, d.Amount), d.SessionIndex+1))
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&percent, "percent", 0, "ideal daily growth in percent (default: daily goal)")
	return cmd
}

func newRadarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "radar",
		Short: "Best and worst times to play",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := calculator.BuildPatterns(a.bm.State().Sessions, a.loc)
			if p.Rounds == 0 {
				printInfo("No rounds recorded yet.")
				return nil
			}
			cur := a.currency()
			accent.Printf("\n== PATTERN RADAR (%d rounds) ==\n", p.Rounds)
			renderBuckets(cur, "Hour of day", p.Hours)
			renderBuckets(cur, "Minute slot", p.FiveMinute)
			renderBuckets(cur, "Weekday", p.Weekdays)
			renderBuckets(cur, "Day of month", p.MonthDays)
			return nil
		},
	}
}

func renderBuckets(cur, title string, buckets []calculator.Bucket) {
	accent.Printf("\n%s\n", title)
	if b, ok := calculator.BestByProfit(buckets); ok {
		fmt.Printf("  %-14s %-10s %s\n", "best profit", b.Label, colorizeMoney(cur, b.Profit))
	}
	if b, ok := calculator.WorstByProfit(buckets); ok {
		fmt.Printf("  %-14s %-10s %s\n", "worst profit", b.Label, colorizeMoney(cur, b.Profit))
	}
	if b, ok := calculator.BestByRate(buckets); ok {
		fmt.Printf("  %-14s %-10s %.0f%% of %d\n", "best rate", b.Label, b.Rate(), b.Total)
	}
	if b, ok := calculator.WorstByRate(buckets); ok {
		fmt.Printf("  %-14s %-10s %.0f%% of %d\n", "worst rate", b.Label, b.Rate(), b.Total)
	}
}

func newForecastCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Compound the historical average yield forward",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.bm.State()
			f, err := calculator.RealisticProjection(st.Sessions, st.Config.CurrentCapital)
			if err != nil {
				printInfo("Not enough history for a forecast yet.")
				return nil
			}
			cur := a.currency()
			accent.Printf("\n== FORECAST (%d days) ==\n", calculator.ForecastDays)
			fmt.Printf("Sessions used:    %d\n", f.Sessions)
			fmt.Printf("Average yield:    %s per session\n", colorizePercent(f.AverageYield))
			fmt.Printf("Final balance:    %s\n", money(cur, f.Projection.FinalBalance))
			fmt.Printf("Total profit:     %s\n", colorizeMoney(cur, f.Projection.TotalProfit))
			if f.AverageYield < 0 {
				printWarn("At this pace the bankroll shrinks. Review the radar and your stake size.")
			}
			return nil
		},
	}
}

func newDebriefCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "debrief [n]",
		Short: "Round-by-round review of a session (default: the last one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions := a.bm.State().Sessions
			if len(sessions) == 0 {
				printInfo("No sessions recorded yet.")
				return nil
			}
			idx := len(sessions) - 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 || n > len(sessions) {
					return fmt.Errorf("session number must be between 1 and %d", len(sessions))
				}
				idx = n - 1
			}
			s := sessions[idx]
			renderDebrief(a.currency(), a.loc, s, calculator.BuildDebrief(s.RoundsDetail, s.StartBalance))
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear finished sessions",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryClearCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finished sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions := a.bm.State().Sessions
			if len(sessions) == 0 {
				printInfo("No sessions recorded yet.")
				return nil
			}
			cur := a.currency()
			accent.Println("\n== HISTORY ==")
			fmt.Printf("%-4s %-17s %-11s %7s %8s %16s %14s\n", "#", "DATE", "STATUS", "ROUNDS", "TIME", "END", "PROFIT")
			shown := 0
			for i := len(sessions) - 1; i >= 0; i-- {
				if limit > 0 && shown == limit {
					break
				}
				s := sessions[i]
				fmt.Printf("%-4d %-17s %-11s %7d %8s %16s %14s\n", i+1,
					s.Date.In(a.loc).Format("2006-01-02 15:04"), s.Status, s.Rounds,
					formatClock(time.Duration(s.DurationSeconds)*time.Second), money(cur, s.EndBalance), colorizeMoney(cur, s.Profit))
				shown++
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "sessions to show (0 for all)")
	return cmd
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every finished session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				ok, err := promptConfirm("Delete the whole session history? Export a backup first if unsure")
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Nothing deleted.")
					return nil
				}
			}
			if err := a.bm.ClearHistory(); err != nil {
				return err
			}
			printSuccess("History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func newRankCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Career rank by lifetime profit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.bm.State()
			renderRankBadge(a.currency(), rank.Lookup(st.LifetimeProfit()))
			return nil
		},
	}
}

func newCoachCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Advice for the last session, the commandments and study tips",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.bm.State()
			var last *model.DailySession
			if s, ok := st.LastSession(); ok {
				last = &s
			}
			msg := coach.ForSession(last)
			tips := coach.New(nil).Feed(coach.FeedSize)
			if all {
				tips = coach.KnowledgeBase
			}
			accent.Printf("\n== %s ==\n", msg.Title)
			printInfo(msg.Message)

			accent.Println("\nThe commandments")
			for i, c := range coach.Commandments {
				fmt.Printf("%2d. %s\n", i+1, c)
			}

			accent.Println("\nStudy feed")
			for _, t := range tips {
				fmt.Printf("%s %s\n", warn.Sprintf("[%s]", strings.ToUpper(t.Category)), t.Title)
				fmt.Printf("    %s\n", t.Content)
			}
			fmt.Println()
			printWarn(coach.Wellbeing)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show the whole knowledge base")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write a dated JSON backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := a.bm.ExportFile(dir)
			if err != nil {
				return err
			}
			printSuccess("Backup written to " + path)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := promptConfirm("This replaces all current data. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Nothing imported.")
					return nil
				}
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open backup: %w", err)
			}
			defer f.Close()
			if err := a.bm.Import(f); err != nil {
				return err
			}
			st := a.bm.State()
			printSuccess(fmt.Sprintf("Imported %d sessions. Capital is %s.", len(st.Sessions), money(a.currency(), st.Config.CurrentCapital)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
