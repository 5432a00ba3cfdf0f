package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/calculator"
	"BankrollSentinel/internal/coach"
	"BankrollSentinel/internal/model"

	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start, log and end a playing session",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			return a.requireOnboarded()
		},
	}
	cmd.AddCommand(
		newSessionStartCmd(a),
		newSessionRoundCmd(a),
		newSessionEndCmd(a),
		newSessionStatusCmd(a),
	)
	return cmd
}

func newSessionStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Open a new session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.bm.StartSession(); err != nil {
				if errors.Is(err, bankroll.ErrDayLocked) {
					renderLockBanner(a.currency(), a.bm.Lock(), a.bm.Now())
				}
				return err
			}
			st := a.bm.State()
			prog := a.bm.Progress(a.cfg.SessionLimit())
			cur := a.currency()
			bet := bankroll.RecommendedBet(st.Config)
			target := st.Config.TargetFor(string(model.StrategyManual))

			printSuccess("Session started. The clock is running.")
			fmt.Printf("Suggested bet:    %s\n", money(cur, bet))
			fmt.Printf("Session goal:     %s\n", money(cur, prog.Goal))
			fmt.Printf("Session stop:     %s\n", money(cur, prog.StopLoss))
			if n := bankroll.RoundsNeeded(prog.RemainingGoal, bet, target, model.StrategyManual, 0); n > 0 {
				fmt.Printf("Wins needed:      %d at %.2fx\n", n, target)
			}
			printInfo(fmt.Sprintf("Time limit: %s.", formatClock(a.cfg.SessionLimit())))
			return nil
		},
	}
}

func newSessionRoundCmd(a *app) *cobra.Command {
	var bet, mult float64
	var strategy string
	cmd := &cobra.Command{
		Use:   "round <win|loss>",
		Short: "Log a resolved round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var win bool
			switch strings.ToLower(args[0]) {
			case "win", "w", "green":
				win = true
			case "loss", "l", "red":
			default:
				return fmt.Errorf("result must be win or loss, got %q", args[0])
			}
			s, err := model.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("bet") {
				bet = bankroll.RecommendedBet(a.bm.State().Config)
			}

			r, err := a.bm.RecordRound(bankroll.RoundInput{BetAmount: bet, Multiplier: mult, Win: win, Strategy: s})
			if err != nil {
				return err
			}
			cur := a.currency()
			if r.Win {
				success.Printf("WIN %.2fx  %s\n", r.Multiplier, calculator.FormatSigned(cur, r.Profit))
			} else {
				danger.Printf("LOSS  %s\n", calculator.FormatSigned(cur, r.Profit))
			}
			fmt.Printf("Capital:          %s\n\n", money(cur, a.bm.State().Config.CurrentCapital))
			renderProgress(cur, a.bm.Progress(a.cfg.SessionLimit()))
			return nil
		},
	}
	cmd.Flags().Float64VarP(&bet, "bet", "b", 0, "stake (default: suggested bet)")
	cmd.Flags().Float64VarP(&mult, "mult", "m", 0, "cash-out multiplier (default: configured target)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(model.StrategyManual), "EARLY_CASHOUT, TWO_BETS or MANUAL")
	return cmd
}

func newSessionEndCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Close the session and show the debrief",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.bm.EndSession()
			if err != nil {
				return err
			}
			if err := a.rec.RecordSession(&s); err != nil {
				log.Printf("[ERROR] record session: %v", err)
			}
			cur := a.currency()
			renderDebrief(cur, a.loc, s, calculator.BuildDebrief(s.RoundsDetail, s.StartBalance))

			lock := a.bm.Lock()
			a.recordLockEvent(lock)
			fmt.Println()
			renderLockBanner(cur, lock, a.bm.Now())

			msg := coach.ForSession(&s)
			fmt.Println()
			accent.Println(msg.Title)
			printInfo(msg.Message)
			return nil
		},
	}
}

func newSessionStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prog := a.bm.Progress(a.cfg.SessionLimit())
			if !prog.Active {
				printInfo("No active session.")
				return nil
			}
			renderProgress(a.currency(), prog)
			return nil
		},
	}
}
