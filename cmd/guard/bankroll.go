package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/model"
	"BankrollSentinel/internal/recorder"

	"github.com/spf13/cobra"
)

func newOnboardCmd(a *app) *cobra.Command {
	var capital, bet, stopLoss, goal, target float64
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set the starting capital and risk limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.bm.State()
			capitalLabel := "Starting capital"
			if st.HasCompletedOnboarding {
				if st.IsSessionActive {
					return fmt.Errorf("%w: end it before onboarding again", bankroll.ErrSessionActive)
				}
				ok, err := promptConfirm("Onboarding was already completed. Replace the settings? History is kept")
				if err != nil || !ok {
					return err
				}
				capitalLabel = "Current capital"
			}
			adjustments := len(st.Adjustments)

			var err error
			accent.Println("\n== ONBOARDING ==")
			if !cmd.Flags().Changed("capital") {
				if capital, err = promptFloatDefault(capitalLabel, 0, 100); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("bet") {
				if bet, err = promptFloatDefault("Bet size (% of capital)", 0, bet); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("stop-loss") {
				if stopLoss, err = promptFloatDefault("Daily stop-loss (%)", 0, stopLoss); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("goal") {
				if goal, err = promptFloatDefault("Daily goal (%)", 0, goal); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("target") {
				if target, err = promptFloatDefault("Default cash-out multiplier", 1, target); err != nil {
					return err
				}
			}

			cfg := model.DefaultConfig()
			cfg.InitialCapital = capital
			cfg.BetPercentage = bet
			cfg.StopLossPercentage = stopLoss
			cfg.DailyGoalPercentage = goal
			cfg.StopWinPercentage = goal
			cfg.DefaultTargetMultiplier = target
			cfg.StrategyDefaults[string(model.StrategyEarlyCashout)] = target
			if err := a.bm.CompleteOnboarding(cfg); err != nil {
				return err
			}
			a.recordNewAdjustments(adjustments)
			printSuccess(fmt.Sprintf("All set. Capital %s, suggested bet %s.",
				money(a.currency(), capital), money(a.currency(), bankroll.RecommendedBet(a.bm.State().Config))))
			return nil
		},
	}
	cmd.Flags().Float64Var(&capital, "capital", 0, "starting capital")
	cmd.Flags().Float64Var(&bet, "bet", 3.5, "bet size in percent of capital")
	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 15, "daily stop-loss in percent")
	cmd.Flags().Float64Var(&goal, "goal", 5, "daily goal in percent")
	cmd.Flags().Float64Var(&target, "target", 2.00, "default cash-out multiplier")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the bankroll settings",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the bankroll settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.bm.State().Config
			cur := a.currency()
			accent.Println("\n== SETTINGS ==")
			fmt.Printf("%-22s %s\n", "initial", money(cur, cfg.InitialCapital))
			fmt.Printf("%-22s %s\n", "capital", money(cur, cfg.CurrentCapital))
			fmt.Printf("%-22s %.2f%%\n", "bet", cfg.BetPercentage)
			fmt.Printf("%-22s %.2f%%\n", "stop-loss", cfg.StopLossPercentage)
			fmt.Printf("%-22s %.2f%%\n", "stop-win", cfg.StopWinPercentage)
			fmt.Printf("%-22s %.2f%%\n", "goal", cfg.GoalPercentage())
			fmt.Printf("%-22s %.2fx\n", "target", cfg.TargetFor(string(model.StrategyManual)))
			for _, key := range []string{string(model.StrategyEarlyCashout), string(model.StrategyTwoBets), model.CoverKey} {
				fmt.Printf("%-22s %.2fx\n", "target."+strings.ToLower(key), cfg.TargetFor(key))
			}
			fmt.Printf("%-22s %s\n", "timezone", a.loc.String())
			fmt.Printf("%-22s %s\n", "state file", a.cfg.StateFile)
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting (capital, bet, stop-loss, stop-win, goal, target, target.<strategy>)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnboarded(); err != nil {
				return err
			}
			v, err := parseAmount(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q", args[1])
			}
			before := a.bm.State()
			cfg := before.Config
			if cfg.StrategyDefaults == nil {
				cfg.StrategyDefaults = map[string]float64{}
			}

			key := strings.ToLower(args[0])
			switch key {
			case "capital":
				cfg.CurrentCapital = v
			case "bet":
				cfg.BetPercentage = v
			case "stop-loss":
				cfg.StopLossPercentage = v
			case "stop-win":
				cfg.StopWinPercentage = v
			case "goal":
				cfg.DailyGoalPercentage = v
			case "target":
				cfg.DefaultTargetMultiplier = v
			default:
				name, ok := strings.CutPrefix(key, "target.")
				if !ok {
					return fmt.Errorf("unknown setting %q", args[0])
				}
				if name == "cover" || strings.EqualFold(name, model.CoverKey) {
					cfg.StrategyDefaults[model.CoverKey] = v
					break
				}
				s, err := model.ParseStrategy(name)
				if err != nil {
					return err
				}
				cfg.StrategyDefaults[string(s)] = v
			}

			if err := a.bm.UpdateConfig(cfg); err != nil {
				return err
			}
			a.recordNewAdjustments(len(before.Adjustments))
			printSuccess(fmt.Sprintf("%s updated.", key))
			return nil
		},
	}
}

// recordNewAdjustments copies adjustments logged after index from into the ledger.
func (a *app) recordNewAdjustments(from int) {
	st := a.bm.State()
	for i := from; i < len(st.Adjustments); i++ {
		if err := a.rec.RecordAdjustment(&st.Adjustments[i]); err != nil {
			log.Printf("[ERROR] record adjustment: %v", err)
		}
	}
}

func newDepositCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Add external money to the bankroll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnboarded(); err != nil {
				return err
			}
			amount, err := parseAmount(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			adj, err := a.bm.Deposit(amount)
			if err != nil {
				return err
			}
			if err := a.rec.RecordAdjustment(&adj); err != nil {
				log.Printf("[ERROR] record adjustment: %v", err)
			}
			printSuccess(fmt.Sprintf("Deposited %s. Capital is now %s.",
				money(a.currency(), amount), money(a.currency(), adj.BalanceAfter)))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show capital, today's result and the lock state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireOnboarded(); err != nil {
				return err
			}
			renderStatus(a.currency(), a.bm.State(), a.bm.Lock(), a.bm.Progress(a.cfg.SessionLimit()), a.bm.Now())
			return nil
		},
	}
}

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Suggested stake and rounds needed to reach the goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireOnboarded(); err != nil {
				return err
			}
			st := a.bm.State()
			cur := a.currency()
			bet := bankroll.RecommendedBet(st.Config)

			var remaining float64
			if prog := a.bm.Progress(a.cfg.SessionLimit()); prog.Active {
				remaining = prog.RemainingGoal
			} else {
				lock := a.bm.Lock()
				remaining = max(0, lock.DailyGoal-lock.DailyProfit)
			}

			accent.Println("\n== PLAN ==")
			fmt.Printf("Suggested bet:    %s (%.1f%% of %s)\n", money(cur, bet), st.Config.BetPercentage, money(cur, st.Config.CurrentCapital))
			fmt.Printf("Remaining goal:   %s\n\n", money(cur, remaining))
			if remaining <= 0 {
				printSuccess("Nothing left to win today.")
				return nil
			}

			cover := st.Config.TargetFor(model.CoverKey)
			fmt.Printf("%-16s %8s %8s\n", "STRATEGY", "TARGET", "WINS")
			for _, s := range []model.Strategy{model.StrategyEarlyCashout, model.StrategyTwoBets, model.StrategyManual} {
				target := st.Config.TargetFor(string(s))
				n := bankroll.RoundsNeeded(remaining, bet, target, s, cover)
				wins := strconv.Itoa(n)
				if n == 0 {
					wins = "-"
				}
				fmt.Printf("%-16s %7.2fx %8s\n", s, target, wins)
			}
			return nil
		},
	}
}

func newRecoveryCmd(a *app) *cobra.Command {
	var multiplier float64
	cmd := &cobra.Command{
		Use:   "recovery <loss>",
		Short: "Stake needed to win back a loss in one round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireOnboarded(); err != nil {
				return err
			}
			loss, err := parseAmount(args[0])
			if err != nil {
				return fmt.Errorf("invalid loss %q", args[0])
			}
			st := a.bm.State()
			if multiplier == 0 {
				multiplier = st.Config.TargetFor(string(model.StrategyManual))
			}
			rec, err := bankroll.RecoveryBet(loss, multiplier, st.Config.CurrentCapital)
			if err != nil {
				return err
			}
			cur := a.currency()
			accent.Println("\n== RECOVERY ==")
			fmt.Printf("Stake:            %s at %.2fx\n", money(cur, rec.Bet), rec.Multiplier)
			fmt.Printf("Bankroll share:   %.1f%%\n", rec.RiskPercent)
			switch rec.Level {
			case bankroll.RiskExtreme:
				printError("EXTREME risk. Chasing this loss can wipe out the bankroll.")
			case bankroll.RiskHigh:
				printWarn("HIGH risk. Consider splitting the recovery over several sessions.")
			default:
				printSuccess("Controlled risk.")
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&multiplier, "mult", "m", 0, "cash-out multiplier (default: configured target)")
	return cmd
}

// recordLockEvent stores the lock reached by the session that just ended.
func (a *app) recordLockEvent(lock bankroll.LockResult) {
	if !lock.Status.Locked() {
		return
	}
	threshold := lock.DailyGoal
	if lock.Status == model.LockLoss {
		threshold = lock.DailyStopLoss
	}
	evt := &recorder.LockEvent{
		Day:         bankroll.DayKey(a.bm.Now(), a.loc),
		Status:      lock.Status,
		DailyProfit: lock.DailyProfit,
		Threshold:   threshold,
	}
	if err := a.rec.RecordLockEvent(evt); err != nil {
		log.Printf("[ERROR] record lock event: %v", err)
	}
}
