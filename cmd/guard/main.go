package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"BankrollSentinel/internal/bankroll"
	"BankrollSentinel/internal/config"
	"BankrollSentinel/internal/recorder"

	"github.com/spf13/cobra"
)

// app holds what every command needs once the config has been read.
type app struct {
	cfgPath   string
	stateFile string

	cfg *config.Config
	loc *time.Location
	bm  *bankroll.Manager
	rec recorder.Recorder
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "guard",
		Short:         "Bankroll and discipline tracker for crash games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.Path(), "config file")
	root.PersistentFlags().StringVar(&a.stateFile, "state", "", "state file (overrides config)")

	root.AddCommand(
		newOnboardCmd(a),
		newConfigCmd(a),
		newDepositCmd(a),
		newSessionCmd(a),
		newStatusCmd(a),
		newPlanCmd(a),
		newRecoveryCmd(a),
		newAnalyticsCmd(a),
		newHistoryCmd(a),
		newRankCmd(a),
		newCoachCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newBotCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.stateFile != "" {
		cfg.StateFile = a.stateFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	bm, err := bankroll.NewManager(cfg.StateFile, loc)
	if err != nil {
		return fmt.Errorf("init bankroll: %w", err)
	}
	if bm.Recovered() {
		printWarn("The saved state was unreadable and has been set aside. Starting from defaults.")
	}

	a.cfg, a.loc, a.bm = cfg, loc, bm
	a.rec = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			a.rec = sr
		}
	}
	return nil
}

func (a *app) close() error {
	if a.rec == nil {
		return nil
	}
	return a.rec.Close()
}

// requireOnboarded turns the missing-onboarding error into a hint.
func (a *app) requireOnboarded() error {
	if err := a.bm.RequireOnboarded(); err != nil {
		if errors.Is(err, bankroll.ErrNotOnboarded) {
			return fmt.Errorf("%w: run `guard onboard` first", err)
		}
		return err
	}
	return nil
}

func (a *app) currency() string {
	return a.cfg.Currency
}
