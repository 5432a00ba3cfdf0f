package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"BankrollSentinel/internal/coach"
	"BankrollSentinel/internal/notifier"
	"BankrollSentinel/internal/scheduler"

	"github.com/spf13/cobra"
)

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram companion: lock alerts, debriefs, overtime warnings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), a)
		},
	}
}

func runBot(parent context.Context, a *app) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BankrollSentinel bot starting...")

	if err := a.cfg.ValidateBot(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := a.requireOnboarded(); err != nil {
		return err
	}

	tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, a.bm, tn, a.rec, coach.New(nil), scheduler.Options{
		Currency:     a.currency(),
		SessionLimit: a.cfg.SessionLimit(),
	})
	if err := sched.RegisterAll(a.cfg.Schedule.MidnightCron, a.cfg.Schedule.WatchdogCron, a.cfg.Schedule.WeeklyCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, sending status now")
		go func() {
			if err := tn.SendWithRetry(ctx, sched.HandleCommand("/status"), 3); err != nil {
				log.Printf("[ERROR] send status: %v", err)
			}
		}()
	}

	log.Println("[INFO] BankrollSentinel bot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-parent.Done():
	}
	cancel()
	log.Println("[INFO] BankrollSentinel bot stopped")
	return nil
}
