package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Farjax/internal/api"
	"Farjax/internal/metrics"
	"Farjax/internal/notifier"
	"Farjax/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh on a schedule and serve estimates over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("[INFO] Farjax starting...")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rec := openRecorder(cfg)
		defer rec.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m := metrics.NewMetrics(prometheus.DefaultRegisterer)
		sched := scheduler.NewScheduler(ctx, newCollector(cfg, rec), strategyParams(cfg), rec)
		sched.Metrics = m

		var tn *notifier.TelegramNotifier
		if cfg.TelegramEnabled() {
			tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			sched.Notifier = tn
		} else {
			log.Println("[INFO] telegram not configured, reports disabled")
		}

		hub := api.NewHub()
		hub.Metrics = m
		gin.SetMode(gin.ReleaseMode)
		srv := api.NewServer(cfg.HTTP.Addr, sched, hub,
			api.ViewParams{DaysBack: cfg.Display.DaysBack, MinutesAhead: cfg.Display.MinutesAhead},
			prometheus.DefaultGatherer)
		sched.OnRefresh = srv.Publish

		if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
			return err
		}

		if _, err := sched.Refresh("startup"); err != nil {
			log.Printf("[WARN] initial refresh failed: %v", err)
		}

		sched.Start()
		defer sched.Stop()
		srv.Start()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Println("[INFO] Telegram polling started")
		}

		log.Printf("[INFO] Farjax is running for %s. Press Ctrl+C to stop.", cfg.DataSource.Symbol)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		srv.Stop(shutdownCtx)
		log.Println("[INFO] Farjax stopped")
		return nil
	},
}
