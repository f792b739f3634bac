package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"FinPlanner/internal/analytics"
	"FinPlanner/internal/collector"
	"FinPlanner/internal/config"
	"FinPlanner/internal/model"
	"FinPlanner/internal/notifier"
	"FinPlanner/internal/prefs"
	"FinPlanner/internal/recorder"
	"FinPlanner/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	app := &cli.App{
		Name:  "planner",
		Usage: "daily stock trend forecast and risk-based recommendation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to YAML config",
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the scheduler and Telegram command polling",
				Action: runBot,
			},
			{
				Name:  "analyze",
				Usage: "run one analysis and print the report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "ticker", Aliases: []string{"t"}, Usage: "ticker symbol (default from config)"},
					&cli.StringFlag{Name: "horizon", Usage: "SHORT, MID or LONG (default from config)"},
					&cli.IntFlag{Name: "risk", Aliases: []string{"r"}, Usage: "risk tolerance 1-5 (default from config)"},
				},
				Action: runOnce,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	return fetcher
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func runBot(c *cli.Context) error {
	log.Println("[INFO] FinPlanner starting...")
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	col := collector.NewCollector(newFetcher(cfg), cfg.DataSource.HistoryYears)
	an := analytics.NewAnalyzer(cfg.AnalyticsConfig())
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	rec := newRecorder(cfg)
	defer rec.Close()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	defaults := scheduler.Defaults{
		Ticker:    cfg.DataSource.Ticker,
		Horizon:   cfg.Horizon(),
		RiskScore: cfg.Analysis.RiskScore,
	}
	if cfg.Database.PrefsFile != "" {
		p, err := prefs.Load(cfg.Database.PrefsFile)
		if err != nil {
			log.Printf("[WARN] load preferences, using config defaults: %v", err)
		} else {
			defaults = defaults.WithPreferences(p)
		}
	}

	sched := scheduler.NewScheduler(ctx, col, an, tn, rec, defaults)
	sched.PrefsPath = cfg.Database.PrefsFile
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily analysis now")
		go sched.RunNow()
	}

	log.Println("[INFO] FinPlanner is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	cancel()
	log.Println("[INFO] FinPlanner stopped")
	return nil
}

func runOnce(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ticker := cfg.DataSource.Ticker
	if c.IsSet("ticker") {
		ticker = strings.ToUpper(c.String("ticker"))
	}
	horizon := cfg.Horizon()
	if c.IsSet("horizon") {
		if horizon, err = model.ParseHorizon(c.String("horizon")); err != nil {
			return err
		}
	}
	risk := cfg.Analysis.RiskScore
	if c.IsSet("risk") {
		risk = c.Int("risk")
	}

	rec := newRecorder(cfg)
	defer rec.Close()

	sched := scheduler.NewScheduler(c.Context,
		collector.NewCollector(newFetcher(cfg), cfg.DataSource.HistoryYears),
		analytics.NewAnalyzer(cfg.AnalyticsConfig()),
		nil, rec,
		scheduler.Defaults{Ticker: ticker, Horizon: horizon, RiskScore: risk})

	fmt.Fprintln(c.App.Writer, sched.RunAnalysis(ticker, horizon, risk))
	return nil
}
