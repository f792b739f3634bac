package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"FinPlanner/internal/analytics"
	"FinPlanner/internal/collector"
	"FinPlanner/internal/model"
	"FinPlanner/internal/notifier"
	"FinPlanner/internal/prefs"
	"FinPlanner/internal/recommend"
	"FinPlanner/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Defaults are the parameters used by the scheduled run and by commands that omit them.
type Defaults struct {
	Ticker    string
	Horizon   model.Horizon
	RiskScore int
}

// WithPreferences overlays the non-zero saved preferences on d.
func (d Defaults) WithPreferences(p *prefs.Preferences) Defaults {
	if p == nil {
		return d
	}
	if p.Ticker != "" {
		d.Ticker = p.Ticker
	}
	if p.Horizon != "" {
		d.Horizon = p.Horizon
	}
	if p.RiskScore != 0 {
		d.RiskScore = p.RiskScore
	}
	return d
}

// Scheduler manages the cron task and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Analyzer  *analytics.Analyzer
	Notifier  Sender
	Recorder  recorder.Recorder
	Ctx       context.Context
	PrefsPath string // empty disables persistence of chat changes

	mu       sync.Mutex
	defaults Defaults
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, an *analytics.Analyzer, snd Sender, rec recorder.Recorder, def Defaults) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Analyzer:  an,
		Notifier:  snd,
		Recorder:  rec,
		Ctx:       ctx,
		defaults:  def,
	}
}

// RegisterAll registers the daily analysis task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
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
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the daily task immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

// Defaults returns a copy of the current defaults.
func (s *Scheduler) Defaults() Defaults {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults
}

func (s *Scheduler) dailyTask() {
	d := s.Defaults()
	log.Printf("[INFO] running daily analysis for %s", d.Ticker)
	s.trySend(s.RunAnalysis(d.Ticker, d.Horizon, d.RiskScore))
}

// RunAnalysis collects, analyzes, records and formats one run. It always
// returns a message suitable for the user.
func (s *Scheduler) RunAnalysis(symbol string, horizon model.Horizon, riskScore int) string {
	series, meta, err := s.Collector.Collect(s.Ctx, symbol)
	if err != nil {
		log.Printf("[ERROR] collect %s: %v", symbol, err)
		s.recordFailure(symbol, horizon, riskScore, err)
		return notifier.FormatFailure(symbol, err)
	}

	bundle, err := s.Analyzer.Analyze(series, horizon, riskScore)
	if err != nil {
		s.recordFailure(symbol, horizon, riskScore, err)
		if errors.Is(err, analytics.ErrEmptySeries) {
			log.Printf("[WARN] no price history for %s", symbol)
			return notifier.FormatUnavailable(symbol)
		}
		log.Printf("[ERROR] analyze %s: %v", symbol, err)
		return notifier.FormatFailure(symbol, err)
	}

	if err := s.Recorder.RecordAnalysis(bundle); err != nil {
		log.Printf("[ERROR] record analysis: %v", err)
	}
	return notifier.FormatAnalysisReport(bundle, meta)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Commands addressed as /cmd@BotName in groups.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/analyze":
		return s.handleAnalyze(args)
	case "/risk":
		return s.handleRisk(args)
	case "/horizon":
		return s.handleHorizon(args)
	case "/ticker":
		return s.handleTicker(args)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) handleAnalyze(args []string) string {
	d := s.Defaults()
	symbol, horizon, risk := d.Ticker, d.Horizon, d.RiskScore
	if len(args) > 0 {
		symbol = strings.ToUpper(args[0])
	}
	if len(args) > 1 {
		h, err := model.ParseHorizon(args[1])
		if err != nil {
			return fmt.Sprintf("⚠️ %v\n\n%s", err, notifier.FormatHelp())
		}
		horizon = h
	}
	if len(args) > 2 {
		r, err := parseRisk(args[2])
		if err != nil {
			return fmt.Sprintf("⚠️ %v", err)
		}
		risk = r
	}
	return s.RunAnalysis(symbol, horizon, risk)
}

func (s *Scheduler) handleRisk(args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("Current risk tolerance: %d/5", s.Defaults().RiskScore)
	}
	r, err := parseRisk(args[0])
	if err != nil {
		return fmt.Sprintf("⚠️ %v", err)
	}
	s.update(func(d *Defaults) { d.RiskScore = r })

	rec, _ := recommend.Recommend(r)
	return fmt.Sprintf("Risk tolerance set to %d/5 (%s).\n%s", r, rec.Tier, rec.Advice)
}

func (s *Scheduler) handleHorizon(args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("Current horizon: %s", s.Defaults().Horizon.Label())
	}
	h, err := model.ParseHorizon(args[0])
	if err != nil {
		return fmt.Sprintf("⚠️ %v", err)
	}
	s.update(func(d *Defaults) { d.Horizon = h })
	return fmt.Sprintf("Horizon set to %s.", h.Label())
}

func (s *Scheduler) handleTicker(args []string) string {
	if len(args) == 0 {
		return fmt.Sprintf("Current ticker: %s", s.Defaults().Ticker)
	}
	t := strings.ToUpper(args[0])
	s.update(func(d *Defaults) { d.Ticker = t })
	return fmt.Sprintf("Daily analysis ticker set to %s.", t)
}

// update applies fn to the defaults and persists the result.
func (s *Scheduler) update(fn func(d *Defaults)) {
	s.mu.Lock()
	fn(&s.defaults)
	d := s.defaults
	s.mu.Unlock()

	if s.PrefsPath == "" {
		return
	}
	if err := prefs.Save(s.PrefsPath, &prefs.Preferences{
		Ticker:    d.Ticker,
		Horizon:   d.Horizon,
		RiskScore: d.RiskScore,
	}); err != nil {
		log.Printf("[ERROR] save preferences: %v", err)
	}
}

func parseRisk(s string) (int, error) {
	r, err := strconv.Atoi(s)
	if err != nil || r < recommend.MinScore || r > recommend.MaxScore {
		return 0, fmt.Errorf("risk score must be an integer between %d and %d, got %q", recommend.MinScore, recommend.MaxScore, s)
	}
	return r, nil
}

func (s *Scheduler) recordFailure(symbol string, horizon model.Horizon, riskScore int, cause error) {
	if err := s.Recorder.RecordFailure(&recorder.FailureEvent{
		Symbol:    symbol,
		Horizon:   horizon,
		RiskScore: riskScore,
		Reason:    cause.Error(),
	}); err != nil {
		log.Printf("[ERROR] record failure: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
