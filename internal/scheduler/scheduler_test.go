package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"FinPlanner/internal/analytics"
	"FinPlanner/internal/collector"
	"FinPlanner/internal/model"
	"FinPlanner/internal/prefs"
	"FinPlanner/internal/recorder"
)

type fakeSender struct{ sent []string }

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.sent = append(f.sent, text)
	return nil
}

type countingRecorder struct {
	recorder.NoopRecorder
	analyses int
	failures []*recorder.FailureEvent
}

func (c *countingRecorder) RecordAnalysis(_ *model.AnalysisBundle) error {
	c.analyses++
	return nil
}

func (c *countingRecorder) RecordFailure(evt *recorder.FailureEvent) error {
	c.failures = append(c.failures, evt)
	return nil
}

func newTestScheduler(f *collector.MockFetcher) (*Scheduler, *fakeSender, *countingRecorder) {
	snd := &fakeSender{}
	rec := &countingRecorder{}
	s := NewScheduler(context.Background(),
		collector.NewCollector(f, 1),
		analytics.NewAnalyzer(analytics.DefaultConfig()),
		snd, rec,
		Defaults{Ticker: "AAPL", Horizon: model.HorizonShort, RiskScore: 3})
	return s, snd, rec
}

func TestRunNow_SendsReport(t *testing.T) {
	s, snd, rec := newTestScheduler(&collector.MockFetcher{Price: 150})
	s.RunNow()

	if len(snd.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(snd.sent))
	}
	if !strings.Contains(snd.sent[0], "AAPL Stock Summary") || !strings.Contains(snd.sent[0], "MODERATE") {
		t.Errorf("unexpected report:\n%s", snd.sent[0])
	}
	if rec.analyses != 1 {
		t.Errorf("expected analysis recorded once, got %d", rec.analyses)
	}
}

func TestRunAnalysis_UnknownSymbol(t *testing.T) {
	s, _, rec := newTestScheduler(&collector.MockFetcher{Price: 150, Unknown: map[string]bool{"ZZZZ": true}})
	got := s.RunAnalysis("ZZZZ", model.HorizonShort, 3)
	if !strings.Contains(got, "not found") {
		t.Errorf("expected unavailable message, got %q", got)
	}
	if len(rec.failures) != 1 || rec.failures[0].Symbol != "ZZZZ" {
		t.Errorf("expected failure recorded for ZZZZ, got %+v", rec.failures)
	}
	if rec.analyses != 0 {
		t.Error("nothing should be recorded as a successful analysis")
	}
}

func TestRunAnalysis_FetchError(t *testing.T) {
	s, _, rec := newTestScheduler(&collector.MockFetcher{Err: errors.New("upstream down")})
	got := s.RunAnalysis("AAPL", model.HorizonShort, 3)
	if !strings.Contains(got, "upstream down") {
		t.Errorf("expected failure message, got %q", got)
	}
	if len(rec.failures) != 1 {
		t.Errorf("expected 1 failure recorded, got %d", len(rec.failures))
	}
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockFetcher{Price: 150})

	tests := []struct {
		command string
		want    string
	}{
		{"/help", "/analyze"},
		{"hello", "/analyze"},
		{"", "/analyze"},
		{"/analyze msft long 5", "MSFT Stock Summary"},
		{"/analyze@PlannerBot tsla 6M", "Mid Term (6M)"},
		{"/analyze AAPL WEEK", "unknown horizon"},
		{"/analyze AAPL SHORT 9", "between 1 and 5"},
		{"/risk", "3/5"},
		{"/risk x", "between 1 and 5"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			if got := s.HandleCommand(tt.command); !strings.Contains(got, tt.want) {
				t.Errorf("HandleCommand(%q) = %q, want substring %q", tt.command, got, tt.want)
			}
		})
	}
}

func TestHandleCommand_RiskUpdatesDefault(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockFetcher{Price: 150})
	if got := s.HandleCommand("/risk 5"); !strings.Contains(got, "HIGH") {
		t.Errorf("unexpected reply: %q", got)
	}
	if s.Defaults().RiskScore != 5 {
		t.Errorf("expected default risk 5, got %d", s.Defaults().RiskScore)
	}
	if got := s.HandleCommand("/analyze"); !strings.Contains(got, "risk 5/5, HIGH") {
		t.Errorf("expected analysis to use updated risk:\n%s", got)
	}
}

func TestRegisterAll_InvalidCron(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockFetcher{Price: 150})
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.RegisterAll("0 0 22 * * 1-5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleCommand_PersistsPreferences(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockFetcher{Price: 150})
	s.PrefsPath = filepath.Join(t.TempDir(), "prefs.json")

	s.HandleCommand("/ticker msft")
	s.HandleCommand("/horizon 1y")
	s.HandleCommand("/risk 1")

	p, err := prefs.Load(s.PrefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.Ticker != "MSFT" || p.Horizon != model.HorizonLong || p.RiskScore != 1 {
		t.Errorf("unexpected saved preferences: %+v", p)
	}

	d := Defaults{Ticker: "AAPL", Horizon: model.HorizonShort, RiskScore: 3}.WithPreferences(p)
	if d != s.Defaults() {
		t.Errorf("WithPreferences = %+v, want %+v", d, s.Defaults())
	}
}

func TestDefaults_WithPreferencesKeepsUnset(t *testing.T) {
	base := Defaults{Ticker: "AAPL", Horizon: model.HorizonShort, RiskScore: 3}
	if got := base.WithPreferences(&prefs.Preferences{RiskScore: 5}); got.Ticker != "AAPL" || got.Horizon != model.HorizonShort || got.RiskScore != 5 {
		t.Errorf("unexpected merge: %+v", got)
	}
	if got := base.WithPreferences(nil); got != base {
		t.Errorf("nil preferences should not change defaults: %+v", got)
	}
}
