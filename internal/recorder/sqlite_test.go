package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"FinPlanner/internal/analytics"
	"FinPlanner/internal/model"
)

func testBundle(t *testing.T) *model.AnalysisBundle {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, 60)
	for i := range points {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: 50 + float64(i)}
	}
	b, err := analytics.NewAnalyzer(analytics.DefaultConfig()).Analyze(
		model.PriceSeries{Symbol: "MSFT", Points: points}, model.HorizonShort, 4)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return b
}

func TestSQLiteRecorder(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer rec.Close()

	if err := rec.RecordAnalysis(testBundle(t)); err != nil {
		t.Fatalf("record analysis: %v", err)
	}
	if err := rec.RecordFailure(&FailureEvent{Symbol: "NOPE", Horizon: model.HorizonLong, RiskScore: 2, Reason: "no data"}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	var symbol, tier string
	var days int
	var lastSMA float64
	row := rec.db.QueryRow(`SELECT symbol, risk_tier, horizon_days, last_sma FROM analysis_runs`)
	if err := row.Scan(&symbol, &tier, &days, &lastSMA); err != nil {
		t.Fatalf("query run: %v", err)
	}
	if symbol != "MSFT" || tier != "MODERATE" || days != 30 {
		t.Errorf("unexpected run: %s %s %d", symbol, tier, days)
	}
	// mean of closes 60..109
	if lastSMA != 84.5 {
		t.Errorf("last_sma = %.4f, want 84.5", lastSMA)
	}

	var n int
	if err := rec.db.QueryRow(`SELECT COUNT(*) FROM forecast_points`).Scan(&n); err != nil {
		t.Fatalf("count forecast points: %v", err)
	}
	if n != 30 {
		t.Errorf("forecast points = %d, want 30", n)
	}
	if err := rec.db.QueryRow(`SELECT COUNT(*) FROM analysis_failures WHERE symbol = 'NOPE'`).Scan(&n); err != nil {
		t.Fatalf("count failures: %v", err)
	}
	if n != 1 {
		t.Errorf("failures = %d, want 1", n)
	}
}

func TestSQLiteRecorder_RejectsEmptyBundle(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer rec.Close()
	if err := rec.RecordAnalysis(&model.AnalysisBundle{}); err == nil {
		t.Error("expected error for empty bundle")
	}
}
