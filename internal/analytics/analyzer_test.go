package analytics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"FinPlanner/internal/forecast"
	"FinPlanner/internal/model"
	"FinPlanner/internal/recommend"
)

func makeSeries(n int) model.PriceSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, n)
	for i := range points {
		c := 100 + float64(i)*0.5
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return model.PriceSeries{Symbol: "AAPL", Points: points}
}

func TestNewAnalyzer_Defaults(t *testing.T) {
	a := NewAnalyzer(Config{})
	if got := a.Config(); got != DefaultConfig() {
		t.Errorf("expected defaults %+v, got %+v", DefaultConfig(), got)
	}
	b := NewAnalyzer(Config{SMAWindow: 10, EMASpan: 5})
	if got := b.Config(); got.SMAWindow != 10 || got.EMASpan != 5 {
		t.Errorf("explicit windows overridden: %+v", got)
	}
}

func TestAnalyze_Bundle(t *testing.T) {
	series := makeSeries(120)
	bundle, err := NewAnalyzer(DefaultConfig()).Analyze(series, model.HorizonShort, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Indicators.Points) != series.Len() {
		t.Errorf("indicator length %d, want %d", len(bundle.Indicators.Points), series.Len())
	}
	if bundle.Indicators.SMAWindow != 50 || bundle.Indicators.EMASpan != 20 {
		t.Errorf("unexpected windows %d/%d", bundle.Indicators.SMAWindow, bundle.Indicators.EMASpan)
	}
	if len(bundle.Forecast.Points) != 30 {
		t.Errorf("forecast length %d, want 30", len(bundle.Forecast.Points))
	}
	if bundle.Tier() != model.RiskModerate {
		t.Errorf("expected MODERATE, got %s", bundle.Tier())
	}
	if bundle.Advice() == "" {
		t.Error("expected advice text")
	}
	if bundle.Horizon != model.HorizonShort {
		t.Errorf("expected SHORT horizon, got %s", bundle.Horizon)
	}
}

func TestAnalyze_HorizonPresets(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	series := makeSeries(10)
	for h, want := range map[model.Horizon]int{model.HorizonShort: 30, model.HorizonMid: 180, model.HorizonLong: 365} {
		bundle, err := a.Analyze(series, h, 1)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", h, err)
		}
		if len(bundle.Forecast.Points) != want {
			t.Errorf("%s: forecast length %d, want %d", h, len(bundle.Forecast.Points), want)
		}
	}
}

func TestAnalyze_Errors(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	tests := []struct {
		name    string
		series  model.PriceSeries
		horizon model.Horizon
		risk    int
		want    error
	}{
		{"empty series", model.PriceSeries{Symbol: "NOPE"}, model.HorizonShort, 3, ErrEmptySeries},
		{"single point", makeSeries(1), model.HorizonShort, 3, forecast.ErrInsufficientData},
		{"unknown horizon", makeSeries(10), model.Horizon("WEEK"), 3, forecast.ErrInvalidHorizon},
		{"risk too low", makeSeries(10), model.HorizonShort, 0, recommend.ErrInvalidInput},
		{"risk too high", makeSeries(10), model.HorizonShort, 6, recommend.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := a.Analyze(tt.series, tt.horizon, tt.risk)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
			if bundle != nil {
				t.Error("expected no bundle on error")
			}
		})
	}
}

func TestAnalyze_DoesNotAliasInput(t *testing.T) {
	series := makeSeries(5)
	bundle, err := NewAnalyzer(DefaultConfig()).Analyze(series, model.HorizonShort, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	series.Points[0].Close = -1
	if bundle.Series.Points[0].Close == -1 {
		t.Error("bundle series shares storage with caller input")
	}
}

func TestAnalyze_Concurrent(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	series := makeSeries(200)
	want, err := a.Analyze(series, model.HorizonMid, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := a.Analyze(series, model.HorizonMid, 5)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			for j := range want.Forecast.Points {
				if got.Forecast.Points[j] != want.Forecast.Points[j] {
					t.Errorf("forecast point %d differs across goroutines", j)
					return
				}
			}
		}()
	}
	wg.Wait()
}
