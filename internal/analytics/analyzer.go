// Package analytics composes the indicator, forecast and recommendation
// engines over one price series.
package analytics

import (
	"errors"
	"fmt"

	"FinPlanner/internal/calculator"
	"FinPlanner/internal/forecast"
	"FinPlanner/internal/model"
	"FinPlanner/internal/recommend"
)

// Default indicator windows, in trading days.
const (
	DefaultSMAWindow = 50
	DefaultEMASpan   = 20
)

// ErrEmptySeries is returned when there is no historical data to analyse.
var ErrEmptySeries = errors.New("no historical data available")

// Config holds the ticker-independent analysis parameters.
type Config struct {
	SMAWindow int
	EMASpan   int
}

// DefaultConfig returns the documented default windows.
func DefaultConfig() Config {
	return Config{SMAWindow: DefaultSMAWindow, EMASpan: DefaultEMASpan}
}

// Analyzer runs the analytics pipeline. It holds no per-call state and is
// safe for concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an Analyzer. Zero windows fall back to the defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.SMAWindow == 0 {
		cfg.SMAWindow = DefaultSMAWindow
	}
	if cfg.EMASpan == 0 {
		cfg.EMASpan = DefaultEMASpan
	}
	return &Analyzer{cfg: cfg}
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Analyze computes indicators, the trend forecast for the horizon preset and
// the risk recommendation. No bundle is returned on any error.
func (a *Analyzer) Analyze(series model.PriceSeries, horizon model.Horizon, riskScore int) (*model.AnalysisBundle, error) {
	if series.IsEmpty() {
		return nil, ErrEmptySeries
	}
	if !horizon.Valid() {
		return nil, fmt.Errorf("%w: unknown preset %q", forecast.ErrInvalidHorizon, horizon)
	}

	owned := series.Clone()

	indicators, err := calculator.ComputeIndicators(owned, a.cfg.SMAWindow, a.cfg.EMASpan)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}

	fc, err := forecast.Forecast(owned, horizon.Days())
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", horizon, err)
	}

	rec, err := recommend.Recommend(riskScore)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	return &model.AnalysisBundle{
		Series:         owned,
		Indicators:     indicators,
		Forecast:       fc,
		Horizon:        horizon,
		Recommendation: rec,
	}, nil
}
