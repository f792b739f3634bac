package model

// RiskTier is a coarse advisory classification.
type RiskTier string

const (
	RiskLow      RiskTier = "LOW"
	RiskModerate RiskTier = "MODERATE"
	RiskHigh     RiskTier = "HIGH"
)

// Recommendation is the output of the recommendation engine.
type Recommendation struct {
	Score  int
	Tier   RiskTier
	Advice string
}

// AnalysisBundle is the aggregate output of one analysis run.
type AnalysisBundle struct {
	Series         PriceSeries
	Indicators     IndicatorSeries
	Forecast       ForecastResult
	Horizon        Horizon
	Recommendation Recommendation
}

// Tier returns the recommendation tier.
func (b *AnalysisBundle) Tier() RiskTier { return b.Recommendation.Tier }

// Advice returns the advisory text.
func (b *AnalysisBundle) Advice() string { return b.Recommendation.Advice }
