package recommend

import (
	"errors"
	"fmt"

	"FinPlanner/internal/model"
)

// Score bounds accepted by Recommend.
const (
	MinScore = 1
	MaxScore = 5
)

// ErrInvalidInput is returned for a risk score outside [MinScore, MaxScore].
var ErrInvalidInput = errors.New("risk score out of range")

// Tiers maps the highest score of each band to its tier, lowest band first.
var Tiers = []struct {
	MaxScore int
	Tier     model.RiskTier
	Advice   string
}{
	{2, model.RiskLow, "Low-risk: consider stable investments like ETFs or bonds."},
	{4, model.RiskModerate, "Moderate-risk: a balanced portfolio of growth and value stocks."},
	{5, model.RiskHigh, "High-risk: high-growth stocks with potential volatility."},
}

// Recommend maps a 1-5 risk score to a tier and advisory text.
func Recommend(score int) (model.Recommendation, error) {
	if score < MinScore || score > MaxScore {
		return model.Recommendation{}, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidInput, score, MinScore, MaxScore)
	}
	for _, t := range Tiers {
		if score <= t.MaxScore {
			return model.Recommendation{Score: score, Tier: t.Tier, Advice: t.Advice}, nil
		}
	}
	// unreachable while Tiers covers MaxScore
	return model.Recommendation{}, fmt.Errorf("%w: no tier for %d", ErrInvalidInput, score)
}
