package calculator

import (
	"database/sql"
	"math"

	"github.com/samber/lo"
)

// TradingDaysPerYear is used to annualise daily volatility.
const TradingDaysPerYear = 252

// DailyReturns returns the fractional change from the previous close.
// The first value is always invalid.
func DailyReturns(prices []float64) []sql.NullFloat64 {
	out := make([]sql.NullFloat64, len(prices))
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		out[i] = sql.NullFloat64{Float64: (prices[i] - prev) / prev, Valid: true}
	}
	return out
}

// Volatility returns the annualised sample standard deviation of the valid returns.
// ok is false when fewer than two returns are valid.
func Volatility(returns []sql.NullFloat64) (vol float64, ok bool) {
	valid := lo.FilterMap(returns, func(r sql.NullFloat64, _ int) (float64, bool) {
		return r.Float64, r.Valid
	})
	if len(valid) < 2 {
		return 0, false
	}
	mean := lo.Sum(valid) / float64(len(valid))
	sumSq := lo.SumBy(valid, func(r float64) float64 {
		d := r - mean
		return d * d
	})
	variance := sumSq / float64(len(valid)-1)
	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear), true
}
