package calculator

import (
	"database/sql"
	"errors"

	"github.com/samber/lo"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return lo.Sum(prices[len(prices)-period:]) / float64(period), nil
}

// SMASeries returns the rolling simple moving average at every index.
// Values are invalid for indices before period-1.
func SMASeries(prices []float64, period int) ([]sql.NullFloat64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]sql.NullFloat64, len(prices))
	for i := period - 1; i < len(prices); i++ {
		// summed per window, no running total
		v, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = sql.NullFloat64{Float64: v, Valid: true}
	}
	return out, nil
}

// EMASeries returns the recursive exponential moving average with alpha = 2/(span+1).
// The first value is seeded with the first price, so every index is defined.
func EMASeries(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}
