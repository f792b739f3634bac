package calculator

import (
	"errors"
	"math"

	"FinPlanner/internal/model"
)

// Calculate52WeekRange scans the most recent 252 trading days and returns the high and low.
func Calculate52WeekRange(points []model.PricePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no price points provided")
	}
	n := len(points)
	start := max(n-TradingDaysPerYear, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		// bars without intraday extremes fall back to the close
		h, l := points[i].High, points[i].Low
		if h == 0 {
			h = points[i].Close
		}
		if l == 0 {
			l = points[i].Close
		}
		high = math.Max(high, h)
		low = math.Min(low, l)
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
