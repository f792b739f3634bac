// Package calculator derives indicator series from daily price history.
// Every function is pure: inputs are never modified and each call
// allocates its own output.
package calculator

import (
	"fmt"

	"FinPlanner/internal/model"
)

// ComputeIndicators builds the SMA, EMA and daily-return columns for a series.
// A series shorter than smaWindow yields an all-invalid SMA column, not an error.
func ComputeIndicators(series model.PriceSeries, smaWindow, emaSpan int) (model.IndicatorSeries, error) {
	closes := series.Closes()

	sma, err := SMASeries(closes, smaWindow)
	if err != nil {
		return model.IndicatorSeries{}, fmt.Errorf("sma(%d): %w", smaWindow, err)
	}
	ema, err := EMASeries(closes, emaSpan)
	if err != nil {
		return model.IndicatorSeries{}, fmt.Errorf("ema(%d): %w", emaSpan, err)
	}
	returns := DailyReturns(closes)

	points := make([]model.IndicatorPoint, len(closes))
	for i, p := range series.Points {
		points[i] = model.IndicatorPoint{
			Date:   p.Date,
			SMA:    sma[i],
			EMA:    ema[i],
			Return: returns[i],
		}
	}
	return model.IndicatorSeries{
		SMAWindow: smaWindow,
		EMASpan:   emaSpan,
		Points:    points,
	}, nil
}
