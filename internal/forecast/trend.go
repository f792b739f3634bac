// Package forecast projects a least-squares price trend over future calendar days.
package forecast

import (
	"errors"
	"fmt"

	"FinPlanner/internal/model"
)

var (
	// ErrInsufficientData is returned when the series cannot support a regression.
	ErrInsufficientData = errors.New("insufficient data for trend regression")
	// ErrInvalidHorizon is returned for a non-positive or unknown horizon.
	ErrInvalidHorizon = errors.New("invalid forecast horizon")
)

// Line is a fitted close = Slope*offset + Intercept, with offset in calendar
// days from Origin.
type Line struct {
	Origin    model.PricePoint
	Slope     float64
	Intercept float64
}

// At evaluates the line at the given day offset.
func (l Line) At(offset int) float64 {
	return l.Slope*float64(offset) + l.Intercept
}

// Fit computes the ordinary least-squares line through (day offset, close).
func Fit(series model.PriceSeries) (Line, error) {
	n := series.Len()
	if n < 2 {
		return Line{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrInsufficientData, n)
	}

	origin := series.Points[0]
	xs := make([]float64, n)
	var xMean, yMean float64
	for i, p := range series.Points {
		xs[i] = float64(model.DaysBetween(origin.Date, p.Date))
		xMean += xs[i]
		yMean += p.Close
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var num, den float64
	for i, p := range series.Points {
		dx := xs[i] - xMean
		num += dx * (p.Close - yMean)
		den += dx * dx
	}
	if den == 0 {
		return Line{}, fmt.Errorf("%w: all points share one date", ErrInsufficientData)
	}

	slope := num / den
	return Line{
		Origin:    origin,
		Slope:     slope,
		Intercept: yMean - slope*xMean,
	}, nil
}

// Forecast fits the trend and evaluates it on each of the horizon calendar days
// after the last historical date. Weekends are included and the output is not
// clamped, so long horizons may produce implausible or negative prices.
func Forecast(series model.PriceSeries, horizon int) (model.ForecastResult, error) {
	if horizon <= 0 {
		return model.ForecastResult{}, fmt.Errorf("%w: %d days", ErrInvalidHorizon, horizon)
	}
	line, err := Fit(series)
	if err != nil {
		return model.ForecastResult{}, err
	}

	last := series.Last().Date
	lastOffset := model.DaysBetween(line.Origin.Date, last)
	points := make([]model.ForecastPoint, horizon)
	for i := 1; i <= horizon; i++ {
		points[i-1] = model.ForecastPoint{
			Date:           model.Day(last).AddDate(0, 0, i),
			PredictedClose: line.At(lastOffset + i),
		}
	}

	return model.ForecastResult{
		Slope:     line.Slope,
		Intercept: line.Intercept,
		Points:    points,
	}, nil
}
