package model

import (
	"database/sql"
	"time"
)

// IndicatorPoint holds the derived values for one price date.
// SMA and Return are invalid where history is insufficient.
type IndicatorPoint struct {
	Date   time.Time
	SMA    sql.NullFloat64
	EMA    float64
	Return sql.NullFloat64
}

// IndicatorSeries is aligned index-for-index with the PriceSeries it was computed from.
type IndicatorSeries struct {
	SMAWindow int
	EMASpan   int
	Points    []IndicatorPoint
}

// Latest returns the last indicator point and false if the series is empty.
func (s IndicatorSeries) Latest() (IndicatorPoint, bool) {
	if len(s.Points) == 0 {
		return IndicatorPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
