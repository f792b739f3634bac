package model

import (
	"errors"
	"fmt"
	"time"
)

// PricePoint represents a single daily bar.
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries holds the daily history of one instrument, oldest first.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Metadata holds descriptive fields used only for display.
type Metadata struct {
	Name         string
	Industry     string
	MarketCap    int64
	CurrentPrice float64
	High52w      float64
	Low52w       float64
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// IsEmpty reports whether the series has no points.
func (s PriceSeries) IsEmpty() bool { return len(s.Points) == 0 }

// Closes returns a new slice of closing prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent point. The series must not be empty.
func (s PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Clone returns a copy that shares no backing array with s.
func (s PriceSeries) Clone() PriceSeries {
	points := make([]PricePoint, len(s.Points))
	copy(points, s.Points)
	return PriceSeries{Symbol: s.Symbol, Points: points}
}

// Validate checks ordering and value constraints.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if p.Close <= 0 {
			return fmt.Errorf("point %d (%s): close must be positive", i, p.Date.Format(time.DateOnly))
		}
		if p.Volume < 0 {
			return fmt.Errorf("point %d (%s): volume must be non-negative", i, p.Date.Format(time.DateOnly))
		}
		if i > 0 && !Day(p.Date).After(Day(s.Points[i-1].Date)) {
			return errors.New("dates must be strictly increasing")
		}
	}
	return nil
}
