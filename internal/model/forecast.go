package model

import (
	"fmt"
	"strings"
	"time"
)

// Horizon is a named forecast length preset.
type Horizon string

const (
	HorizonShort Horizon = "SHORT"
	HorizonMid   Horizon = "MID"
	HorizonLong  Horizon = "LONG"
)

// horizonDays maps each preset to a number of calendar days.
var horizonDays = map[Horizon]int{
	HorizonShort: 30,
	HorizonMid:   180,
	HorizonLong:  365,
}

var horizonAliases = map[string]Horizon{
	"SHORT": HorizonShort,
	"1M":    HorizonShort,
	"MID":   HorizonMid,
	"6M":    HorizonMid,
	"LONG":  HorizonLong,
	"1Y":    HorizonLong,
}

// Days returns the number of calendar days for the preset, or 0 for an unknown preset.
func (h Horizon) Days() int { return horizonDays[h] }

// Valid reports whether h is one of the known presets.
func (h Horizon) Valid() bool {
	_, ok := horizonDays[h]
	return ok
}

// Label returns a human-readable description of the preset.
func (h Horizon) Label() string {
	switch h {
	case HorizonShort:
		return "Short Term (1M)"
	case HorizonMid:
		return "Mid Term (6M)"
	case HorizonLong:
		return "Long Term (1Y)"
	default:
		return string(h)
	}
}

// ParseHorizon resolves a preset name or its 1M/6M/1Y alias, case-insensitively.
func ParseHorizon(s string) (Horizon, error) {
	if h, ok := horizonAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return h, nil
	}
	return "", fmt.Errorf("unknown horizon preset %q", s)
}

// ForecastPoint is one projected close.
type ForecastPoint struct {
	Date           time.Time
	PredictedClose float64
}

// ForecastResult holds the projected closes in date order and the fitted line.
type ForecastResult struct {
	Slope     float64 // price change per calendar day
	Intercept float64 // fitted close at the earliest historical date
	Points    []ForecastPoint
}
