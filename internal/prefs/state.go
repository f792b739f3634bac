// Package prefs persists the analysis defaults a user changes from chat, so
// they survive restarts.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FinPlanner/internal/model"
	"FinPlanner/internal/recommend"
)

// Preferences are user overrides of the configured defaults. Zero fields mean
// "use the configured value".
type Preferences struct {
	Ticker    string        `json:"ticker,omitempty"`
	Horizon   model.Horizon `json:"horizon,omitempty"`
	RiskScore int           `json:"risk_score,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Load reads preferences from a JSON file. Returns zero preferences if the file doesn't exist.
func Load(filePath string) (*Preferences, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Preferences{}, nil
		}
		return nil, err
	}
	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	if p.Horizon != "" && !p.Horizon.Valid() {
		p.Horizon = ""
	}
	if p.RiskScore < 0 || p.RiskScore > recommend.MaxScore {
		p.RiskScore = 0
	}
	return &p, nil
}

// Save writes preferences to a JSON file, creating its directory if needed.
func Save(filePath string, p *Preferences) error {
	p.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
