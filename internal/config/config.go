package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FinPlanner/internal/analytics"
	"FinPlanner/internal/model"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		Ticker       string `yaml:"ticker" default:"AAPL" validate:"required"`
		HistoryYears int    `yaml:"history_years" default:"2" validate:"gt=0"`
	} `yaml:"data_source"`
	Analysis struct {
		Horizon   string `yaml:"horizon" default:"SHORT" validate:"oneof=SHORT MID LONG"`
		RiskScore int    `yaml:"risk_score" default:"3" validate:"min=1,max=5"`
		SMAWindow int    `yaml:"sma_window" default:"50" validate:"gt=0"`
		EMASpan   int    `yaml:"ema_span" default:"20" validate:"gt=0"`
	} `yaml:"analysis"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron" default:"0 0 22 * * 1-5" validate:"required"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/fin_planner.db"`
		PrefsFile  string `yaml:"prefs_file" default:"data/preferences.json"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file on top of the tag defaults, then applies
// .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TICKER"); v != "" {
		cfg.DataSource.Ticker = v
	}
	if v := os.Getenv("HORIZON"); v != "" {
		cfg.Analysis.Horizon = v
	}
	if v := os.Getenv("RISK_SCORE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse RISK_SCORE: %w", err)
		}
		cfg.Analysis.RiskScore = n
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PREFS_FILE"); v != "" {
		cfg.Database.PrefsFile = v
	}

	cfg.DataSource.Ticker = strings.ToUpper(strings.TrimSpace(cfg.DataSource.Ticker))
	if h, err := model.ParseHorizon(cfg.Analysis.Horizon); err == nil {
		cfg.Analysis.Horizon = string(h)
	}

	return cfg, nil
}

// Validate checks the analysis parameters and data source settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// ValidateTelegram checks the fields required to run the bot.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required")
	}
	return nil
}

// Horizon returns the configured horizon preset.
func (c *Config) Horizon() model.Horizon {
	return model.Horizon(c.Analysis.Horizon)
}

// AnalyticsConfig returns the orchestrator configuration.
func (c *Config) AnalyticsConfig() analytics.Config {
	return analytics.Config{SMAWindow: c.Analysis.SMAWindow, EMASpan: c.Analysis.EMASpan}
}
