package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"FinPlanner/internal/model"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers query history while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			points          INTEGER,
			first_date      TEXT,
			last_date       TEXT,
			last_close      REAL,
			sma_window      INTEGER,
			ema_span        INTEGER,
			last_sma        REAL,
			last_ema        REAL,
			last_return     REAL,
			horizon         TEXT,
			horizon_days    INTEGER,
			slope           REAL,
			intercept       REAL,
			final_forecast  REAL,
			risk_score      INTEGER,
			risk_tier       TEXT,
			advice          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON analysis_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			run_id          INTEGER NOT NULL REFERENCES analysis_runs(id),
			date            TEXT NOT NULL,
			predicted_close REAL,
			PRIMARY KEY (run_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS analysis_failures (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT,
			horizon    TEXT,
			risk_score INTEGER,
			reason     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON analysis_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAnalysis stores the run summary and its forecast points in one transaction.
func (r *SQLiteRecorder) RecordAnalysis(b *model.AnalysisBundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.Series.IsEmpty() {
		return fmt.Errorf("record analysis: empty series for %s", b.Series.Symbol)
	}

	first := b.Series.Points[0]
	last := b.Series.Last()
	var lastSMA, lastReturn sql.NullFloat64
	var lastEMA float64
	if ip, ok := b.Indicators.Latest(); ok {
		lastSMA, lastEMA, lastReturn = ip.SMA, ip.EMA, ip.Return
	}
	var finalForecast sql.NullFloat64
	if n := len(b.Forecast.Points); n > 0 {
		finalForecast = sql.NullFloat64{Float64: b.Forecast.Points[n-1].PredictedClose, Valid: true}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO analysis_runs
		(timestamp, symbol, points, first_date, last_date, last_close,
		 sma_window, ema_span, last_sma, last_ema, last_return,
		 horizon, horizon_days, slope, intercept, final_forecast,
		 risk_score, risk_tier, advice)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), b.Series.Symbol, b.Series.Len(),
		first.Date.Format(time.DateOnly), last.Date.Format(time.DateOnly), last.Close,
		b.Indicators.SMAWindow, b.Indicators.EMASpan, lastSMA, lastEMA, lastReturn,
		string(b.Horizon), len(b.Forecast.Points), b.Forecast.Slope, b.Forecast.Intercept, finalForecast,
		b.Recommendation.Score, string(b.Recommendation.Tier), b.Recommendation.Advice,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO forecast_points (run_id, date, predicted_close) VALUES (?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare forecast insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range b.Forecast.Points {
		if _, err := stmt.Exec(runID, p.Date.Format(time.DateOnly), p.PredictedClose); err != nil {
			return fmt.Errorf("insert forecast point: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordFailure(evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_failures
		(timestamp, symbol, horizon, risk_score, reason)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), evt.Symbol, string(evt.Horizon), evt.RiskScore, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
