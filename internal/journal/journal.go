// Package journal keeps a SQLite record of every notification and daily
// report a run produces. It is an audit trail; worlds are never restored
// from it.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/talgya/storefront/internal/catalog"
	"github.com/talgya/storefront/internal/engine"
)

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("journal: no run started")

// Run is one game session.
type Run struct {
	ID         string    `db:"id" json:"id"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	Difficulty string    `db:"difficulty" json:"difficulty"`
	Seed       int64     `db:"seed" json:"seed"`
}

// Journal wraps a SQLite connection and the current run.
type Journal struct {
	conn *sqlx.DB

	mu  sync.Mutex
	run string
}

// Open opens or creates a journal database at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		difficulty TEXT NOT NULL,
		seed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		day INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		total_cash TEXT NOT NULL,
		economy_factor REAL NOT NULL,
		trend TEXT NOT NULL,
		stores_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_run ON notifications(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_daily_reports_run ON daily_reports(run_id, day);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// StartRun registers a new run; later records are attributed to it.
func (j *Journal) StartRun(difficulty string, seed int64) (string, error) {
	id := uuid.NewString()
	_, err := j.conn.Exec(
		"INSERT INTO runs (id, started_at, difficulty, seed) VALUES (?, ?, ?, ?)",
		id, time.Now().UTC(), difficulty, seed,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	if err := j.SaveMeta("last_run", id); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}

	j.mu.Lock()
	j.run = id
	j.mu.Unlock()
	slog.Info("journal run started", "run", id, "difficulty", difficulty)
	return id, nil
}

// RunID returns the current run, or "" before StartRun.
func (j *Journal) RunID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.run
}

func (j *Journal) currentRun() (string, error) {
	if id := j.RunID(); id != "" {
		return id, nil
	}
	return "", ErrNoRun
}

// Runs lists every run, newest first.
func (j *Journal) Runs() ([]Run, error) {
	var runs []Run
	err := j.conn.Select(&runs, "SELECT id, started_at, difficulty, seed FROM runs ORDER BY started_at DESC")
	return runs, err
}

// RecordNotification appends a notification to the current run.
func (j *Journal) RecordNotification(n engine.Notification) error {
	run, err := j.currentRun()
	if err != nil {
		return err
	}
	_, err = j.conn.Exec(
		"INSERT INTO notifications (run_id, tick, day, hour, category, message) VALUES (?, ?, ?, ?, ?, ?)",
		run, n.Tick, n.Day, n.Hour, n.Category, n.Message,
	)
	return err
}

// RecordDailyReport appends a daily report to the current run.
func (j *Journal) RecordDailyReport(r engine.DailyReport) error {
	run, err := j.currentRun()
	if err != nil {
		return err
	}
	storesJSON, err := json.Marshal(r.Stores)
	if err != nil {
		return fmt.Errorf("marshal stores: %w", err)
	}
	_, err = j.conn.Exec(
		`INSERT INTO daily_reports (run_id, day, tick, total_cash, economy_factor, trend, stores_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run, r.Day, r.Tick, r.TotalCash.String(), r.EconomyFactor, string(r.Trend), string(storesJSON),
	)
	return err
}

// RecentNotifications returns the most recent N notifications of the
// current run, newest first.
func (j *Journal) RecentNotifications(limit int) ([]engine.Notification, error) {
	run, err := j.currentRun()
	if err != nil {
		return nil, err
	}
	var notes []engine.Notification
	err = j.conn.Select(&notes,
		"SELECT tick, day, hour, category, message FROM notifications WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		run, limit,
	)
	return notes, err
}

type reportRow struct {
	Day           int     `db:"day"`
	Tick          uint64  `db:"tick"`
	TotalCash     string  `db:"total_cash"`
	EconomyFactor float64 `db:"economy_factor"`
	Trend         string  `db:"trend"`
	StoresJSON    string  `db:"stores_json"`
}

// DailyReports returns every daily report of a run in day order.
func (j *Journal) DailyReports(runID string) ([]engine.DailyReport, error) {
	var rows []reportRow
	err := j.conn.Select(&rows,
		"SELECT day, tick, total_cash, economy_factor, trend, stores_json FROM daily_reports WHERE run_id = ? ORDER BY day",
		runID,
	)
	if err != nil {
		return nil, err
	}

	reports := make([]engine.DailyReport, 0, len(rows))
	for _, row := range rows {
		cash, err := decimal.NewFromString(row.TotalCash)
		if err != nil {
			return nil, fmt.Errorf("day %d total cash: %w", row.Day, err)
		}
		r := engine.DailyReport{
			Day:           row.Day,
			Tick:          row.Tick,
			TotalCash:     cash,
			EconomyFactor: row.EconomyFactor,
			Trend:         catalog.SKU(row.Trend),
		}
		if err := json.Unmarshal([]byte(row.StoresJSON), &r.Stores); err != nil {
			return nil, fmt.Errorf("day %d stores: %w", row.Day, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// SaveMeta stores a key-value pair.
func (j *Journal) SaveMeta(key, value string) error {
	_, err := j.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (j *Journal) GetMeta(key string) (string, error) {
	var value string
	err := j.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
