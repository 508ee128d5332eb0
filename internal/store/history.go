// Package store provides a SQLite-backed history of finished runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/lifeshock/internal/sim"

	_ "modernc.org/sqlite" // register sqlite driver
)

// History stores finished simulation runs.
type History struct {
	db *sql.DB
}

// Record is a stored run.
type Record struct {
	sim.Result
	Player string
}

// Stats aggregates the stored runs.
type Stats struct {
	Runs        int
	Survived    int
	BestBalance int64
	AvgBalance  float64
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// SaveRun stores a finished run and its selections. It assigns and returns
// a new id when r.ID is empty.
func (h *History) SaveRun(r sim.Result, player string) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tx, err := h.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	startedAt := ""
	if !r.StartedAt.IsZero() {
		startedAt = r.StartedAt.UTC().Format(time.RFC3339)
	}
	finishedAt := r.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	survived := 0
	if r.Survived {
		survived = 1
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO runs
		(run_id, scenario, player, started_at, finished_at, baseline_income, final_income,
		 expenses, fixed_expenses, flex_expenses, balance, survived, reason, seconds_left)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Scenario, player, startedAt, finishedAt.UTC().Format(time.RFC3339),
		r.BaselineIncome, r.FinalIncome, r.Expenses, r.Fixed, r.Flexible, r.Balance,
		survived, string(r.Reason), r.SecondsLeft,
	)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec("DELETE FROM run_selections WHERE run_id = ?", r.ID)
	if err != nil {
		return "", err
	}

	for i, l := range r.Lines {
		flexible := 0
		if l.Flexible {
			flexible = 1
		}
		_, err = tx.Exec(`INSERT INTO run_selections
			(run_id, category, category_title, option_id, label, cost, flexible, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, l.CategoryID, l.CategoryTitle, l.OptionID, l.Label, l.Cost, flexible, i,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return r.ID, nil
}

// Recent returns up to limit runs, newest first, with their selections.
func (h *History) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	// One read transaction so the selections match the runs listed.
	tx, err := h.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`SELECT
		run_id, scenario, player, started_at, finished_at, baseline_income, final_income,
		expenses, fixed_expenses, flex_expenses, balance, survived, reason, seconds_left
		FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var player, startStr sql.NullString
		var finishStr, reason string
		var survived int

		err := rows.Scan(
			&rec.ID, &rec.Scenario, &player, &startStr, &finishStr,
			&rec.BaselineIncome, &rec.FinalIncome, &rec.Expenses, &rec.Fixed, &rec.Flexible,
			&rec.Balance, &survived, &reason, &rec.SecondsLeft,
		)
		if err != nil {
			return nil, err
		}

		rec.Survived = survived != 0
		rec.Reason = sim.Reason(reason)
		if player.Valid {
			rec.Player = player.String
		}
		if startStr.Valid && startStr.String != "" {
			rec.StartedAt, _ = time.Parse(time.RFC3339, startStr.String)
		}
		rec.FinishedAt, _ = time.Parse(time.RFC3339, finishStr)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	if len(records) == 0 {
		return records, nil
	}

	lines, err := recentLines(tx, limit)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Lines = lines[records[i].ID]
	}
	return records, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// recentLines loads the selections of the runs Recent(limit) returns.
func recentLines(q querier, limit int) (map[string][]sim.Line, error) {
	rows, err := q.Query(`SELECT
		run_id, category, category_title, option_id, label, cost, flexible
		FROM run_selections
		WHERE run_id IN (SELECT run_id FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?)
		ORDER BY run_id, position`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lines := make(map[string][]sim.Line)
	for rows.Next() {
		var runID string
		var l sim.Line
		var title, label sql.NullString
		var flexible int
		if err := rows.Scan(&runID, &l.CategoryID, &title, &l.OptionID, &label, &l.Cost, &flexible); err != nil {
			return nil, err
		}
		l.CategoryTitle = title.String
		l.Label = label.String
		l.Flexible = flexible != 0
		lines[runID] = append(lines[runID], l)
	}
	return lines, rows.Err()
}

// Stats returns aggregate figures over every stored run.
func (h *History) Stats() (Stats, error) {
	var st Stats
	var best sql.NullInt64
	var avg sql.NullFloat64
	err := h.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(survived), 0), MAX(balance), AVG(balance) FROM runs`).
		Scan(&st.Runs, &st.Survived, &best, &avg)
	if err != nil {
		return st, err
	}
	st.BestBalance = best.Int64
	st.AvgBalance = avg.Float64
	return st, nil
}

// DeleteRun removes a run and its selections.
func (h *History) DeleteRun(id string) error {
	_, err := h.db.Exec("DELETE FROM runs WHERE run_id = ?", id)
	return err
}

// Clear removes every stored run.
func (h *History) Clear() error {
	_, err := h.db.Exec("DELETE FROM runs")
	return err
}
