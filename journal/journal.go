// Package journal keeps the history of sync runs in a SQLite database.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/billsync"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Journal records sync runs.
type Journal struct {
	db *sql.DB
}

// Run is a recorded sync run.
type Run struct {
	ID       string
	Ledger   string // ledger file the run synchronized
	Date     billsync.Date
	Started  time.Time
	Finished time.Time
	Appended int
	Skipped  int
	Errored  int
	Saved    bool
	DryRun   bool
	Err      string // run level error, empty on success
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to journal %q: %w", path, err)
	}
	// a single writer avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("cannot execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot apply journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores the summary of a run on ledger and returns the new run ID.
// runErr is the error returned by the run, if any.
func (j *Journal) Record(ctx context.Context, ledger string, s *billsync.Summary, dryRun bool, runErr error) (string, error) {
	id := uuid.NewString()
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, ledger, date, started, finished, appended, skipped, errored, saved, dry_run, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ledger, s.Date.String(), formatTime(s.Started), formatTime(s.Finished),
		s.Appended(), s.Skipped(), s.Errored(), s.Saved, dryRun, errText)
	if err != nil {
		return "", fmt.Errorf("cannot record run: %w", err)
	}

	for i, o := range s.Outcomes {
		oerr := ""
		if o.Err != nil {
			oerr = o.Err.Error()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO outcomes (run_id, ordinal, account, kind, date, position, usage, cost, rate, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, o.Account, o.Kind.String(), o.Date.String(), o.Position,
			o.Usage.String(), o.Cost.String(), o.Rate.String(), oerr)
		if err != nil {
			return "", fmt.Errorf("cannot record outcome of account %s: %w", o.Account, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("cannot commit run: %w", err)
	}
	return id, nil
}

// Runs returns at most limit runs, most recent first. A non positive limit
// returns every run.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, ledger, date, started, finished, appended, skipped, errored, saved, dry_run, error
		FROM runs ORDER BY started DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			date              string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Ledger, &date, &started, &finished, &r.Appended, &r.Skipped, &r.Errored, &r.Saved, &r.DryRun, &r.Err); err != nil {
			return nil, fmt.Errorf("cannot scan run: %w", err)
		}
		if r.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		if r.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: invalid start time: %w", r.ID, err)
		}
		if r.Finished, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: invalid finish time: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ErrUnknownRun is returned when a run ID is not in the journal.
var ErrUnknownRun = errors.New("unknown run")

// Outcomes returns the per account outcomes of the run id, in processing order.
// Errors are restored as plain messages.
func (j *Journal) Outcomes(ctx context.Context, id string) ([]billsync.Outcome, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&n); err != nil {
		return nil, fmt.Errorf("cannot query run %s: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownRun, id)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT account, kind, date, position, usage, cost, rate, error
		FROM outcomes WHERE run_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return nil, fmt.Errorf("cannot query outcomes of run %s: %w", id, err)
	}
	defer rows.Close()

	var outcomes []billsync.Outcome
	for rows.Next() {
		var (
			o                             billsync.Outcome
			kind, date, usage, cost, rate string
			errText                       string
		)
		if err := rows.Scan(&o.Account, &kind, &date, &o.Position, &usage, &cost, &rate, &errText); err != nil {
			return nil, fmt.Errorf("cannot scan outcome: %w", err)
		}
		o.Kind = kinds[kind]
		if o.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("outcome of account %s: %w", o.Account, err)
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{{&o.Usage, usage}, {&o.Cost, cost}, {&o.Rate, rate}} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("outcome of account %s: %w", o.Account, err)
			}
		}
		if errText != "" {
			o.Err = errors.New(errText)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

var kinds = map[string]billsync.OutcomeKind{
	billsync.Appended.String(): billsync.Appended,
	billsync.Skipped.String():  billsync.Skipped,
	billsync.Failed.String():   billsync.Failed,
}

// timeLayout has a fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseDate(s string) (billsync.Date, error) {
	if s == "" {
		return billsync.Date{}, nil
	}
	return billsync.ParseDate(s)
}
