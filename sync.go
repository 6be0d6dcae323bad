package billsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultDelay is the pause between two usage API calls.
const DefaultDelay = 5 * time.Second

// Run holds everything a single sync run needs.
type Run struct {
	Token string       // bearer token for the usage API
	Date  Date         // target date
	Store TabularStore // ledger, owned by the run: closed when Sync returns if it is an io.Closer

	// Accounts, if not empty, replaces the accounts found in the ledger.
	Accounts []string
	// DryRun appends rows in memory but never saves the store.
	DryRun bool
}

// Engine synchronizes a ledger with the usage API.
type Engine struct {
	Fetcher UsageFetcher
	// Delay between two fetches, zero means no delay.
	Delay time.Duration
	// AccountPattern extracts account numbers from building names, nil means DefaultAccountPattern.
	AccountPattern *regexp.Regexp

	wait func(ctx context.Context, d time.Duration) error // nil means sleep
}

// NewEngine returns an Engine using f with the default delay.
func NewEngine(f UsageFetcher) *Engine {
	return &Engine{Fetcher: f, Delay: DefaultDelay}
}

// Sync fetches the reading of every account for run.Date and appends the
// readings not yet recorded in the ledger.
//
// Per-account failures are reported in the Summary and never stop the run. The
// store is saved once, at the end, only if rows were appended. An error is
// returned only if the ledger cannot be loaded or persisted, or if ctx is done,
// in which case nothing is saved.
func (e *Engine) Sync(ctx context.Context, run Run) (summary *Summary, err error) {
	if closer, ok := run.Store.(io.Closer); ok {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				log.Warn("cannot close ledger", "err", cerr)
			}
		}()
	}

	summary = &Summary{Date: run.Date, Started: time.Now()}
	defer func() { summary.Finished = time.Now() }()

	rows, err := run.Store.ReadAll()
	if err != nil {
		return summary, fmt.Errorf("cannot read ledger: %w", err)
	}
	AssignAccounts(rows, e.AccountPattern)
	dir := NewDirectory(rows)
	index := NewIndex(rows)
	initial := len(rows)

	accounts := dir.Accounts()
	if len(run.Accounts) > 0 {
		accounts = slices.Compact(slices.Sorted(slices.Values(run.Accounts)))
	}
	log.Info("ledger loaded", "rows", initial, "accounts", len(accounts), "date", run.Date)

	for i, account := range accounts {
		if i > 0 && e.Delay > 0 {
			if err := e.pause(ctx); err != nil {
				return summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, row, err := e.syncAccount(ctx, run, account, dir, index)
		if err != nil {
			return summary, err
		}
		if outcome.Kind == Appended {
			pos, err := run.Store.Append(row, dir[account].Template)
			if err != nil {
				return summary, fmt.Errorf("%w: cannot append row for account %s: %v", ErrPersist, account, err)
			}
			row.Position = pos
			outcome.Position = pos
			rows = append(rows, row)
			index.Add(row)
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
		logOutcome(outcome)
	}

	log.Debug("accounts processed", "rows", len(rows), "initial", initial)

	switch {
	case summary.Appended() == 0:
		log.Info("no changes to save")
	case run.DryRun:
		log.Info("dry run, ledger not saved", "appended", summary.Appended())
	default:
		if err := run.Store.Save(); err != nil {
			return summary, fmt.Errorf("%w: %v", ErrPersist, err)
		}
		summary.Saved = true
		log.Info("ledger saved", "appended", summary.Appended())
	}
	return summary, nil
}

// syncAccount fetches the reading of account and decides what to do with it.
// The returned error is only set when the run must stop.
func (e *Engine) syncAccount(ctx context.Context, run Run, account string, dir Directory, index Index) (Outcome, LedgerRow, error) {
	outcome := Outcome{Account: account, Kind: Failed}

	reading, err := e.Fetcher.Fetch(ctx, account, run.Date, run.Token)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return outcome, LedgerRow{}, ctxErr
		}
		outcome.Err = err
		return outcome, LedgerRow{}, nil
	}

	on := reading.Date()
	outcome.Date = on
	outcome.Usage = reading.Usage
	outcome.Cost = reading.Cost

	if index.Has(account, on) {
		outcome.Kind = Skipped
		outcome.Err = fmt.Errorf("%w: account %s on %s", ErrDuplicate, account, on)
		return outcome, LedgerRow{}, nil
	}

	profile, ok := dir[account]
	if !ok {
		outcome.Err = fmt.Errorf("%w: account %s has no row in the ledger", ErrTemplateMissing, account)
		return outcome, LedgerRow{}, nil
	}

	outcome.Kind = Appended
	outcome.Rate = Rate(reading.Usage, reading.Cost)
	row := LedgerRow{
		Date:          on,
		BuildingName:  profile.BuildingName,
		AccountNumber: account,
		Usage:         reading.Usage,
		Rate:          outcome.Rate,
		Cost:          reading.Cost,
		SquareFootage: profile.SquareFootage,
	}
	return outcome, row, nil
}

// pause waits for the engine delay or until ctx is done.
func (e *Engine) pause(ctx context.Context) error {
	if e.wait != nil {
		return e.wait(ctx, e.Delay)
	}
	t := time.NewTimer(e.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func logOutcome(o Outcome) {
	switch o.Kind {
	case Appended:
		log.Info("appended", "account", o.Account, "date", o.Date, "usage", o.Usage, "cost", o.Cost, "rate", o.Rate)
	case Skipped:
		log.Info("skipped, already recorded", "account", o.Account, "date", o.Date)
	default:
		log.Error("cannot sync account", "account", o.Account, "err", o.Err)
	}
}
