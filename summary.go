package billsync

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OutcomeKind classifies what happened to an account during a run.
type OutcomeKind int

const (
	Appended OutcomeKind = iota // a new row was added to the ledger
	Skipped                     // the reading was already in the ledger
	Failed                      // the account could not be synced, see Outcome.Err
)

func (k OutcomeKind) String() string {
	switch k {
	case Appended:
		return "appended"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of syncing one account.
type Outcome struct {
	Account  string
	Kind     OutcomeKind
	Date     Date  // reading date, zero if the reading could not be fetched
	Position int   // position of the appended row, 0 otherwise
	Err      error // why the account failed or was skipped
	Usage    decimal.Decimal
	Cost     decimal.Decimal
	Rate     decimal.Decimal
}

// Summary reports a sync run.
type Summary struct {
	Date     Date // target date of the run
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome // one per account, in processing order
	Saved    bool      // whether the ledger was persisted
}

func (s *Summary) count(kind OutcomeKind) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Appended returns the number of rows added to the ledger.
func (s *Summary) Appended() int { return s.count(Appended) }

// Skipped returns the number of readings already present in the ledger.
func (s *Summary) Skipped() int { return s.count(Skipped) }

// Errored returns the number of accounts that could not be synced.
func (s *Summary) Errored() int { return s.count(Failed) }

// Errors returns the number of failed accounts whose error matches target.
func (s *Summary) Errors(target error) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Kind == Failed && errors.Is(o.Err, target) {
			n++
		}
	}
	return n
}
