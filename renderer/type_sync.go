package renderer

import (
	"fmt"

	"github.com/etnz/billsync"
)

// SyncReport is the view of a sync run.
type SyncReport struct {
	Date     string
	Ledger   string
	Status   string
	Appended int
	Skipped  int
	Errored  int
	Accounts []SyncAccount
}

// SyncAccount is one line of the accounts table.
type SyncAccount struct {
	Account string
	Status  string
	Date    string
	Usage   string
	Rate    string
	Cost    string
	Note    string
}

// NewSyncReport builds the report of s, a run on the ledger file.
func NewSyncReport(s *billsync.Summary, ledger string, dryRun bool) *SyncReport {
	r := &SyncReport{
		Date:     s.Date.String(),
		Ledger:   ledger,
		Appended: s.Appended(),
		Skipped:  s.Skipped(),
		Errored:  s.Errored(),
	}
	switch {
	case s.Saved:
		r.Status = "saved"
	case dryRun && r.Appended > 0:
		r.Status = "not saved (dry run)"
	case r.Appended == 0:
		r.Status = "unchanged"
	default:
		r.Status = "not saved"
	}

	for _, o := range s.Outcomes {
		a := SyncAccount{
			Account: o.Account,
			Status:  o.Kind.String(),
			Date:    o.Date.String(),
		}
		if o.Kind != billsync.Failed {
			a.Usage = o.Usage.String()
			a.Cost = Money(o.Cost)
		}
		switch o.Kind {
		case billsync.Appended:
			a.Rate = o.Rate.StringFixed(4)
			if o.Position > 0 {
				a.Note = fmt.Sprintf("row %d", o.Position)
			}
		default:
			if o.Err != nil {
				a.Note = o.Err.Error()
			}
		}
		r.Accounts = append(r.Accounts, a)
	}
	return r
}
