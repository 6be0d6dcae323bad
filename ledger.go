package billsync

import (
	"maps"
	"regexp"
	"slices"

	"github.com/shopspring/decimal"
)

// LedgerRow is one line of the utility ledger.
type LedgerRow struct {
	Position      int    // Ordinal of the row in its store, stable for the duration of a run.
	Date          Date   // Reading date, zero when the ledger cell is empty or unreadable.
	BuildingName  string // Free text, embeds the account number.
	AccountNumber string // Derived from BuildingName.
	Usage         decimal.Decimal
	Rate          decimal.Decimal
	Cost          decimal.Decimal
	SquareFootage decimal.NullDecimal
}

// TabularStore is the storage of ledger rows.
//
// ReadAll returns the rows in store order. Append adds a row after the last one,
// copying the non-data formatting of the row at position template, and returns
// the new row position. Save persists the current rows; calling it twice is harmless.
type TabularStore interface {
	ReadAll() ([]LedgerRow, error)
	Append(row LedgerRow, template int) (int, error)
	Save() error
}

// DefaultAccountPattern locates the account number inside a building name.
var DefaultAccountPattern = regexp.MustCompile(`Account Number:\s*(\d+)`)

// AccountNumberIn returns the account number embedded in text, using the first
// capture group of pattern. A nil pattern means DefaultAccountPattern.
func AccountNumberIn(text string, pattern *regexp.Regexp) (string, bool) {
	if pattern == nil {
		pattern = DefaultAccountPattern
	}
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// AssignAccounts sets the account number of every row from its building name.
func AssignAccounts(rows []LedgerRow, pattern *regexp.Regexp) {
	for i := range rows {
		rows[i].AccountNumber, _ = AccountNumberIn(rows[i].BuildingName, pattern)
	}
}

// AccountProfile holds the ledger metadata of an account.
type AccountProfile struct {
	AccountNumber string
	BuildingName  string
	SquareFootage decimal.NullDecimal
	Template      int // Position of the first ledger row of this account.
}

// Directory maps account numbers to their profile.
type Directory map[string]AccountProfile

// NewDirectory scans rows and registers the first occurrence of every account.
// Rows without an account number are ignored.
func NewDirectory(rows []LedgerRow) Directory {
	dir := make(Directory)
	for _, row := range rows {
		if row.AccountNumber == "" {
			continue
		}
		if _, exists := dir[row.AccountNumber]; exists {
			continue
		}
		dir[row.AccountNumber] = AccountProfile{
			AccountNumber: row.AccountNumber,
			BuildingName:  row.BuildingName,
			SquareFootage: row.SquareFootage,
			Template:      row.Position,
		}
	}
	return dir
}

// Accounts returns the account numbers in ascending order.
func (d Directory) Accounts() []string {
	return slices.Sorted(maps.Keys(d))
}

// Profiles returns all profiles sorted by account number.
func (d Directory) Profiles() []AccountProfile {
	profiles := make([]AccountProfile, 0, len(d))
	for _, a := range d.Accounts() {
		profiles = append(profiles, d[a])
	}
	return profiles
}

// point identifies a reading in the ledger.
type point struct {
	Account string
	Date    Date
}

// Index records the (account, date) pairs already present in the ledger.
type Index map[point]struct{}

// NewIndex returns the index of all dated rows with an account number.
func NewIndex(rows []LedgerRow) Index {
	idx := make(Index, len(rows))
	for _, row := range rows {
		idx.Add(row)
	}
	return idx
}

// Add records row. Rows without account or date are not indexed.
func (idx Index) Add(row LedgerRow) {
	if row.AccountNumber == "" || row.Date.IsZero() {
		return
	}
	idx[point{row.AccountNumber, row.Date}] = struct{}{}
}

// Has reports whether account already has a row on that day.
func (idx Index) Has(account string, on Date) bool {
	_, ok := idx[point{account, on}]
	return ok
}
