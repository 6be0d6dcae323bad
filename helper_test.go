package billsync

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory TabularStore.
type memStore struct {
	rows      []LedgerRow
	templates []int // template position of every Append call
	saves     int
	closed    bool
	saveErr   error
	appendErr error
}

func (m *memStore) ReadAll() ([]LedgerRow, error) {
	rows := make([]LedgerRow, len(m.rows))
	copy(rows, m.rows)
	return rows, nil
}

func (m *memStore) Append(row LedgerRow, template int) (int, error) {
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	row.Position = len(m.rows) + 2 // row 1 is the header
	m.rows = append(m.rows, row)
	m.templates = append(m.templates, template)
	return row.Position, nil
}

func (m *memStore) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

// ledger returns a memStore holding rows, positioned like a spreadsheet with a header.
func ledger(rows ...LedgerRow) *memStore {
	for i := range rows {
		rows[i].Position = i + 2
	}
	return &memStore{rows: rows}
}

// row is a helper for tests to create a ledger row.
func row(date, account string, sqft int64) LedgerRow {
	r := LedgerRow{
		BuildingName:  "Main Hall - Account Number: " + account,
		Usage:         decimal.NewFromInt(100),
		Cost:          decimal.NewFromInt(15),
		Rate:          decimal.RequireFromString("0.15"),
		SquareFootage: decimal.NewNullDecimal(decimal.NewFromInt(sqft)),
	}
	if date != "" {
		r.Date = MustParseDate(date)
	}
	return r
}

// response is what fakeFetcher returns for an account.
type response struct {
	reading Reading
	err     error
}

// fakeFetcher serves canned responses and records calls.
type fakeFetcher struct {
	responses map[string]response
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, account string, on Date, token string) (Reading, error) {
	f.calls = append(f.calls, account)
	r, ok := f.responses[account]
	if !ok {
		return Reading{}, fmt.Errorf("%w: no usage for %s", ErrNoData, account)
	}
	return r.reading, r.err
}

// reading is a helper for tests to create a usage reading.
func reading(account, date string, usage, cost float64) Reading {
	at := MustParseDate(date).Time().Add(6 * time.Hour)
	return Reading{
		AccountNumber: account,
		ReadingDate:   at,
		ReadingFrom:   at.AddDate(0, -1, 0),
		ReadingTo:     at,
		Usage:         decimal.NewFromFloat(usage),
		Cost:          decimal.NewFromFloat(cost),
		UnitOfMeasure: "kWh",
	}
}

func served(r Reading) response { return response{reading: r} }
