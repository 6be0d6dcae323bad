package billsync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Reading is one usage record returned by the metering API for an account.
type Reading struct {
	AccountNumber string
	MeterNumber   string
	ReadingDate   time.Time
	ReadingFrom   time.Time
	ReadingTo     time.Time
	Usage         decimal.Decimal
	Cost          decimal.Decimal
	UnitOfMeasure string
}

// Date returns the calendar date of the reading, used to identify it in the ledger.
func (r Reading) Date() Date { return DateOf(r.ReadingDate) }

// UsageFetcher fetches the usage reading of an account for a single day.
//
// Implementations must wrap ErrTransport for network failures and non-success
// responses, and ErrNoData when the response holds no usage record.
type UsageFetcher interface {
	Fetch(ctx context.Context, account string, on Date, token string) (Reading, error)
}

// Rate returns the billing rate cost/usage. A non positive usage has a zero rate.
func Rate(usage, cost decimal.Decimal) decimal.Decimal {
	if !usage.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(usage)
}
