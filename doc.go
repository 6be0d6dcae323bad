// Package billsync keeps a utility bill ledger in sync with the Liberty
// usage API.
//
// The ledger is a spreadsheet where every row records one monthly reading of
// one account: its date, the building (whose name embeds the account number),
// the usage, the cost and the resulting rate. For a target date, the sync
// engine fetches the reading of every account found in the ledger and appends
// the readings not yet recorded, cloning the formatting of an existing row of
// the same account.
//
// The main pieces are:
//   - Engine: the sync algorithm, run once per target date through Engine.Sync.
//   - TabularStore: the read/append/save contract of the ledger storage,
//     implemented for workbooks in package workbook.
//   - UsageFetcher: the usage API client, implemented in package liberty.
//   - Directory and Index: the account profiles and the (account, date) pairs
//     derived from the ledger at the start of a run.
//
// The bearer token required by the usage API is recovered from a browser
// network capture by package capture. The `bsync` command line tool wires all
// of them together.
package billsync
