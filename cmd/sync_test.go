package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/billsync"
	"github.com/etnz/billsync/journal"
	"github.com/etnz/billsync/workbook"
	"github.com/google/subcommands"
	"github.com/xuri/excelize/v2"
)

// setupSync prepares a ledger, a usage API and a configuration, and points the
// global flags at them. It returns the ledger and journal paths.
func setupSync(t *testing.T) (ledger, journalPath string) {
	t.Helper()
	dir := t.TempDir()

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Date", "", "", "Building Name", "", "", "Usage", "Rate ($/kWh))", "Cost ($)", "SQFT"},
		{time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), "", "", "Gym - Account Number: 111", "", "", 450, 0.15, 67.5, 1200},
		{time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), "", "", "Barracks - Account Number: 222", "", "", 100, 0.2, 20, 800},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	ledger = filepath.Join(dir, "ledger.xlsx")
	if err := f.SaveAs(ledger); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test" || r.URL.Query().Get("AccountNumber") != "111" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"Result":{"electricUsages":[{"accountNumber":"111","readingDate":"2025-03-13T00:00:00Z","usageValue":500,"usageCost":75}]}}`)
	}))
	t.Cleanup(srv.Close)

	journalPath = filepath.Join(dir, "journal.db")
	config := writeFile(t, "bsync.yaml", fmt.Sprintf("endpoint: %s\ndelay: 0s\njournal: %s\n", srv.URL, journalPath))

	oldLedger, oldConfig, oldRaw := *ledgerFile, *configFile, *rawMarkdown
	*ledgerFile, *configFile, *rawMarkdown = ledger, config, true
	t.Cleanup(func() { *ledgerFile, *configFile, *rawMarkdown = oldLedger, oldConfig, oldRaw })
	return ledger, journalPath
}

func readLedger(t *testing.T, path string) []billsync.LedgerRow {
	t.Helper()
	w, err := workbook.Open(path, "")
	if err != nil {
		t.Fatalf("cannot open ledger: %v", err)
	}
	defer w.Close()
	rows, err := w.ReadAll()
	if err != nil {
		t.Fatalf("cannot read ledger: %v", err)
	}
	return rows
}

func runSync(c *syncCmd) subcommands.ExitStatus {
	return c.Execute(context.Background(), flag.NewFlagSet("sync", flag.ContinueOnError))
}

func TestSyncCmd(t *testing.T) {
	ledger, journalPath := setupSync(t)

	if got := runSync(&syncCmd{date: "2025-03-13", token: "test"}); got != subcommands.ExitSuccess {
		t.Fatalf("sync exit status = %v, want success", got)
	}
	rows := readLedger(t, ledger)
	if len(rows) != 3 {
		t.Fatalf("ledger has %d rows, want 3", len(rows))
	}
	added := rows[2]
	if added.Position != 4 || added.Date != billsync.MustParseDate("2025-03-13") || added.BuildingName != "Gym - Account Number: 111" {
		t.Errorf("appended row = %d %v %q", added.Position, added.Date, added.BuildingName)
	}
	if added.Rate.String() != "0.15" || !added.SquareFootage.Valid || added.SquareFootage.Decimal.IntPart() != 1200 {
		t.Errorf("appended rate, sqft = %v, %v", added.Rate, added.SquareFootage.Decimal)
	}

	// the second run finds the reading already recorded
	if got := runSync(&syncCmd{date: "2025-03-13", token: "test"}); got != subcommands.ExitSuccess {
		t.Fatalf("second sync exit status = %v, want success", got)
	}
	if rows := readLedger(t, ledger); len(rows) != 3 {
		t.Errorf("ledger has %d rows after second sync, want 3", len(rows))
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	runs, err := j.Runs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("journal has %d runs, want 2", len(runs))
	}
	if last, first := runs[0], runs[1]; first.Appended != 1 || first.Errored != 1 || !first.Saved || last.Appended != 0 || last.Skipped != 1 {
		t.Errorf("journal runs = %+v, %+v", first, last)
	}
}

func TestSyncCmd_DryRun(t *testing.T) {
	ledger, _ := setupSync(t)

	if got := runSync(&syncCmd{date: "2025-03-13", token: "test", dryRun: true}); got != subcommands.ExitSuccess {
		t.Fatalf("sync exit status = %v, want success", got)
	}
	if rows := readLedger(t, ledger); len(rows) != 2 {
		t.Errorf("ledger has %d rows after a dry run, want 2", len(rows))
	}
}

func TestSyncCmd_UsageErrors(t *testing.T) {
	setupSync(t)
	t.Setenv(tokenEnv, "")
	old := sessionPath
	sessionPath = func() string { return filepath.Join(t.TempDir(), sessionFile) }
	t.Cleanup(func() { sessionPath = old })

	tests := []struct {
		name string
		cmd  *syncCmd
	}{
		{name: "no token", cmd: &syncCmd{date: "2025-03-13"}},
		{name: "bad date", cmd: &syncCmd{date: "tomorrow", token: "test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runSync(tt.cmd); got != subcommands.ExitUsageError {
				t.Errorf("sync exit status = %v, want usage error", got)
			}
		})
	}
}

func TestSyncCmd_MissingLedger(t *testing.T) {
	setupSync(t)
	*ledgerFile = filepath.Join(t.TempDir(), "missing.xlsx")
	if got := runSync(&syncCmd{date: "2025-03-13", token: "test"}); got != subcommands.ExitFailure {
		t.Errorf("sync exit status = %v, want failure", got)
	}
}
