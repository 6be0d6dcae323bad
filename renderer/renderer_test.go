package renderer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/etnz/billsync"
	"github.com/etnz/billsync/journal"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func sampleSummary() *billsync.Summary {
	on := billsync.MustParseDate("2025-03-13")
	return &billsync.Summary{
		Date: on,
		Outcomes: []billsync.Outcome{
			{Account: "111", Kind: billsync.Appended, Date: on, Position: 12,
				Usage: decimal.NewFromInt(500), Cost: decimal.NewFromInt(75), Rate: decimal.RequireFromString("0.15")},
			{Account: "222", Kind: billsync.Skipped, Date: on,
				Usage: decimal.NewFromInt(100), Cost: decimal.NewFromInt(20),
				Err: fmt.Errorf("%w: account 222 on 2025-03-13", billsync.ErrDuplicate)},
			{Account: "333", Kind: billsync.Failed, Err: errors.New("usage api transport error: 401 Unauthorized | retry")},
		},
		Saved: true,
	}
}

func TestRenderSync_Golden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))

	tests := []struct {
		name    string
		summary *billsync.Summary
	}{
		{name: "sync_report", summary: sampleSummary()},
		{name: "sync_empty", summary: &billsync.Summary{Date: billsync.MustParseDate("2025-03-13")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderSync(NewSyncReport(tt.summary, "ledger.xlsx", false))
			g.Assert(t, tt.name, []byte(got))
		})
	}
}

// tables parses markdown and returns the number of body rows of every table.
func tables(t *testing.T, src string) []int {
	t.Helper()
	p := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := p.Parse(text.NewReader([]byte(src)))

	var rows []int
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *east.Table:
			rows = append(rows, 0)
		case *east.TableRow:
			rows[len(rows)-1]++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("cannot walk markdown: %v", err)
	}
	return rows
}

func TestRenderSync_Tables(t *testing.T) {
	got := tables(t, RenderSync(NewSyncReport(sampleSummary(), "ledger.xlsx", false)))
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("sync report tables rows = %v, want [1 3]", got)
	}
}

func TestNewSyncReport_Status(t *testing.T) {
	appended := sampleSummary()
	appended.Saved = false

	tests := []struct {
		name    string
		summary *billsync.Summary
		dryRun  bool
		want    string
	}{
		{name: "saved", summary: sampleSummary(), want: "saved"},
		{name: "dry run", summary: appended, dryRun: true, want: "not saved (dry run)"},
		{name: "aborted", summary: appended, want: "not saved"},
		{name: "nothing new", summary: &billsync.Summary{}, dryRun: true, want: "unchanged"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewSyncReport(tt.summary, "l.xlsx", tt.dryRun).Status; got != tt.want {
				t.Errorf("NewSyncReport().Status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"75", "$75.00"},
		{"1234.5", "$1,234.50"},
		{"0.125", "$0.13"},
		{"0", "$0.00"},
		{"-3.2", "-$3.20"},
	}
	for _, tt := range tests {
		if got := Money(decimal.RequireFromString(tt.amount)); got != tt.want {
			t.Errorf("Money(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestAccountsMarkdown(t *testing.T) {
	profiles := []billsync.AccountProfile{
		{AccountNumber: "111", BuildingName: "Gym - Account Number: 111", SquareFootage: decimal.NewNullDecimal(decimal.NewFromInt(1200)), Template: 2},
		{AccountNumber: "222", BuildingName: "Barracks - Account Number: 222", Template: 3},
	}
	got := AccountsMarkdown("ledger.xlsx", profiles)
	if rows := tables(t, got); len(rows) != 1 || rows[0] != 2 {
		t.Errorf("accounts tables rows = %v, want [2]", rows)
	}
	for _, want := range []string{"111", "Barracks - Account Number: 222", "1200"} {
		if !strings.Contains(got, want) {
			t.Errorf("AccountsMarkdown() does not contain %q:\n%s", want, got)
		}
	}

	if empty := AccountsMarkdown("ledger.xlsx", nil); len(tables(t, empty)) != 0 {
		t.Errorf("AccountsMarkdown(nil) has a table:\n%s", empty)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	runs := []journal.Run{
		{ID: "b", Ledger: "ledger.xlsx", Date: billsync.MustParseDate("2025-03-13"), Started: time.Now(), Appended: 2, Saved: true},
		{ID: "a", Ledger: "ledger.xlsx", Date: billsync.MustParseDate("2025-03-12"), Started: time.Now().Add(-time.Hour), Err: "cannot persist ledger: disk full"},
	}
	got := HistoryMarkdown(runs)
	if rows := tables(t, got); len(rows) != 1 || rows[0] != 2 {
		t.Errorf("history tables rows = %v, want [2]", rows)
	}
	if !strings.Contains(got, "failed: cannot persist ledger: disk full") {
		t.Errorf("HistoryMarkdown() does not report the failed run:\n%s", got)
	}
	if strings.Index(got, "2025-03-13") > strings.Index(got, "2025-03-12") {
		t.Errorf("HistoryMarkdown() does not keep the run order:\n%s", got)
	}
}
