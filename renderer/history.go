package renderer

import (
	"bytes"
	"strconv"
	"time"

	"github.com/etnz/billsync/journal"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the recorded sync runs.
func HistoryMarkdown(runs []journal.Run) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Sync history")
	if len(runs) == 0 {
		doc.PlainText("No run recorded.")
		return doc.String()
	}

	table := md.TableSet{
		Header: []string{"Started", "Date", "Ledger", "New", "Skipped", "Errors", "Saved", "Run"},
		Rows:   [][]string{},
	}
	for _, r := range runs {
		saved := "no"
		switch {
		case r.Saved:
			saved = "yes"
		case r.Err != "":
			saved = "failed: " + cell(r.Err)
		case r.DryRun:
			saved = "dry run"
		}
		table.Rows = append(table.Rows, []string{
			r.Started.Local().Format(time.DateTime),
			r.Date.String(),
			cell(r.Ledger),
			strconv.Itoa(r.Appended),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Errored),
			saved,
			r.ID,
		})
	}
	doc.Table(table)
	return doc.String()
}
