package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/billsync"
	md "github.com/nao1215/markdown"
)

// AccountsMarkdown renders the account directory of a ledger.
func AccountsMarkdown(ledger string, profiles []billsync.AccountProfile) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Accounts of " + ledger)
	if len(profiles) == 0 {
		doc.PlainText("No account number found in the ledger.")
		return doc.String()
	}

	table := md.TableSet{
		Header: []string{"Account", "Building", "Square Footage", "Template Row"},
		Rows:   [][]string{},
	}
	for _, p := range profiles {
		sqft := "-"
		if p.SquareFootage.Valid {
			sqft = p.SquareFootage.Decimal.String()
		}
		table.Rows = append(table.Rows, []string{
			p.AccountNumber,
			cell(p.BuildingName),
			sqft,
			strconv.Itoa(p.Template),
		})
	}
	doc.Table(table)
	return doc.String()
}
