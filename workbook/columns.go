package workbook

import "strings"

// Columns holds the zero based index of every ledger column in the sheet.
type Columns struct {
	Date          int
	BuildingName  int
	Usage         int
	Rate          int
	Cost          int
	SquareFootage int
}

// DefaultColumns is the layout of the utility ledger when the header row does
// not name a column.
var DefaultColumns = Columns{
	Date:          0, // A
	BuildingName:  3, // D
	Usage:         6, // G
	Rate:          7, // H
	Cost:          8, // I
	SquareFootage: 9, // J
}

// headers lists the accepted spellings of each column, compared case insensitively.
var headers = map[string][]string{
	"date":           {"Date"},
	"building name":  {"Building Name"},
	"usage":          {"Usage"},
	"rate":           {"Rate", "Rate ($/kWh)", "Rate ($/kWh))"},
	"cost":           {"Cost", "Cost ($)"},
	"square footage": {"Square Footage", "SQFT"},
}

// ResolveColumns locates the ledger columns in the header row. Columns that
// are not found keep their DefaultColumns position.
func ResolveColumns(header []string) Columns {
	cols := DefaultColumns
	find := func(name string, dst *int) {
		for i, cell := range header {
			cell = strings.TrimSpace(cell)
			for _, alias := range headers[name] {
				if strings.EqualFold(cell, alias) {
					*dst = i
					return
				}
			}
		}
	}
	find("date", &cols.Date)
	find("building name", &cols.BuildingName)
	find("usage", &cols.Usage)
	find("rate", &cols.Rate)
	find("cost", &cols.Cost)
	find("square footage", &cols.SquareFootage)
	return cols
}
