// Package workbook stores the utility ledger in an Excel workbook.
//
// Row 1 is the header row, data rows start at row 2. Row positions are the
// sheet row numbers.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/etnz/billsync"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook is a billsync.TabularStore backed by one sheet of an .xlsx or .xlsm file.
type Workbook struct {
	f        *excelize.File
	sheet    string
	cols     Columns
	date1904 bool
	last     int // last non empty row number
}

// Open opens the sheet of the workbook at path. An empty sheet selects the
// first sheet.
func Open(path, sheet string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook %q: %w", path, err)
	}
	w, err := load(f, sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot load workbook %q: %w", path, err)
	}
	log.Debug("workbook opened", "path", path, "sheet", w.sheet, "rows", w.last)
	return w, nil
}

func load(f *excelize.File, sheet string) (*Workbook, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	w := &Workbook{f: f, sheet: sheet}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}

	rows, err := w.rows()
	if err != nil {
		return nil, err
	}
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	w.cols = ResolveColumns(header)
	w.last = len(rows)
	return w, nil
}

// Sheet returns the name of the ledger sheet.
func (w *Workbook) Sheet() string { return w.sheet }

// Columns returns the columns resolved from the header row.
func (w *Workbook) Columns() Columns { return w.cols }

func (w *Workbook) rows() ([][]string, error) {
	rows, err := w.f.GetRows(w.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", w.sheet, err)
	}
	return rows, nil
}

// ReadAll returns every non empty data row, in sheet order.
func (w *Workbook) ReadAll() ([]billsync.LedgerRow, error) {
	rows, err := w.rows()
	if err != nil {
		return nil, err
	}
	var ledger []billsync.LedgerRow
	for i, cells := range rows {
		if i == 0 || blank(cells) {
			continue
		}
		cell := func(col int) string {
			if col < len(cells) {
				return strings.TrimSpace(cells[col])
			}
			return ""
		}
		row := billsync.LedgerRow{
			Position:     i + 1,
			BuildingName: cell(w.cols.BuildingName),
			Usage:        number(cell(w.cols.Usage)),
			Rate:         number(cell(w.cols.Rate)),
			Cost:         number(cell(w.cols.Cost)),
		}
		if d, ok := w.date(cell(w.cols.Date)); ok {
			row.Date = d
		} else if v := cell(w.cols.Date); v != "" {
			log.Debug("unreadable ledger date", "row", row.Position, "value", v)
		}
		if v := cell(w.cols.SquareFootage); v != "" {
			if d, err := decimal.NewFromString(clean(v)); err == nil {
				row.SquareFootage = decimal.NewNullDecimal(d)
			}
		}
		ledger = append(ledger, row)
	}
	return ledger, nil
}

// Append copies the template row after the last row and fills it with row values.
func (w *Workbook) Append(row billsync.LedgerRow, template int) (int, error) {
	if template < 2 || template > w.last {
		return 0, fmt.Errorf("template row %d is not a data row of sheet %q", template, w.sheet)
	}
	pos := w.last + 1
	if err := w.f.DuplicateRowTo(w.sheet, template, pos); err != nil {
		return 0, fmt.Errorf("cannot copy row %d to %d: %w", template, pos, err)
	}
	w.last = pos

	values := []struct {
		col   int
		value any
	}{
		{w.cols.Date, row.Date.Time()},
		{w.cols.BuildingName, row.BuildingName},
		{w.cols.Usage, row.Usage.InexactFloat64()},
		{w.cols.Rate, row.Rate.InexactFloat64()},
		{w.cols.Cost, row.Cost.InexactFloat64()},
	}
	// a missing square footage keeps the template cell
	if row.SquareFootage.Valid {
		values = append(values, struct {
			col   int
			value any
		}{w.cols.SquareFootage, row.SquareFootage.Decimal.InexactFloat64()})
	}
	for _, v := range values {
		name, err := excelize.CoordinatesToCellName(v.col+1, pos)
		if err != nil {
			return 0, err
		}
		if err := w.f.SetCellValue(w.sheet, name, v.value); err != nil {
			return 0, fmt.Errorf("cannot write cell %s: %w", name, err)
		}
	}
	return pos, nil
}

// Save writes the workbook back to its file.
func (w *Workbook) Save() error {
	if err := w.f.Save(); err != nil {
		return fmt.Errorf("cannot save workbook: %w", err)
	}
	return nil
}

// Close releases the workbook. Unsaved changes are lost.
func (w *Workbook) Close() error { return w.f.Close() }

// textDateLayouts are the layouts accepted for dates stored as text.
var textDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
}

// date reads a date cell: an Excel serial number or a text date.
func (w *Workbook) date(v string) (billsync.Date, bool) {
	if v == "" {
		return billsync.Date{}, false
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, w.date1904)
		if err != nil {
			return billsync.Date{}, false
		}
		return billsync.DateOf(t), true
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return billsync.DateOf(t), true
		}
	}
	return billsync.Date{}, false
}

// number reads a numeric cell, blank and unreadable cells are zero.
func number(v string) decimal.Decimal {
	d, err := decimal.NewFromString(clean(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// clean removes currency signs and thousands separators.
func clean(v string) string {
	return strings.NewReplacer("$", "", ",", "", " ", "").Replace(v)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
