// Package workbook reads the attendance tables from a local .xlsx export and
// writes attendance reports back to .xlsx.
package workbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"github.com/xuri/excelize/v2"
)

// Sheets names the worksheet holding each table.
type Sheets struct {
	Logs      string
	Employees string
	Shifts    string
}

func DefaultSheets() Sheets {
	return Sheets{
		Logs:      sheet.TableLogs,
		Employees: sheet.TableEmployees,
		Shifts:    sheet.TableShifts,
	}
}

// Source implements attendance.Source over a workbook on disk. The file is
// opened on every Fetch so edits are picked up by the next refresh.
type Source struct {
	path   string
	sheets Sheets
}

var _ attendance.Source = (*Source)(nil)

func NewSource(path string, sheets Sheets) *Source {
	defaults := DefaultSheets()
	if sheets.Logs == "" {
		sheets.Logs = defaults.Logs
	}
	if sheets.Employees == "" {
		sheets.Employees = defaults.Employees
	}
	if sheets.Shifts == "" {
		sheets.Shifts = defaults.Shifts
	}
	return &Source{path: path, sheets: sheets}
}

// Fetch implements attendance.Source. Cells are read unformatted, so dates
// and times arrive as Excel serials and day fractions.
func (s *Source) Fetch(ctx context.Context) (sheet.Payload, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Payload{}, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return sheet.Payload{}, fmt.Errorf("%w: %w", attendance.ErrSourceUnavailable, err)
	}
	defer f.Close()

	available := f.GetSheetList()

	var payload sheet.Payload
	for _, t := range []struct {
		table string
		name  string
		dst   *[]sheet.RawRow
	}{
		{sheet.TableLogs, s.sheets.Logs, &payload.Logs},
		{sheet.TableEmployees, s.sheets.Employees, &payload.Employees},
		{sheet.TableShifts, s.sheets.Shifts, &payload.Shifts},
	} {
		if !contains(available, t.name) {
			return sheet.Payload{}, &sheet.MissingTableError{Table: t.table, Found: foldMatch(available, t.name)}
		}

		rows, err := f.GetRows(t.name, excelize.Options{RawCellValue: true})
		if err != nil {
			return sheet.Payload{}, fmt.Errorf("failed to read sheet %q: %w", t.name, err)
		}

		table := make([]sheet.RawRow, 0, len(rows))
		for _, row := range rows {
			table = append(table, sheet.StringRow(row))
		}
		*t.dst = table
	}
	return payload, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func foldMatch(names []string, name string) string {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return n
		}
	}
	return ""
}
