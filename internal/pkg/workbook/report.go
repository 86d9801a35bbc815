package workbook

import (
	"fmt"
	"io"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	AttendanceSheet = "Attendance"
	SummarySheet    = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	attendanceHeaders = []any{"Site", "Staff ID", "Name", "Shift", "Date In", "Time In", "Date Out", "Time Out", "Status"}
	summaryHeaders    = []any{"Site", "Total", "On-time", "Late", "Absent", "Unclassified", "On-time %"}
)

// Report is the content of one exported workbook.
type Report struct {
	Records     []attendance.AttendanceRecord
	Summary     attendance.SummaryResponse
	Locale      string // status labels: "en" or "th"
	GeneratedAt time.Time
}

// Filename returns the suggested download name for the report.
func (r Report) Filename() string {
	return fmt.Sprintf("attendance_%s.xlsx", r.GeneratedAt.Format("20060102_1504"))
}

// WriteReport renders r as an .xlsx workbook with an Attendance sheet (one
// row per record) and a Summary sheet (one row per site plus a total row).
func WriteReport(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AttendanceSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	records := make([][]any, 0, len(r.Records))
	for _, rec := range r.Records {
		records = append(records, []any{
			rec.SiteID, rec.StaffID, rec.Name, rec.ShiftCode,
			rec.DateStart, rec.StartTime, rec.DateEnd, rec.EndTime,
			rec.Status.Label(r.Locale),
		})
	}
	if err := writeTable(f, AttendanceSheet, attendanceHeaders, records, headerStyle); err != nil {
		return err
	}

	sites := make([][]any, 0, len(r.Summary.Sites)+1)
	for _, s := range r.Summary.Sites {
		sites = append(sites, summaryRow(s.SiteID, s.Summary))
	}
	sites = append(sites, summaryRow("All sites", r.Summary.Summary))
	if err := writeTable(f, SummarySheet, summaryHeaders, sites, headerStyle); err != nil {
		return err
	}

	if !r.GeneratedAt.IsZero() {
		cell, _ := excelize.CoordinatesToCellName(1, len(sites)+3)
		if err := f.SetCellValue(SummarySheet, cell, "Generated at: "+r.GeneratedAt.Format("02 January 2006 15:04:05")); err != nil {
			return fmt.Errorf("failed to write timestamp: %w", err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func summaryRow(label string, s attendance.Summary) []any {
	return []any{label, s.Total, s.OnTime, s.Late, s.Absent, s.Unclassified, s.OnTimeRate}
}

func writeTable(f *excelize.File, sheetName string, headers []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheetName, err)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheetName, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheetName, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheetName, err)
	}
	return nil
}
