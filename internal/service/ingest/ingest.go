// Package ingest turns the raw three-table payload into typed attendance
// entities. Bad rows are dropped one at a time; nothing here returns an error.
package ingest

import (
	"log/slog"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
)

// Normalize maps every data row of payload. Employees and shifts are mapped
// first so that log rows can be matched against known staff ids. ID and
// FetchedAt are left for the caller.
func Normalize(payload sheet.Payload) *attendance.Snapshot {
	snap := &attendance.Snapshot{}

	employeeRows := dataRows(payload.Employees)
	snap.Stats.Employees.Rows = len(employeeRows)
	seen := make(map[string]struct{}, len(employeeRows))
	for _, row := range employeeRows {
		emp, ok := MapEmployeeRow(row)
		if !ok {
			continue
		}
		if _, dup := seen[emp.StaffID]; dup {
			continue
		}
		seen[emp.StaffID] = struct{}{}
		snap.Employees = append(snap.Employees, emp)
	}

	shiftRows := dataRows(payload.Shifts)
	snap.Stats.Shifts.Rows = len(shiftRows)
	for _, row := range shiftRows {
		if s, ok := MapShiftRow(row); ok {
			snap.Shifts = append(snap.Shifts, s)
		}
	}

	staff := NewStaffIndex(snap.Employees)
	logRows := dataRows(payload.Logs)
	snap.Stats.Logs.Rows = len(logRows)
	for _, row := range logRows {
		entry, ok := MapLogRow(row, staff)
		if !ok {
			continue
		}
		if !entry.DateValid {
			snap.Stats.InvalidDates++
		}
		snap.Logs = append(snap.Logs, entry)
	}

	snap.Stats.Employees.Admitted = len(snap.Employees)
	snap.Stats.Employees.Dropped = snap.Stats.Employees.Rows - len(snap.Employees)
	snap.Stats.Shifts.Admitted = len(snap.Shifts)
	snap.Stats.Shifts.Dropped = snap.Stats.Shifts.Rows - len(snap.Shifts)
	snap.Stats.Logs.Admitted = len(snap.Logs)
	snap.Stats.Logs.Dropped = snap.Stats.Logs.Rows - len(snap.Logs)

	slog.Debug("Payload normalized",
		"logs", snap.Stats.Logs.Admitted,
		"logs_dropped", snap.Stats.Logs.Dropped,
		"employees", snap.Stats.Employees.Admitted,
		"employees_dropped", snap.Stats.Employees.Dropped,
		"shifts", snap.Stats.Shifts.Admitted,
		"shifts_dropped", snap.Stats.Shifts.Dropped,
		"invalid_dates", snap.Stats.InvalidDates,
	)
	return snap
}

// dataRows drops the header row.
func dataRows(rows []sheet.RawRow) []sheet.RawRow {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}
