package ingest

import (
	"strconv"
	"strings"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/datetime"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
)

// Rows with fewer cells than this are structurally invalid.
const minRowCells = 2

// Placeholder some exports write for a missing clock time.
const missingClock = "-"

// Employee table columns.
const (
	employeeLineID = iota
	employeeStaffID
	employeeName
	employeeSiteID
	employeeRoleType
	employeePosition
)

// Shift table columns.
const (
	shiftCode = iota
	shiftName
	shiftStart
	shiftEnd
	shiftGracePeriod
	shiftLateThreshold
)

// Log fields that follow the clock-in time column.
const (
	logClockInLat = iota + 1
	logClockInLong
	logDateClockOut
	logClockOutTime
	logClockOutLat
	logClockOutLong
	logSiteID
	logWorkingHours
)

// MapLogRow turns one log row into a LogEntry. It returns false for rows that
// are too short or cannot be attributed to a staff id.
func MapLogRow(row sheet.RawRow, staff StaffIndex) (attendance.LogEntry, bool) {
	if row.Len() < minRowCells {
		return attendance.LogEntry{}, false
	}

	cols := DiscoverLogColumns(row, staff)
	staffID := row.Text(cols.Staff)
	if !validStaffID(staffID) {
		return attendance.LogEntry{}, false
	}

	dateIn, dateOK := datetime.NormalizeDate(row.Text(cols.Date))
	t := cols.Time

	entry := attendance.LogEntry{
		StaffID:     staffID,
		Name:        row.Text(cols.Staff + 1),
		DateClockIn: dateIn,
		ClockInTime: normalizeClock(row.Text(t)),
		ClockInLocation: attendance.GeoPoint{
			Lat:  row.Text(t + logClockInLat),
			Long: row.Text(t + logClockInLong),
		},
		DateClockOut: normalizeOptionalDate(row.Text(t + logDateClockOut)),
		ClockOutTime: normalizeClock(row.Text(t + logClockOutTime)),
		ClockOutLocation: attendance.GeoPoint{
			Lat:  row.Text(t + logClockOutLat),
			Long: row.Text(t + logClockOutLong),
		},
		SiteID:       row.Text(t + logSiteID),
		WorkingHours: row.Text(t + logWorkingHours),
		DateValid:    dateOK,
	}

	if emp, ok := staff[staffID]; ok {
		if entry.Name == "" {
			entry.Name = emp.Name
		}
		if entry.SiteID == "" {
			entry.SiteID = emp.SiteID
		}
	}
	return entry, true
}

// MapEmployeeRow reads the fixed employee layout:
// line id, staff id, name, site id, role type, position.
func MapEmployeeRow(row sheet.RawRow) (attendance.Employee, bool) {
	if row.Len() < minRowCells {
		return attendance.Employee{}, false
	}
	emp := attendance.Employee{
		LineID:   row.Text(employeeLineID),
		StaffID:  row.Text(employeeStaffID),
		Name:     row.Text(employeeName),
		SiteID:   row.Text(employeeSiteID),
		RoleType: row.Text(employeeRoleType),
		Position: row.Text(employeePosition),
	}
	if !validStaffID(emp.StaffID) {
		return attendance.Employee{}, false
	}
	return emp, true
}

// MapShiftRow reads the fixed shift layout:
// code, name, start, end, grace period, late threshold.
func MapShiftRow(row sheet.RawRow) (attendance.Shift, bool) {
	if row.Len() < minRowCells {
		return attendance.Shift{}, false
	}
	s := attendance.Shift{
		ShiftCode: row.Text(shiftCode),
		ShiftName: row.Text(shiftName),
		StartTime: normalizeClock(row.Text(shiftStart)),
		EndTime:   normalizeClock(row.Text(shiftEnd)),
	}
	if s.ShiftCode == "" {
		return attendance.Shift{}, false
	}
	s.GracePeriod, _ = parseMinutes(row.Text(shiftGracePeriod))
	if threshold, ok := parseMinutes(row.Text(shiftLateThreshold)); ok {
		s.LateThreshold = &threshold
	}
	return s, true
}

func validStaffID(id string) bool {
	return id != "" && !strings.EqualFold(id, "undefined") && !strings.EqualFold(id, "null")
}

func normalizeClock(raw string) string {
	if raw == "" || raw == missingClock {
		return raw
	}
	clock, _ := datetime.NormalizeTime(raw)
	return clock
}

func normalizeOptionalDate(raw string) string {
	if raw == "" {
		return ""
	}
	date, _ := datetime.NormalizeDate(raw)
	return date
}

// parseMinutes reads the leading integer of s ("10", "10.0", "10 min").
func parseMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
