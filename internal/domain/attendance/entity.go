package attendance

import (
	"time"
)

// Status is the lateness classification of an attendance record.
type Status string

const (
	StatusOnTime       Status = "On-time"
	StatusLate         Status = "Late"
	StatusAbsent       Status = "Absent"
	StatusUnclassified Status = "Unclassified"
)

// Label returns the display label for a report locale ("en" or "th").
func (s Status) Label(locale string) string {
	if locale != "th" {
		return string(s)
	}
	switch s {
	case StatusOnTime:
		return "ไม่สาย"
	case StatusLate:
		return "สาย"
	case StatusAbsent:
		return "ขาด"
	default:
		return "ไม่ระบุ"
	}
}

// GraceField selects which shift column holds the late tolerance.
type GraceField string

const (
	GraceFieldGracePeriod   GraceField = "grace_period"
	GraceFieldLateThreshold GraceField = "late_threshold"
)

// GeoPoint keeps coordinates exactly as exported; they are never parsed.
type GeoPoint struct {
	Lat  string `json:"lat"`
	Long string `json:"long"`
}

// LogEntry is one clock-in/clock-out row of the log table.
type LogEntry struct {
	StaffID          string   `json:"staff_id"`
	Name             string   `json:"name"`
	DateClockIn      string   `json:"date_clock_in"` // YYYY-MM-DD, or the original text when DateValid is false
	ClockInTime      string   `json:"clock_in_time"` // HH:MM, "" or "-"
	ClockInLocation  GeoPoint `json:"clock_in_location"`
	DateClockOut     string   `json:"date_clock_out"`
	ClockOutTime     string   `json:"clock_out_time"`
	ClockOutLocation GeoPoint `json:"clock_out_location"`
	SiteID           string   `json:"site_id"`
	WorkingHours     string   `json:"working_hours"`
	DateValid        bool     `json:"date_valid"`
}

// Employee is one roster row. StaffID is the unique key.
type Employee struct {
	LineID   string `json:"line_id"`
	StaffID  string `json:"staff_id"`
	Name     string `json:"name"`
	SiteID   string `json:"site_id"`
	RoleType string `json:"role_type"`
	Position string `json:"position"`
}

// Shift is one shift definition. LateThreshold is nil when the column is
// absent or not a number.
type Shift struct {
	ShiftCode     string `json:"shift_code"`
	ShiftName     string `json:"shift_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	GracePeriod   int    `json:"grace_period"`
	LateThreshold *int   `json:"late_threshold,omitempty"`
}

// Tolerance returns the late tolerance in minutes for the given field.
func (s Shift) Tolerance(field GraceField) int {
	if field == GraceFieldLateThreshold {
		if s.LateThreshold == nil {
			return 0
		}
		return *s.LateThreshold
	}
	return s.GracePeriod
}

// AttendanceRecord is the read-only view handed to the presentation layer.
// It is rebuilt on every query.
type AttendanceRecord struct {
	StaffID   string `json:"staff_id"`
	SiteID    string `json:"site_id"`
	Name      string `json:"name"`
	ShiftCode string `json:"shift_code"`
	DateStart string `json:"date_start"`
	StartTime string `json:"start_time"`
	DateEnd   string `json:"date_end"`
	EndTime   string `json:"end_time"`
	Status    Status `json:"status"`
	DateValid bool   `json:"date_valid"`
}

// TableStats counts how many data rows of one table were admitted.
type TableStats struct {
	Rows     int `json:"rows"`
	Admitted int `json:"admitted"`
	Dropped  int `json:"dropped"`
}

type IngestStats struct {
	Logs         TableStats `json:"logs"`
	Employees    TableStats `json:"employees"`
	Shifts       TableStats `json:"shifts"`
	InvalidDates int        `json:"invalid_dates"`
}

// Snapshot is the normalized result of one fetch cycle. It is replaced as a
// whole and never modified after it has been stored.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Logs      []LogEntry
	Employees []Employee
	Shifts    []Shift
	Stats     IngestStats
}
