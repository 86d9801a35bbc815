package attendance

import (
	"strings"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/pkg/validator"
)

// ========================================
// QUERY DTOs
// ========================================

// Day names a single-day view anchored to the current date.
type Day string

const (
	DayToday     Day = "today"
	DayYesterday Day = "yesterday"
)

const (
	ModeLogs   = "logs"   // only rows that exist in the log table
	ModeRoster = "roster" // every matching employee, absent ones included
)

// Filter is the filter state of the dashboard. Empty values mean no constraint.
type Filter struct {
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD, inclusive
	EndDate   string `json:"end_date,omitempty"`   // YYYY-MM-DD, inclusive
	SiteID    string `json:"site_id,omitempty"`
	StaffID   string `json:"staff_id,omitempty"`
}

// DateBounded reports whether the filter restricts dates at all.
func (f Filter) DateBounded() bool {
	return f.StartDate != "" || f.EndDate != ""
}

type RecordQuery struct {
	Filter
	Mode    string `json:"mode"`
	Date    string `json:"date,omitempty"` // roster day, YYYY-MM-DD; defaults to today
	Refresh bool   `json:"refresh"`
}

func (q *RecordQuery) Validate() error {
	var errs validator.ValidationErrors

	q.SiteID = strings.TrimSpace(q.SiteID)
	q.StaffID = strings.TrimSpace(q.StaffID)

	if q.StartDate != "" {
		if _, valid := validator.IsValidDate(q.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if q.EndDate != "" {
		if _, valid := validator.IsValidDate(q.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if q.StartDate != "" && q.EndDate != "" && len(errs) == 0 && q.EndDate < q.StartDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if q.Date != "" {
		if _, valid := validator.IsValidDate(q.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if !validator.IsEmpty(q.Mode) {
		q.Mode = strings.ToLower(strings.TrimSpace(q.Mode))
		if !validator.IsInSlice(q.Mode, []string{ModeLogs, ModeRoster}) {
			errs = append(errs, validator.ValidationError{
				Field:   "mode",
				Message: "mode must be one of: logs, roster",
			})
		}
	} else {
		q.Mode = ModeLogs
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

// Summary counts records by status. OnTimeRate is a percentage of Total.
type Summary struct {
	Total        int     `json:"total"`
	OnTime       int     `json:"on_time"`
	Late         int     `json:"late"`
	Absent       int     `json:"absent"`
	Unclassified int     `json:"unclassified"`
	OnTimeRate   float64 `json:"on_time_rate"`
}

type SiteSummary struct {
	SiteID string `json:"site_id"`
	Summary
}

type SummaryResponse struct {
	Summary Summary       `json:"summary"`
	Sites   []SiteSummary `json:"sites"`
}

type ListRecordsResponse struct {
	SnapshotID string             `json:"snapshot_id"`
	Mode       string             `json:"mode"`
	TotalCount int                `json:"total_count"`
	Records    []AttendanceRecord `json:"records"`
}

type DayView struct {
	Day     Day                `json:"day"`
	Date    string             `json:"date"`
	Summary Summary            `json:"summary"`
	Records []AttendanceRecord `json:"records"`
}

type SnapshotInfo struct {
	ID        string      `json:"id"`
	FetchedAt time.Time   `json:"fetched_at"`
	Logs      int         `json:"logs"`
	Employees int         `json:"employees"`
	Shifts    int         `json:"shifts"`
	Stats     IngestStats `json:"stats"`
}

type DashboardResponse struct {
	Snapshot  SnapshotInfo  `json:"snapshot"`
	Today     DayView       `json:"today"`
	Yesterday DayView       `json:"yesterday"`
	Summary   Summary       `json:"summary"`
	Sites     []SiteSummary `json:"sites"`
}

type StaffOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FilterOptions struct {
	Sites []string      `json:"sites"`
	Staff []StaffOption `json:"staff"`
}
