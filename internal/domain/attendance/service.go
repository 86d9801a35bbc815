package attendance

import (
	"context"

	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
)

// AttendanceService defines the dashboard operations over the current snapshot
type AttendanceService interface {
	// Refresh fetches the source, normalizes it and replaces the snapshot
	Refresh(ctx context.Context) (SnapshotInfo, error)

	// Snapshot describes the snapshot currently served
	Snapshot(ctx context.Context) (SnapshotInfo, error)

	// RawPayload fetches the upstream tables without normalizing them
	RawPayload(ctx context.Context) (sheet.Payload, error)

	// Records returns filtered, sorted attendance records
	Records(ctx context.Context, query RecordQuery) (ListRecordsResponse, error)

	// Summary returns overall and per-site counts for the filtered records
	Summary(ctx context.Context, query RecordQuery) (SummaryResponse, error)

	// Day returns the today or yesterday view
	Day(ctx context.Context, day Day, query RecordQuery) (DayView, error)

	// Dashboard combines today, yesterday and the summaries
	Dashboard(ctx context.Context, query RecordQuery) (DashboardResponse, error)

	// Options lists the sites and staff available for filtering
	Options(ctx context.Context, query RecordQuery) (FilterOptions, error)

	Employees(ctx context.Context, query RecordQuery) ([]Employee, error)
	Shifts(ctx context.Context, query RecordQuery) ([]Shift, error)
	Logs(ctx context.Context, query RecordQuery) ([]LogEntry, error)
}
