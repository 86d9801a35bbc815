package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
)

const SnapshotRefreshJob = "snapshot-refresh"

// SnapshotJobs keeps the served attendance snapshot fresh by polling the
// data source.
type SnapshotJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
	timeout           time.Duration
}

func NewSnapshotJobs(attendanceService attendance.AttendanceService, interval, timeout time.Duration) *SnapshotJobs {
	return &SnapshotJobs{
		attendanceService: attendanceService,
		interval:          interval,
		timeout:           timeout,
	}
}

// RegisterJobs adds the refresh job. Polling is disabled when the interval
// is zero.
func (j *SnapshotJobs) RegisterJobs(scheduler *Scheduler) {
	if j.interval <= 0 {
		slog.Info("Snapshot polling disabled, refresh is manual only")
		return
	}
	scheduler.AddJob(Job{
		Name:     SnapshotRefreshJob,
		Interval: j.interval,
		Timeout:  j.timeout,
		Fn:       j.RefreshSnapshot,
	})
}

// RefreshSnapshot fetches the source once. A failure keeps the previous
// snapshot and is retried only on the next tick.
func (j *SnapshotJobs) RefreshSnapshot(ctx context.Context) error {
	info, err := j.attendanceService.Refresh(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cron: Snapshot refreshed", "snapshot_id", info.ID, "logs", info.Logs)
	return nil
}
