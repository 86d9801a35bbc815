// Package app assembles the attendance service from configuration. It is
// shared by the API server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"github.com/smc-analytics/attendance-dashboard/internal/config"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/gas"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/workbook"
	"github.com/smc-analytics/attendance-dashboard/internal/repository/memory"
	attendanceService "github.com/smc-analytics/attendance-dashboard/internal/service/attendance"
)

// NewSource builds the configured data source.
func NewSource(ctx context.Context, cfg *config.Config) (attendance.Source, error) {
	ds := cfg.DataSource
	switch ds.Type {
	case config.DataSourceGAS:
		opts := []gas.Option{gas.WithTimeout(ds.GASTimeout)}
		if ds.GoogleCredentialsFile != "" {
			opts = append(opts, gas.WithCredentialsFile(ds.GoogleCredentialsFile))
		}
		client, err := gas.NewClient(ctx, ds.GASURL, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.DataSourceXLSX:
		return workbook.NewSource(ds.XLSXPath, workbook.Sheets{
			Logs:      ds.XLSXLogsSheet,
			Employees: ds.XLSXEmployeesSheet,
			Shifts:    ds.XLSXShiftsSheet,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported data source: %s", ds.Type)
	}
}

// NewAttendanceService wires the source, an in-memory snapshot store and the
// classification settings. publisher may be nil.
func NewAttendanceService(ctx context.Context, cfg *config.Config, publisher attendance.SnapshotPublisher) (attendance.AttendanceService, error) {
	source, err := NewSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data source: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return attendanceService.NewAttendanceService(source, memory.NewSnapshotStore(), attendanceService.Config{
		Location:           loc,
		GraceField:         cfg.Attendance.GraceField,
		ReferenceShiftCode: cfg.Attendance.ReferenceShiftCode,
		Publisher:          publisher,
	}), nil
}
