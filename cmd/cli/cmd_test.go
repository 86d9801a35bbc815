package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/jwt"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"github.com/smc-analytics/attendance-dashboard/internal/repository/memory"
	attendanceService "github.com/smc-analytics/attendance-dashboard/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type cliTestSource struct{}

func (cliTestSource) Fetch(ctx context.Context) (sheet.Payload, error) {
	return sheet.Payload{
		Logs: []sheet.RawRow{
			sheet.Row("staffId", "name", "date", "time"),
			sheet.Row("S1", "Alice", "2024-03-22", "09:15", "", "", "", "", "", "", "A", "8"),
			sheet.Row("S2", "Bob", "2024-03-22", "08:50", "", "", "", "", "", "", "B", "8"),
		},
		Employees: []sheet.RawRow{
			sheet.Row("lineId", "staffId", "name", "siteId"),
			sheet.Row("L1", "S1", "Alice", "A"),
			sheet.Row("L2", "S2", "Bob", "B"),
			sheet.Row("L3", "S3", "Carol", "A"),
		},
		Shifts: []sheet.RawRow{
			sheet.Row("shiftCode", "shiftName", "startTime", "endTime", "gracePeriod"),
			sheet.Row("SH1", "Morning", "09:00", "17:00", "5"),
		},
	}, nil
}

func newTestApp(out *bytes.Buffer) *App {
	now := func() time.Time { return time.Date(2024, 3, 22, 10, 0, 0, 0, time.UTC) }
	return &App{
		out: out,
		loadService: func(ctx context.Context) (attendance.AttendanceService, error) {
			return attendanceService.NewAttendanceService(cliTestSource{}, memory.NewSnapshotStore(), attendanceService.Config{
				Location: time.UTC,
				Now:      now,
			}), nil
		},
		jwtSecret: "cli-test-secret",
		now:       now,
	}
}

func run(t *testing.T, a *App, args ...string) error {
	t.Helper()
	cmd := SetupCommands(a)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestSummaryCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(t, newTestApp(&out), "summary"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "SITE"))
	assert.Equal(t, []string{"A", "1", "0", "1", "0", "0", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"B", "1", "1", "0", "0", "0", "100"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"ALL", "2", "1", "1", "0", "0", "50"}, strings.Fields(lines[3]))
}

func TestRecordsCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(t, newTestApp(&out), "records", "--site", "B"))
	assert.Contains(t, out.String(), "Bob")
	assert.NotContains(t, out.String(), "Alice")
	assert.Contains(t, out.String(), "1 record(s), mode logs")

	out.Reset()
	require.NoError(t, run(t, newTestApp(&out), "records", "--roster", "--site", "A", "--date", "2024-03-22"))
	assert.Contains(t, out.String(), "Carol")
	assert.Contains(t, out.String(), string(attendance.StatusAbsent))
	assert.Contains(t, out.String(), "2 record(s), mode roster")
}

func TestRecordsCommand_InvalidFilter(t *testing.T) {
	var out bytes.Buffer
	err := run(t, newTestApp(&out), "records", "--start", "22/03/2024")
	assert.ErrorContains(t, err, "start_date")
}

func TestExportCommand(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, run(t, newTestApp(&out), "export", "--out", path))
	assert.Contains(t, out.String(), "Wrote 2 record(s)")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestTokenCommand(t *testing.T) {
	var out bytes.Buffer
	a := newTestApp(&out)
	require.NoError(t, run(t, a, "token", "--staff-id", "S1", "--name", "Alice", "--position", "Operation Manager", "--ttl", "1h"))

	token := strings.SplitN(out.String(), "\n", 2)[0]
	claims, err := jwt.NewJWTService(a.jwtSecret, time.Hour).ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "S1", claims.StaffID)
	assert.Equal(t, "Operation Manager", claims.Position)

	err = run(t, a, "token", "--staff-id", "S1")
	assert.Error(t, err)

	a.jwtSecret = ""
	err = run(t, a, "token", "--staff-id", "S1", "--position", "Guard")
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}
