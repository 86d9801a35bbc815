package ingest

import (
	"testing"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLogRow_FullRow(t *testing.T) {
	row := sheet.Row("S1", "Alice", "22/03/2567", "9:5:30", "13.75", "100.50", "22/03/2567", "17:01", "13.76", "100.51", "A", "8")

	entry, ok := MapLogRow(row, knownStaff("S1"))

	require.True(t, ok)
	assert.Equal(t, attendance.LogEntry{
		StaffID:          "S1",
		Name:             "Alice",
		DateClockIn:      "2024-03-22",
		ClockInTime:      "09:05",
		ClockInLocation:  attendance.GeoPoint{Lat: "13.75", Long: "100.50"},
		DateClockOut:     "2024-03-22",
		ClockOutTime:     "17:01",
		ClockOutLocation: attendance.GeoPoint{Lat: "13.76", Long: "100.51"},
		SiteID:           "A",
		WorkingHours:     "8",
		DateValid:        true,
	}, entry)
}

func TestMapLogRow_ShortRowDropped(t *testing.T) {
	_, ok := MapLogRow(sheet.Row("S1"), knownStaff("S1"))
	assert.False(t, ok)

	_, ok = MapLogRow(sheet.RawRow{}, knownStaff("S1"))
	assert.False(t, ok)
}

func TestMapLogRow_EmptyStaffIDDropped(t *testing.T) {
	for _, id := range []any{"", "  ", "undefined", nil} {
		_, ok := MapLogRow(sheet.Row(id, "Ghost", "2024-03-22", "09:00"), StaffIndex{})
		assert.False(t, ok, "staff id %v", id)
	}
}

func TestMapLogRow_TrimsAndStringifies(t *testing.T) {
	row := sheet.Row(" 1001 ", " Bob ", "2024-03-22", "08:00", nil, nil, nil, nil, nil, nil, 7, 8.5)
	row[0] = sheet.NumberCell(1001)

	entry, ok := MapLogRow(row, knownStaff("1001"))

	require.True(t, ok)
	assert.Equal(t, "1001", entry.StaffID)
	assert.Equal(t, "Bob", entry.Name)
	assert.Equal(t, "7", entry.SiteID)
	assert.Equal(t, "8.5", entry.WorkingHours)
	assert.Equal(t, "", entry.DateClockOut)
	assert.Equal(t, "", entry.ClockOutTime)
}

func TestMapLogRow_UnparseableDateKept(t *testing.T) {
	entry, ok := MapLogRow(sheet.Row("S1", "Alice", "yesterday-ish", "09:00"), knownStaff("S1"))

	require.True(t, ok)
	assert.False(t, entry.DateValid)
	assert.Equal(t, "yesterday-ish", entry.DateClockIn)
	assert.Equal(t, "09:00", entry.ClockInTime)
}

func TestMapLogRow_MissingClockPlaceholder(t *testing.T) {
	entry, ok := MapLogRow(sheet.Row("S1", "Alice", "2024-03-22", "-"), knownStaff("S1"))

	require.True(t, ok)
	assert.Equal(t, "-", entry.ClockInTime)
}

func TestMapLogRow_FillsFromRoster(t *testing.T) {
	staff := NewStaffIndex([]attendance.Employee{{StaffID: "S1", Name: "Alice", SiteID: "A"}})

	entry, ok := MapLogRow(sheet.Row("S1", "", "2024-03-22", "09:00"), staff)

	require.True(t, ok)
	assert.Equal(t, "Alice", entry.Name)
	assert.Equal(t, "A", entry.SiteID)
}

func TestMapEmployeeRow(t *testing.T) {
	emp, ok := MapEmployeeRow(sheet.Row("L1", " S1 ", "Alice", "A", "staff", "Operation Manager"))
	require.True(t, ok)
	assert.Equal(t, attendance.Employee{
		LineID:   "L1",
		StaffID:  "S1",
		Name:     "Alice",
		SiteID:   "A",
		RoleType: "staff",
		Position: "Operation Manager",
	}, emp)

	emp, ok = MapEmployeeRow(sheet.Row("L2", "S2"))
	require.True(t, ok)
	assert.Equal(t, "", emp.Position)

	_, ok = MapEmployeeRow(sheet.Row("L3", ""))
	assert.False(t, ok)

	_, ok = MapEmployeeRow(sheet.Row("L4"))
	assert.False(t, ok)
}

func TestMapShiftRow(t *testing.T) {
	s, ok := MapShiftRow(sheet.Row("SH1", "Morning", "9:00", "17:00:00", 5, "15"))
	require.True(t, ok)
	assert.Equal(t, "SH1", s.ShiftCode)
	assert.Equal(t, "09:00", s.StartTime)
	assert.Equal(t, "17:00", s.EndTime)
	assert.Equal(t, 5, s.GracePeriod)
	require.NotNil(t, s.LateThreshold)
	assert.Equal(t, 15, *s.LateThreshold)

	s, ok = MapShiftRow(sheet.Row("SH2", "Night", "22:00", "06:00", "n/a", "late after 10"))
	require.True(t, ok)
	assert.Equal(t, 0, s.GracePeriod)
	assert.Nil(t, s.LateThreshold)

	_, ok = MapShiftRow(sheet.Row("", "Nameless", "09:00"))
	assert.False(t, ok)
}

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"10", 10, true},
		{"10.0", 10, true},
		{"15 min", 15, true},
		{"-5", -5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
	}
	for _, c := range cases {
		got, ok := parseMinutes(c.input)
		assert.Equal(t, c.want, got, c.input)
		assert.Equal(t, c.wantOK, ok, c.input)
	}
}
