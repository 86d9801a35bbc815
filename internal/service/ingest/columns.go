package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
)

const (
	// Only the first cells are searched for a known staff id.
	staffScanWidth = 5

	// Offsets from the staff column used when no date/time cell is found.
	fallbackDateOffset = 2
	fallbackTimeOffset = 3

	minDateLength = 8
	maxTimeLength = 8
)

// StaffIndex maps staff ids to roster entries.
type StaffIndex map[string]attendance.Employee

// NewStaffIndex indexes employees by staff id. The first row for an id wins.
func NewStaffIndex(employees []attendance.Employee) StaffIndex {
	idx := make(StaffIndex, len(employees))
	for _, e := range employees {
		if _, exists := idx[e.StaffID]; !exists {
			idx[e.StaffID] = e
		}
	}
	return idx
}

func (idx StaffIndex) Has(staffID string) bool {
	if staffID == "" {
		return false
	}
	_, ok := idx[staffID]
	return ok
}

// LogColumns are the positions of the anchor fields in one log row.
type LogColumns struct {
	Staff int
	Date  int
	Time  int
}

// DiscoverLogColumns infers where the staff id, clock-in date and clock-in
// time live in a log row whose layout is not fixed.
//
// The staff column is the first of the leading cells holding a known staff
// id (column 0 otherwise). Date and time are the first cells anywhere in the
// row shaped like a date or a time; the staff cell itself is never used.
// Missing anchors fall back to fixed offsets from the staff column.
func DiscoverLogColumns(row sheet.RawRow, known StaffIndex) LogColumns {
	cols := LogColumns{Staff: 0, Date: -1, Time: -1}

	for i := 0; i < staffScanWidth && i < row.Len(); i++ {
		if known.Has(row.Text(i)) {
			cols.Staff = i
			break
		}
	}

	for i := 0; i < row.Len(); i++ {
		if i == cols.Staff {
			continue
		}
		value := row.Text(i)
		if cols.Date < 0 && looksLikeDate(value) {
			cols.Date = i
		}
		if cols.Time < 0 && looksLikeTime(value) {
			cols.Time = i
		}
		if cols.Date >= 0 && cols.Time >= 0 {
			break
		}
	}

	if cols.Date < 0 {
		cols.Date = cols.Staff + fallbackDateOffset
	}
	if cols.Time < 0 {
		cols.Time = cols.Staff + fallbackTimeOffset
	}
	return cols
}

func looksLikeDate(s string) bool {
	if !hasDigit(s) {
		return false
	}
	return strings.Contains(s, "/") ||
		(strings.Contains(s, "-") && utf8.RuneCountInString(s) >= minDateLength)
}

func looksLikeTime(s string) bool {
	return hasDigit(s) && strings.Contains(s, ":") && utf8.RuneCountInString(s) <= maxTimeLength
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
