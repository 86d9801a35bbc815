package attendance

import (
	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/datetime"
)

// Placeholder clock-in time of a synthetic absent record.
const absentClock = "-"

// Classifier derives lateness from a clock-in time and a shift. Field picks
// the shift column used as the late tolerance.
type Classifier struct {
	Field attendance.GraceField
}

// Classify returns Late when the clock-in minute is after shift start plus
// tolerance, On-time otherwise. Without a shift nothing can be classified; an
// empty clock-in means the person did not show up.
func (c Classifier) Classify(clockIn string, shift *attendance.Shift) attendance.Status {
	if shift == nil {
		return attendance.StatusUnclassified
	}
	if clockIn == "" || clockIn == absentClock {
		return attendance.StatusAbsent
	}

	in, ok := datetime.Minutes(clockIn)
	if !ok {
		return attendance.StatusUnclassified
	}
	start, ok := datetime.Minutes(shift.StartTime)
	if !ok {
		return attendance.StatusUnclassified
	}

	if in > start+shift.Tolerance(c.Field) {
		return attendance.StatusLate
	}
	return attendance.StatusOnTime
}

// ReferenceShift picks the single shift every record is classified against:
// the one with the given code, or the first shift when code is empty or
// unknown. It returns nil when there are no shifts.
//
// Shifts are not assigned per employee; one reference shift applies to all.
func ReferenceShift(shifts []attendance.Shift, code string) *attendance.Shift {
	if len(shifts) == 0 {
		return nil
	}
	if code != "" {
		for i := range shifts {
			if shifts[i].ShiftCode == code {
				return &shifts[i]
			}
		}
	}
	return &shifts[0]
}
