package attendance

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/datetime"
)

// BuildRecords classifies every log entry against shift. The result keeps
// the order of logs.
func BuildRecords(logs []attendance.LogEntry, shift *attendance.Shift, c Classifier) []attendance.AttendanceRecord {
	records := make([]attendance.AttendanceRecord, 0, len(logs))
	for _, l := range logs {
		records = append(records, recordFromLog(l, shift, c))
	}
	return records
}

func recordFromLog(l attendance.LogEntry, shift *attendance.Shift, c Classifier) attendance.AttendanceRecord {
	return attendance.AttendanceRecord{
		StaffID:   l.StaffID,
		SiteID:    l.SiteID,
		Name:      l.Name,
		ShiftCode: shiftCode(shift),
		DateStart: l.DateClockIn,
		StartTime: l.ClockInTime,
		DateEnd:   l.DateClockOut,
		EndTime:   l.ClockOutTime,
		Status:    c.Classify(l.ClockInTime, shift),
		DateValid: l.DateValid,
	}
}

func shiftCode(shift *attendance.Shift) string {
	if shift == nil {
		return ""
	}
	return shift.ShiftCode
}

// FilterRecords keeps the records matching f, in their original order.
// Date bounds are inclusive; records with an unparsed date never pass a
// date-bounded filter.
func FilterRecords(records []attendance.AttendanceRecord, f attendance.Filter) []attendance.AttendanceRecord {
	out := make([]attendance.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if f.SiteID != "" && r.SiteID != f.SiteID {
			continue
		}
		if f.StaffID != "" && r.StaffID != f.StaffID {
			continue
		}
		if f.DateBounded() && !inRange(r, f) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func inRange(r attendance.AttendanceRecord, f attendance.Filter) bool {
	if !r.DateValid {
		return false
	}
	if f.StartDate != "" && r.DateStart < f.StartDate {
		return false
	}
	if f.EndDate != "" && r.DateStart > f.EndDate {
		return false
	}
	return true
}

// SortRecords orders records by site id, then start time. Equal keys keep
// their relative order.
func SortRecords(records []attendance.AttendanceRecord) {
	slices.SortStableFunc(records, func(a, b attendance.AttendanceRecord) int {
		if c := cmp.Compare(a.SiteID, b.SiteID); c != 0 {
			return c
		}
		return cmp.Compare(a.StartTime, b.StartTime)
	})
}

// Summarize counts records by status.
func Summarize(records []attendance.AttendanceRecord) attendance.Summary {
	var s attendance.Summary
	for _, r := range records {
		countStatus(&s, r.Status)
	}
	finishSummary(&s)
	return s
}

// SummarizeBySite returns one summary per site, sorted by site id.
func SummarizeBySite(records []attendance.AttendanceRecord) []attendance.SiteSummary {
	bySite := make(map[string]*attendance.Summary)
	for _, r := range records {
		s, ok := bySite[r.SiteID]
		if !ok {
			s = &attendance.Summary{}
			bySite[r.SiteID] = s
		}
		countStatus(s, r.Status)
	}

	sites := make([]attendance.SiteSummary, 0, len(bySite))
	for id, s := range bySite {
		finishSummary(s)
		sites = append(sites, attendance.SiteSummary{SiteID: id, Summary: *s})
	}
	slices.SortFunc(sites, func(a, b attendance.SiteSummary) int {
		return cmp.Compare(a.SiteID, b.SiteID)
	})
	return sites
}

func countStatus(s *attendance.Summary, status attendance.Status) {
	s.Total++
	switch status {
	case attendance.StatusOnTime:
		s.OnTime++
	case attendance.StatusLate:
		s.Late++
	case attendance.StatusAbsent:
		s.Absent++
	default:
		s.Unclassified++
	}
}

// finishSummary computes the on-time percentage, rounded to two decimals.
func finishSummary(s *attendance.Summary) {
	if s.Total == 0 {
		s.OnTimeRate = 0
		return
	}
	s.OnTimeRate = math.Round(float64(s.OnTime)/float64(s.Total)*10000) / 100
}

// RosterRecords materializes the expected attendance sheet for one day:
// every employee matching the site and staff filters gets their first valid
// log of that day, or a synthetic absent record when there is none.
func RosterRecords(
	employees []attendance.Employee,
	logs []attendance.LogEntry,
	date string,
	f attendance.Filter,
	shift *attendance.Shift,
	c Classifier,
) []attendance.AttendanceRecord {
	firstLog := make(map[string]attendance.LogEntry)
	for _, l := range logs {
		if !l.DateValid || l.DateClockIn != date {
			continue
		}
		if _, seen := firstLog[l.StaffID]; !seen {
			firstLog[l.StaffID] = l
		}
	}

	records := make([]attendance.AttendanceRecord, 0, len(employees))
	for _, e := range employees {
		if f.SiteID != "" && e.SiteID != f.SiteID {
			continue
		}
		if f.StaffID != "" && e.StaffID != f.StaffID {
			continue
		}

		if l, ok := firstLog[e.StaffID]; ok {
			r := recordFromLog(l, shift, c)
			if r.SiteID == "" {
				r.SiteID = e.SiteID
			}
			records = append(records, r)
			continue
		}

		records = append(records, attendance.AttendanceRecord{
			StaffID:   e.StaffID,
			SiteID:    e.SiteID,
			Name:      e.Name,
			ShiftCode: shiftCode(shift),
			DateStart: date,
			StartTime: absentClock,
			Status:    attendance.StatusAbsent,
			DateValid: true,
		})
	}
	return records
}

// DayDate resolves a named day against now. now should already be in the
// reporting location.
func DayDate(now time.Time, day attendance.Day) (string, error) {
	switch day {
	case attendance.DayToday:
		return datetime.FormatDate(now), nil
	case attendance.DayYesterday:
		return datetime.FormatDate(now.AddDate(0, 0, -1)), nil
	}
	return "", attendance.ErrUnknownDay
}

// DayFilter narrows f to the single date.
func DayFilter(f attendance.Filter, date string) attendance.Filter {
	f.StartDate = date
	f.EndDate = date
	return f
}
