// Package datetime converts the date and time strings found in spreadsheet
// exports into canonical YYYY-MM-DD dates and HH:MM clock times.
//
// None of the functions fail: when a value cannot be understood the original
// string is handed back together with ok == false.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	DateLayout = "2006-01-02"

	// Years above this are Buddhist Era and are shifted back by buddhistOffset.
	buddhistYearThreshold = 2500
	buddhistOffset        = 543

	// Plausible range of Excel serial day numbers (1954..2119).
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

var genericDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02 Jan 2006",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 2 2006",
	"20060102",
}

// NormalizeDate returns the canonical form of raw, or raw unchanged and
// false when it cannot be read as a calendar date.
func NormalizeDate(raw string) (string, bool) {
	return NormalizeDateWithYear(raw, 0)
}

// NormalizeDateWithYear is NormalizeDate that also accepts day/month values
// without a year, placing them in refYear. refYear <= 0 disables that form.
func NormalizeDateWithYear(raw string, refYear int) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw, false
	}

	if sep := separatorOf(s); sep != "" {
		parts := strings.Split(s, sep)
		switch len(parts) {
		case 3:
			if date, ok := fromParts(parts[0], parts[1], parts[2]); ok {
				return date, true
			}
		case 2:
			if refYear > 0 {
				if date, ok := fromParts(parts[0], parts[1], strconv.Itoa(refYear)); ok {
					return date, true
				}
			}
		}
	}

	if t, ok := parseGenericDate(s); ok {
		return t.Format(DateLayout), true
	}
	return raw, false
}

// FormatDate renders t as a canonical date in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func separatorOf(s string) string {
	switch {
	case strings.Contains(s, "/"):
		return "/"
	case strings.Contains(s, "-"):
		return "-"
	}
	return ""
}

// fromParts reads YYYY,MM,DD when the first part has four characters and
// DD,MM,YYYY otherwise. The last part may carry a trailing time.
func fromParts(first, second, third string) (string, bool) {
	first = strings.TrimSpace(first)
	second = strings.TrimSpace(second)
	third = leadingDigits(strings.TrimSpace(third))

	var yearStr, dayStr string
	if len(first) == 4 {
		yearStr, dayStr = first, third
	} else {
		dayStr, yearStr = first, third
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	month, err := strconv.Atoi(second)
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", false
	}

	year = gregorianYear(year)
	if !validDate(year, month, day) {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func gregorianYear(year int) int {
	if year < 100 {
		year += 2000
	}
	if year > buddhistYearThreshold {
		year -= buddhistOffset
	}
	return year
}

func validDate(year, month, day int) bool {
	if year <= 0 || month < 1 || month > 12 || day < 1 {
		return false
	}
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= lastDay
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func parseGenericDate(s string) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= minExcelSerial && serial <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t, true
			}
		}
	}

	s = stripZoneName(s)
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > buddhistYearThreshold {
				t = t.AddDate(-buddhistOffset, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// stripZoneName drops the "(Indochina Time)" suffix of JavaScript date strings.
func stripZoneName(s string) string {
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		return s[:i]
	}
	return s
}
