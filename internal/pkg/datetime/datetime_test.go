package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"22/03/2024", "2024-03-22", true},
		{"2024-03-22", "2024-03-22", true},
		{"2024/3/5", "2024-03-05", true},
		{"5-3-2024", "2024-03-05", true},
		{"22/03/2567", "2024-03-22", true},
		{"2567-03-22", "2024-03-22", true},
		{"22/03/24", "2024-03-22", true},
		{" 01/12/2023 ", "2023-12-01", true},
		{"2024-03-22T17:00:00.000Z", "2024-03-22", true},
		{"22/03/2024 08:15", "2024-03-22", true},
		{"29/02/2024", "2024-02-29", true},
		{"Mar 22, 2024", "2024-03-22", true},
		{"22 Mar 2567", "2024-03-22", true},
		{"45373", "2024-03-22", true},
		{"Fri Mar 22 2024 09:15:00 GMT+0700 (Indochina Time)", "2024-03-22", true},
		{"30/02/2024", "30/02/2024", false},
		{"13/13/2024", "13/13/2024", false},
		{"not a date", "not a date", false},
		{"", "", false},
		{"-", "-", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDate(c.input)
		assert.Equal(t, c.want, got, "NormalizeDate(%q)", c.input)
		assert.Equal(t, c.wantOK, ok, "NormalizeDate(%q) ok", c.input)
	}
}

func TestNormalizeDate_RoundTrip(t *testing.T) {
	inputs := []string{"01/01/2024", "31/12/1999", "15/06/2567", "2024-02-29", "1999-07-04"}
	for _, in := range inputs {
		first, ok := NormalizeDate(in)
		assert.True(t, ok, in)
		second, ok := NormalizeDate(first)
		assert.True(t, ok, first)
		assert.Equal(t, first, second, "re-normalizing %q", first)
		_, err := time.Parse(DateLayout, second)
		assert.NoError(t, err)
	}
}

func TestNormalizeDateWithYear(t *testing.T) {
	got, ok := NormalizeDateWithYear("22/03", 2024)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-22", got)

	got, ok = NormalizeDate("22/03")
	assert.False(t, ok)
	assert.Equal(t, "22/03", got)
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"9:5", "09:05", true},
		{"09:05", "09:05", true},
		{"9:05:59", "09:05", true},
		{"17:30:00", "17:30", true},
		{"2024-03-22T14:30:00", "14:30", true},
		{"1899-12-30T02:17:56.000Z", "02:17", true},
		{"2024-03-22 08:01:00", "08:01", true},
		{"9:05 AM", "09:05", true},
		{"1:15 PM", "13:15", true},
		{"0.375", "09:00", true},
		{"45373.5", "12:00", true},
		{"25:00", "25:00", false},
		{"-", "-", false},
		{"", "", false},
		{"late", "late", false},
	}
	for _, c := range cases {
		got, ok := NormalizeTime(c.input)
		assert.Equal(t, c.want, got, "NormalizeTime(%q)", c.input)
		assert.Equal(t, c.wantOK, ok, "NormalizeTime(%q) ok", c.input)
	}
}

func TestMinutes(t *testing.T) {
	m, ok := Minutes("09:15")
	assert.True(t, ok)
	assert.Equal(t, 555, m)

	m, ok = Minutes("00:00")
	assert.True(t, ok)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "-", "24:00", "09:60", "09:15:00", "abc"} {
		_, ok := Minutes(bad)
		assert.False(t, ok, bad)
	}
}

func TestFormatDate(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)
	assert.Equal(t, "2024-03-22", FormatDate(time.Date(2024, 3, 21, 18, 0, 0, 0, time.UTC).In(bangkok)))
}
