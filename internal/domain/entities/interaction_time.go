package entities

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// interaction_date is stored as a string and several serializations exist in the wild
var interactionDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// TimeOfDayPattern matches a clock reading such as "9:30", "09:30:15.250" or "2:05 PM".
// Capture groups are hour, minute, second, fraction and meridiem. It is written in the
// subset shared by RE2 and PCRE so store pipelines can evaluate the same expression.
const TimeOfDayPattern = `^(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?\s*([AaPp][Mm])?$`

var timeOfDayRegexp = regexp.MustCompile(TimeOfDayPattern)

// ParseInteractionDate parses a stored interaction_date into a UTC instant.
// Values without a zone are read as UTC; a bare date is midnight UTC.
func ParseInteractionDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range interactionDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// CivilDay truncates t to midnight UTC of its calendar day
func CivilDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange returns the closed interval [day 00:00:00.000, day 23:59:59.999] in UTC
func DayRange(day time.Time) (time.Time, time.Time) {
	start := CivilDay(day)
	return start, start.Add(24*time.Hour - time.Millisecond)
}

// ParseTimeOfDay returns the offset from midnight of a start/end time string,
// truncated to the millisecond. A clock reading that fails range checks is
// unparseable; anything else that parses as an interaction date contributes its
// UTC clock.
func ParseTimeOfDay(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if m := timeOfDayRegexp.FindStringSubmatch(value); m != nil {
		return clockReading(m[1], m[2], m[3], m[4], m[5])
	}
	if t, ok := ParseInteractionDate(value); ok {
		return clock(t), true
	}
	return 0, false
}

// TimeOfDayMillis is ParseTimeOfDay as whole milliseconds, the unit stores sort on
func TimeOfDayMillis(value string) (int64, bool) {
	d, ok := ParseTimeOfDay(value)
	return d.Milliseconds(), ok
}

func clockReading(hour, minute, second, fraction, meridiem string) (time.Duration, bool) {
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	s := 0
	if second != "" {
		s, _ = strconv.Atoi(second)
	}
	if m > 59 || s > 59 {
		return 0, false
	}

	switch strings.ToUpper(meridiem) {
	case "":
		if h > 23 {
			return 0, false
		}
	case "AM", "PM":
		if h < 1 || h > 12 {
			return 0, false
		}
		h %= 12
		if strings.EqualFold(meridiem, "PM") {
			h += 12
		}
	}

	ms, _ := strconv.Atoi((fraction + "000")[:3])
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, true
}

func clock(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()).Truncate(time.Millisecond)
}

// CompareRows orders rows newest first by civil date, then by start time of day.
// Unparseable values sort after parseable ones. Ties fall back to the source identity
// (log id, then position in the log) so repeated queries page identically.
func CompareRows(a, b *FlatInteractionRow) int {
	dayA, okA := ParseInteractionDate(a.InteractionDate)
	dayB, okB := ParseInteractionDate(b.InteractionDate)
	if c := compareDesc(okA, okB, CivilDay(dayA).Unix(), CivilDay(dayB).Unix()); c != 0 {
		return c
	}
	if !okA && !okB {
		if c := strings.Compare(b.InteractionDate, a.InteractionDate); c != 0 {
			return c
		}
	}

	startA, okA := ParseTimeOfDay(a.StartTime)
	startB, okB := ParseTimeOfDay(b.StartTime)
	if c := compareDesc(okA, okB, int64(startA), int64(startB)); c != 0 {
		return c
	}
	if !okA && !okB {
		if c := strings.Compare(b.StartTime, a.StartTime); c != 0 {
			return c
		}
	}

	if c := strings.Compare(a.LogID, b.LogID); c != 0 {
		return c
	}
	return cmp.Compare(a.EventIndex, b.EventIndex)
}

func compareDesc(okA, okB bool, a, b int64) int {
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	case !okA && !okB:
		return 0
	}
	return cmp.Compare(b, a)
}

// SortRows sorts rows in place using CompareRows
func SortRows(rows []*FlatInteractionRow) {
	slices.SortStableFunc(rows, CompareRows)
}
