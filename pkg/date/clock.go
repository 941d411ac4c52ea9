package date

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes on a single wall-clock day
const MinutesPerDay = 24 * 60

// ParseClock parses textual "HH:MM" input into minutes since local midnight
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in clock value %q", value)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in clock value %q", value)
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", value)
	}

	return hours*60 + minutes, nil
}

// FormatClock formats minutes since midnight as 24-hour "HH:MM".
// Values past the end of the day wrap onto the next day's clock.
func FormatClock(minutes int) string {
	minutes = normalize(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatClock12 formats minutes since midnight as a 12-hour display
// string like "2:30 PM", without a leading zero on the hour
func FormatClock12(minutes int) string {
	minutes = normalize(minutes)

	hours := minutes / 60
	meridiem := "AM"
	if hours >= 12 {
		meridiem = "PM"
	}

	hours = hours % 12
	if hours == 0 {
		hours = 12
	}

	return fmt.Sprintf("%d:%02d %s", hours, minutes%60, meridiem)
}

func normalize(minutes int) int {
	minutes = minutes % MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return minutes
}

// CombineDuration combines separate hours/minutes fields into total minutes
func CombineDuration(hours int, minutes int) int {
	return hours*60 + minutes
}

// FormatDuration builds a human duration string from total minutes:
// "{h}h {m}m" with a zero component omitted, "0m" when both are zero
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}

	hours := minutes / 60
	remainder := minutes % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if remainder > 0 {
		parts = append(parts, fmt.Sprintf("%dm", remainder))
	}

	return strings.Join(parts, " ")
}

// Interval is a span of minutes within a day. Start is a minute of day,
// End may exceed the day when a task runs past midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewInterval builds an Interval from a start minute and a duration
func NewInterval(start int, durationMinutes int) Interval {
	return Interval{Start: start, End: start + durationMinutes}
}

// Duration returns the length of the interval in minutes
func (i Interval) Duration() int {
	return i.End - i.Start
}

// Overlaps checks whether two half-open intervals share any minute.
// Exactly back-to-back intervals do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Contains checks whether a minute of day falls inside the half-open interval
func (i Interval) Contains(minute int) bool {
	return i.Start <= minute && minute < i.End
}

// String prints an interval in 24-hour clock form
func (i Interval) String() string {
	return fmt.Sprintf("%s - %s", FormatClock(i.Start), FormatClock(i.End))
}
