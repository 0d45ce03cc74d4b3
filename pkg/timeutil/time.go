package timeutil

import "time"

// DateLayout is the wire format for settlement target dates
const DateLayout = "2006-01-02"

// Now returns the current time in UTC.
// Always use this instead of time.Now() to ensure timezone consistency.
func Now() time.Time {
	return time.Now().UTC()
}

// ParseDate parses a YYYY-MM-DD date string into a UTC midnight time
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDate renders a time as its YYYY-MM-DD date in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay returns the start of the day (midnight) in UTC
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59) in UTC
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 23, 59, 59, 0, time.UTC)
}

// DayWindow returns the [00:00:00, 23:59:59] UTC window of the given date.
// Daily settlement aggregates orders and refunds inside this window.
func DayWindow(date time.Time) (time.Time, time.Time) {
	return StartOfDay(date), EndOfDay(date)
}

// Yesterday returns the previous UTC date at midnight
func Yesterday() time.Time {
	return StartOfDay(Now().AddDate(0, 0, -1))
}
