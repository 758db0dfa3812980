package entitlement

import "time"

// DayKey formats an instant as the UTC calendar-date key used by daily usage rows.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthKey formats an instant as the UTC YYYY-MM key used by monthly credit rows.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// NextMidnight returns the first instant of the next UTC day.
func NextMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// NextMonthStart returns the first instant of the next UTC month.
func NextMonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
