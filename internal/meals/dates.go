// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package meals

import (
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	yearMonthLayout = "2006-01"
)

// FormatLocalDate formats t as YYYY-MM-DD in the local time zone. The backend
// groups meals by the user's calendar day, not by UTC.
func FormatLocalDate(t time.Time) string {
	return t.Local().Format(dateLayout)
}

// FormatYearMonth formats t as YYYY-MM in the local time zone.
func FormatYearMonth(t time.Time) string {
	return t.Local().Format(yearMonthLayout)
}

// ParseDate parses a YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseYearMonth parses a YYYY-MM month in the local time zone.
func ParseYearMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(yearMonthLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t, nil
}

// DaysIn returns the number of days in the month containing t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
