// Package calendar implements business-day arithmetic over a fixed holiday
// set, grounded on the workday predicate and date-walking helpers in the
// original schedule calculator.
package calendar

import "time"

// Holidays is the compile-time holiday set the published calendar contract
// covers. Changing it changes every date the planning engine produces, so
// it is versioned alongside the module rather than made runtime-configurable.
var Holidays = map[string]struct{}{
	"2025-01-01": {}, "2025-03-03": {}, "2025-03-04": {}, "2025-04-18": {},
	"2025-04-21": {}, "2025-05-01": {}, "2025-06-19": {}, "2025-09-07": {},
	"2025-10-12": {}, "2025-11-02": {}, "2025-11-15": {}, "2025-11-20": {},
	"2025-12-25": {},
	"2026-01-01": {}, "2026-02-16": {}, "2026-02-17": {}, "2026-04-03": {},
	"2026-04-21": {}, "2026-05-01": {}, "2026-06-04": {}, "2026-09-07": {},
	"2026-10-12": {}, "2026-11-02": {}, "2026-11-15": {}, "2026-11-20": {},
	"2026-12-25": {},
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

func midnight(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// IsWorkday reports whether d is Monday-Friday and not a listed holiday.
func IsWorkday(d time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	_, holiday := Holidays[dateKey(d)]
	return !holiday
}

// EnsureWorkday returns the least d' >= d that is a workday.
func EnsureWorkday(d time.Time) time.Time {
	d = midnight(d)
	for !IsWorkday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextWorkday returns the least d' > d that is a workday.
func NextWorkday(d time.Time) time.Time {
	d = midnight(d).AddDate(0, 0, 1)
	return EnsureWorkday(d)
}

// AddWorkdays advances n workdays from d. AddWorkdays(d, 0) returns d
// unchanged regardless of whether d itself is a workday.
func AddWorkdays(d time.Time, n int) time.Time {
	d = midnight(d)
	if n <= 0 {
		return d
	}
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if IsWorkday(d) {
			n--
		}
	}
	return d
}

// CountWorkdays counts workdays in [s, e] inclusive; 0 if s > e.
func CountWorkdays(s, e time.Time) int {
	s, e = midnight(s), midnight(e)
	if s.After(e) {
		return 0
	}
	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d) {
			count++
		}
	}
	return count
}

// CountWorkdaysBetween counts workdays strictly between s and e (exclusive
// of both endpoints); 0 if e <= s.
func CountWorkdaysBetween(s, e time.Time) int {
	s, e = midnight(s), midnight(e)
	if !e.After(s) {
		return 0
	}
	count := 0
	for d := s.AddDate(0, 0, 1); d.Before(e); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d) {
			count++
		}
	}
	return count
}
