package billsync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// Date represents a calendar date with day-level granularity.
//
// Date values are comparable and are used as map keys, in particular for the
// (account, date) dedup key of a sync run.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf returns the calendar date of t, in t's own location.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String formats the date as YYYY-MM-DD. The zero Date is the empty string.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool {
	return d.y == 0 && d.m == 0 && d.d == 0
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return d.time() }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

var (
	relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmy])$`)
	monthDayDateRE = regexp.MustCompile(`^(?:(\d+)-)?(\d+)$`)
)

// ParseDate parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
//
// It also accepts dates relative to today ("-1d", "+2w", "-1m", "-1y", "0d") and
// day-of-month shortcuts ("27" or "3-27" in the current year).
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)

	if str == "0d" {
		return Today(), nil
	}

	// Relative Duration Format (e.g., -1d, +2w) - sign is mandatory for non-zero
	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if match[1] == "-" {
			num = -num
		}

		today := Today()
		switch match[3] {
		case "d":
			return today.Add(num), nil
		case "w":
			return today.Add(num * 7), nil
		case "m":
			return NewDate(today.Year(), today.Month()+time.Month(num), today.Day()), nil
		case "y":
			return NewDate(today.Year()+num, today.Month(), today.Day()), nil
		}
	}

	// [MM-]DD Format (e.g., 27, 8-27)
	if match := monthDayDateRE.FindStringSubmatch(str); match != nil {
		day, err := strconv.Atoi(match[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid day in date %q: %w", str, err)
		}

		today := Today()
		year, month := today.Year(), today.Month()
		if match[1] != "" {
			m, err := strconv.Atoi(match[1])
			if err != nil {
				return Date{}, fmt.Errorf("invalid month in date %q: %w", str, err)
			}
			if m == 0 {
				year--
				month = time.December
			} else {
				month = time.Month(m)
			}
		}
		// day 0 is the last day of the previous month
		return NewDate(year, month, day), nil
	}

	// We use a slightly more permisive format for read, to support 2025-7-1 instead of 2025-07-01
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, err)
	}
	return NewDate(on.Date()), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}
