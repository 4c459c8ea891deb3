// internal/dates/dates.go
package dates

import "time"

// Layout is the only calendar format accepted anywhere in the system.
const Layout = "2006-01-02"

// Valid reports whether s is a well-formed YYYY-MM-DD calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Compare orders two valid dates: -1 if a < b, 0 if equal, 1 if a > b.
// Both arguments must already have passed Valid.
func Compare(a, b string) int {
	ta, _ := time.Parse(Layout, a)
	tb, _ := time.Parse(Layout, b)
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	}
	return 0
}

// Today returns the current calendar date.
func Today() string {
	return time.Now().Format(Layout)
}

// DaysBetween returns the whole days from an earlier date a to a later date b.
func DaysBetween(a, b string) int {
	ta, _ := time.Parse(Layout, a)
	tb, _ := time.Parse(Layout, b)
	return int(tb.Sub(ta).Hours() / 24)
}
