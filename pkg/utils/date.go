package utils

import "time"

// LoadLocation resolves an IANA zone name, falling back to UTC when the zone
// database is unavailable.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 0)
	}
	return loc
}

// DayKey returns the calendar date of t in loc, formatted as 2006-01-02.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}
