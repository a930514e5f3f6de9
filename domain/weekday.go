package domain

import "time"

// Weekday is the registration day code, 0 (Sunday) through 6 (Saturday).
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Name returns the lowercase day name used as listing key, or "" for invalid codes.
func (d Weekday) Name() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d]
}

// WeekdayOf returns the weekday code of t as observed in loc.
// A nil loc means UTC.
func WeekdayOf(t time.Time, loc *time.Location) Weekday {
	if loc == nil {
		loc = time.UTC
	}
	return Weekday(t.In(loc).Weekday())
}

// FilterWeekdays keeps the codes inside [0,6], dropping the rest silently.
// Duplicates collapse onto their first occurrence.
func FilterWeekdays(codes []int) []Weekday {
	var seen [7]bool
	days := make([]Weekday, 0, len(codes))
	for _, code := range codes {
		day := Weekday(code)
		if !day.Valid() || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	return days
}
