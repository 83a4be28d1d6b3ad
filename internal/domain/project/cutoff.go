package project

import "time"

// NextCutoffDate computes the next billing cutoff for a contract started
// at start: thirty days after start, then rolled forward one month at a
// time until strictly after now. The anchor day-of-month is preserved
// across rolls and clamped to the last valid day of shorter months, so a
// Jan 31 base never lands on an invalid Feb 31.
func NextCutoffDate(start, now time.Time) time.Time {
	base := start.AddDate(0, 0, 30)
	cutoff := base
	for months := 1; !cutoff.After(now); months++ {
		cutoff = addMonthsClamped(base, months)
	}
	return cutoff
}

// CutoffOn reports the project's effective cutoff for reminder checks:
// the stored cutoff date when set, otherwise the one computed from the
// start date. Only established contracts have a cutoff.
func CutoffOn(p Project, now time.Time) (time.Time, bool) {
	if p.Status != StatusEstablished {
		return time.Time{}, false
	}
	if p.CutoffDate != "" {
		if d, err := ParseDate(p.CutoffDate); err == nil {
			return d, true
		}
	}
	if p.StartDate != "" {
		if d, err := ParseDate(p.StartDate); err == nil {
			return NextCutoffDate(d, now), true
		}
	}
	return time.Time{}, false
}

// CutoffTomorrow reports whether the project's cutoff falls on the
// calendar day after now.
func CutoffTomorrow(p Project, now time.Time) bool {
	cutoff, ok := CutoffOn(p, now)
	if !ok {
		return false
	}
	tomorrow := now.AddDate(0, 0, 1)
	return cutoff.Year() == tomorrow.Year() && cutoff.YearDay() == tomorrow.YearDay()
}

func addMonthsClamped(t time.Time, months int) time.Time {
	// AddDate normalizes Jan 31 + 1 month into March; anchor on the first
	// of the month and clamp the day instead.
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}
