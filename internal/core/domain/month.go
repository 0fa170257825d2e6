package domain

import (
	"fmt"
	"time"
)

// Month identifies one calendar month, the granularity at which budget plans
// are kept. The zero value is invalid.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "2006-01" formatted month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t, evaluated in UTC.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Bounds returns the half-open interval [start, end) covering the month in
// UTC. The exclusive end keeps month filtering free of boundary and timezone
// off-by-ones.
func (m Month) Bounds() (start, end time.Time) {
	start = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// Contains reports whether t falls inside the month's half-open interval.
func (m Month) Contains(t time.Time) bool {
	start, end := m.Bounds()
	u := t.UTC()
	return !u.Before(start) && u.Before(end)
}

// IsZero reports whether the month is the invalid zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}
