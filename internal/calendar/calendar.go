// Package calendar builds the month grid shown by the reservation page.
//
// A grid always covers whole weeks, so the first and last rows are padded
// with placeholder days from the adjacent months. Placeholders are rendered
// but are never valid reservation dates.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var ErrInvalidMonth = errors.New("invalid month")

type Day struct {
	Date      time.Time
	PrevMonth bool
	NextMonth bool
	Today     bool
}

// IsSelectable reports whether the day belongs to the displayed month.
func (d Day) IsSelectable() bool { return !d.PrevMonth && !d.NextMonth }

func (d Day) Number() int { return d.Date.Day() }

func (d Day) Key() string { return d.Date.Format(DateLayout) }

// Class is the CSS class the page uses for the cell.
func (d Day) Class() string {
	switch {
	case d.PrevMonth:
		return "prev-date"
	case d.NextMonth:
		return "next-date"
	case d.Today:
		return "today"
	}
	return ""
}

type Month struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
	Days      []Day

	index map[string]int
}

// Build returns the grid for year/month. today only drives the "today"
// marker; it is compared by calendar date.
func Build(year int, month time.Month, today time.Time, weekStart time.Weekday) Month {
	first := date(year, month, 1)
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	daysIn := first.AddDate(0, 1, -1).Day()

	total := lead + daysIn
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	todayKey := today.Format(DateLayout)
	m := Month{
		Year:      first.Year(),
		Month:     first.Month(),
		WeekStart: weekStart,
		Days:      make([]Day, 0, total),
		index:     make(map[string]int, total),
	}
	start := first.AddDate(0, 0, -lead)
	for i := 0; i < total; i++ {
		d := start.AddDate(0, 0, i)
		day := Day{
			Date:      d,
			PrevMonth: i < lead,
			NextMonth: i >= lead+daysIn,
		}
		day.Today = day.IsSelectable() && d.Format(DateLayout) == todayKey
		m.index[day.Key()] = len(m.Days)
		m.Days = append(m.Days, day)
	}
	return m
}

// Current builds the grid for the month containing now (in now's location).
func Current(now time.Time, weekStart time.Weekday) Month {
	return Build(now.Year(), now.Month(), now, weekStart)
}

// Lookup resolves a date to its cell in this grid. Dates outside the grid
// (including placeholder-less far dates) are not found.
func (m Month) Lookup(d time.Time) (Day, bool) {
	i, ok := m.index[d.Format(DateLayout)]
	if !ok {
		return Day{}, false
	}
	return m.Days[i], true
}

func (m Month) Key() string { return date(m.Year, m.Month, 1).Format(MonthLayout) }

func (m Month) Title() string { return fmt.Sprintf("%s %d", m.Month, m.Year) }

func (m Month) Next() (int, time.Month) {
	n := date(m.Year, m.Month, 1).AddDate(0, 1, 0)
	return n.Year(), n.Month()
}

func (m Month) Prev() (int, time.Month) {
	p := date(m.Year, m.Month, 1).AddDate(0, -1, 0)
	return p.Year(), p.Month()
}

// Weekdays returns the short weekday headers in grid order.
func (m Month) Weekdays() []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = time.Weekday((int(m.WeekStart) + i) % 7).String()[:3]
	}
	return out
}

func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return t.Year(), t.Month(), nil
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
