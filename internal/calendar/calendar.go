// Package calendar builds the month view that marks grant deadlines.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"grantbot/internal/deadline"
)

// Month is a displayed year+month pair.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Shift moves n months forward (negative n moves back), rolling over years.
func (m Month) Shift(n int) Month {
	// Day 1 never overflows, so AddDate cannot skip a month.
	t := m.first().AddDate(0, n, 0)
	return MonthOf(t)
}

// Next returns the following month.
func (m Month) Next() Month { return m.Shift(1) }

// Prev returns the preceding month.
func (m Month) Prev() Month { return m.Shift(-1) }

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the first day of the month.
func (m Month) FirstWeekday() time.Weekday {
	return m.first().Weekday()
}

// Date returns the given day of the month.
func (m Month) Date(day int) time.Time {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

func (m Month) first() time.Time {
	return m.Date(1)
}

// Day is a single cell of the month grid.
type Day struct {
	Number      int
	Today       bool
	HasDeadline bool
}

// View is a rendered month: Leading blank cells followed by the days.
type View struct {
	Month   Month
	Leading int
	Days    []Day
}

// Build lays out month m, flagging today and the dates present in idx.
func Build(m Month, today time.Time, idx deadline.Index) View {
	todayKey := deadline.Key(today)
	v := View{
		Month:   m,
		Leading: int(m.FirstWeekday()),
		Days:    make([]Day, 0, m.Days()),
	}
	for n := 1; n <= m.Days(); n++ {
		d := m.Date(n)
		v.Days = append(v.Days, Day{
			Number:      n,
			Today:       deadline.Key(d) == todayKey,
			HasDeadline: idx.Has(d),
		})
	}
	return v
}

// DeadlineCount returns how many days of the view carry a deadline.
func (v View) DeadlineCount() int {
	n := 0
	for _, d := range v.Days {
		if d.HasDeadline {
			n++
		}
	}
	return n
}

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Render draws the view as a monospace grid. Today is marked with '>'
// before the number and deadline days with '•' after it.
func (v View) Render() string {
	var b strings.Builder
	b.WriteString(v.Month.String())
	b.WriteString("\n")
	for _, h := range weekdayHeader {
		fmt.Fprintf(&b, " %s ", h)
	}
	b.WriteString("\n")

	col := 0
	for ; col < v.Leading; col++ {
		b.WriteString("    ")
	}
	for _, d := range v.Days {
		open, mark := ' ', ' '
		if d.Today {
			open = '>'
		}
		if d.HasDeadline {
			mark = '•'
		}
		fmt.Fprintf(&b, "%c%2d%c", open, d.Number, mark)
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
