package dataset

import (
	"sort"
	"time"
)

// Table is an immutable, timestamp-ordered set of readings. Every derived
// view (filters, aggregates, summaries) computes from a Table without
// mutating it, so one snapshot can serve any number of readers.
type Table struct {
	readings []Reading
}

// NewTable copies rs and sorts the copy by timestamp ascending. Input order
// does not matter; exports are usually monotonic but this is not assumed.
func NewTable(rs []Reading) *Table {
	readings := make([]Reading, len(rs))
	copy(readings, rs)
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	return &Table{readings: readings}
}

func (t *Table) Len() int { return len(t.readings) }

// Readings returns the full ordered slice. Callers must not modify it.
func (t *Table) Readings() []Reading { return t.readings }

// Bounds returns the first and last timestamps. ok is false when the table
// is empty.
func (t *Table) Bounds() (first, last time.Time, ok bool) {
	if len(t.readings) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.readings[0].Timestamp, t.readings[len(t.readings)-1].Timestamp, true
}

// Between returns the readings with from <= Timestamp < to. A zero from or
// to leaves that side unbounded, so Between of two zero times is the whole
// table.
func (t *Table) Between(from, to time.Time) []Reading {
	lo := sort.Search(len(t.readings), func(i int) bool {
		return !t.readings[i].Timestamp.Before(from)
	})
	hi := len(t.readings)
	if !to.IsZero() {
		hi = sort.Search(len(t.readings), func(i int) bool {
			return !t.readings[i].Timestamp.Before(to)
		})
	}
	if lo > hi {
		return nil
	}
	return t.readings[lo:hi]
}

// Head returns up to n readings from the start of the table.
func (t *Table) Head(n int) []Reading {
	if n < 0 {
		n = 0
	}
	if n > len(t.readings) {
		n = len(t.readings)
	}
	return t.readings[:n]
}
