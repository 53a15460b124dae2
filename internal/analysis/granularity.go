package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the calendar bucket readings aggregate into.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly" // ISO weeks, Monday start
	Monthly Granularity = "monthly"
)

// Granularities lists the supported values in UI order.
func Granularities() []Granularity {
	return []Granularity{Daily, Weekly, Monthly}
}

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: daily, weekly, monthly)", ErrUnknownGranularity, s)
	}
}

func (g Granularity) String() string { return string(g) }

// BucketStart returns the start, in UTC, of the bucket containing t.
// Weekly buckets start on Monday, monthly buckets on the first of the
// month. A timestamp exactly on a boundary belongs to the bucket it starts.
func (g Granularity) BucketStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// Next returns the start of the bucket after the one starting at start.
func (g Granularity) Next(start time.Time) time.Time {
	switch g {
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Monthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}
