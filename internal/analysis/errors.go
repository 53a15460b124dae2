package analysis

import "errors"

var (
	// ErrUnknownMetric reports a metric name that is not a dataset column.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownGranularity reports a granularity outside daily, weekly
	// and monthly.
	ErrUnknownGranularity = errors.New("unknown granularity")

	// ErrNoData reports that the requested computation has no readings to
	// work with.
	ErrNoData = errors.New("no data in period")
)
