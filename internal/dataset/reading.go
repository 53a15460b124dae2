package dataset

import "time"

// Metric column names as they appear in the CSV header. P0, P1 and P2 are
// the particulate matter channels of the sensor export (PM1, PM10, PM2.5).
const (
	MetricP0          = "P0"
	MetricP1          = "P1"
	MetricP2          = "P2"
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
)

// Reading is one row of the sensor export, stamped in UTC.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	P0          float64   `json:"P0"`
	P1          float64   `json:"P1"`
	P2          float64   `json:"P2"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// Value returns the reading's value for the named metric column.
func (r Reading) Value(metric string) (float64, bool) {
	switch metric {
	case MetricP0:
		return r.P0, true
	case MetricP1:
		return r.P1, true
	case MetricP2:
		return r.P2, true
	case MetricTemperature:
		return r.Temperature, true
	case MetricHumidity:
		return r.Humidity, true
	default:
		return 0, false
	}
}

// Metrics lists the numeric columns in header order.
func Metrics() []string {
	return []string{MetricP0, MetricP1, MetricP2, MetricTemperature, MetricHumidity}
}

// Columns lists every CSV column in header order.
func Columns() []string {
	return append([]string{"timestamp"}, Metrics()...)
}

// IsMetric reports whether metric names a numeric column.
func IsMetric(metric string) bool {
	_, ok := Reading{}.Value(metric)
	return ok
}
