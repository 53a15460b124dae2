package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
)

// csvRow mirrors one CSV record before validation. Cells stay strings so a
// parse failure can name the line and column instead of aborting somewhere
// inside the decoder.
type csvRow struct {
	Timestamp   string `csv:"timestamp"`
	P0          string `csv:"P0"`
	P1          string `csv:"P1"`
	P2          string `csv:"P2"`
	Temperature string `csv:"temperature"`
	Humidity    string `csv:"humidity"`
}

// timestampLayouts are tried in order. Exports normally carry RFC3339; the
// space-separated and date-only forms show up in hand-edited files.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Load reads the CSV at path into a Table.
//
// A missing file wraps ErrFileNotFound. A header without the expected
// columns, or any cell that does not parse, wraps ErrMalformedData with the
// CSV line number (the header is line 1).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func decode(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedData)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	dec.DisallowMissingColumns = true

	var readings []Reading
	line := 1 // header
	for {
		var row csvRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var missing *csvutil.MissingColumnsError
			if errors.As(err, &missing) {
				return nil, fmt.Errorf("%w: missing required columns: %s",
					ErrMalformedData, strings.Join(missing.Columns, ", "))
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedData, line, err)
		}

		reading, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedData, line, err)
		}
		readings = append(readings, reading)
	}
	return NewTable(readings), nil
}

func parseRow(row csvRow) (Reading, error) {
	ts, err := parseTimestamp(row.Timestamp)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{Timestamp: ts}
	cells := []struct {
		column string
		raw    string
		dst    *float64
	}{
		{MetricP0, row.P0, &r.P0},
		{MetricP1, row.P1, &r.P1},
		{MetricP2, row.P2, &r.P2},
		{MetricTemperature, row.Temperature, &r.Temperature},
		{MetricHumidity, row.Humidity, &r.Humidity},
	}
	for _, cell := range cells {
		v, err := parseFloat(cell.column, cell.raw)
		if err != nil {
			return Reading{}, err
		}
		*cell.dst = v
	}
	return r, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseFloat(column, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty %s value", column)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", column, s)
	}
	return v, nil
}
