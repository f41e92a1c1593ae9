// Package report generates per-city mean concentration reports for a
// pollutant/month query and serializes them for download.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// City is a fixed named point location.
type City struct {
	Name string
	Lat  float64
	Lon  float64
}

// cities is the fixed report order. Every report has exactly one row
// per entry, in this order.
var cities = []City{
	{Name: "Irbid", Lat: 32.55, Lon: 35.85},
	{Name: "Amman", Lat: 31.95, Lon: 35.92},
	{Name: "Zarqa", Lat: 32.06, Lon: 36.10},
	{Name: "Aqaba", Lat: 29.53, Lon: 35.00},
	{Name: "Mafraq", Lat: 32.34, Lon: 36.24},
}

// Cities returns the configured cities in report order.
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

// Row is one city's observation. Value is nil when the reduction found
// no data for the city (no coverage in the window, cloud masking); a
// missing value is never zero and never a dropped row.
type Row struct {
	City      string
	Pollutant string
	Value     *float64
	Unit      string
	Date      string
}

// Report is an ordered set of city observations for one pollutant and
// month. It lives only for the session that generated it; regenerating
// always produces a fresh report.
type Report struct {
	Pollutant   string
	ShortName   string
	Unit        string
	Date        string
	Year        int
	Month       int
	GeneratedAt time.Time
	Rows        []Row
}

// Filename returns the download name, encoding the pollutant short
// name and the unpadded year and month.
func (r *Report) Filename() string {
	return fmt.Sprintf("Jordan_AirQuality_%s_%d_%d.csv", r.ShortName, r.Year, r.Month)
}

// WriteCSV serializes the report as delimited text: a header line and
// one line per city. Missing values serialize as empty cells.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"City", "Pollutant", "Value", "Unit", "Date"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range r.Rows {
		value := ""
		if row.Value != nil {
			value = strconv.FormatFloat(*row.Value, 'g', -1, 64)
		}
		if err := cw.Write([]string{row.City, row.Pollutant, value, row.Unit, row.Date}); err != nil {
			return fmt.Errorf("write csv row for %s: %w", row.City, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
