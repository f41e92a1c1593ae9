// Package raster builds the remote queries for pollutant concentration
// rasters over Jordan: a pollutant profile and a month window compose
// into a temporal-mean composite clipped to the national boundary.
package raster

import (
	"errors"
	"fmt"
	"time"

	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/pollutant"
)

// MinYear is the first year with Sentinel-5P offline products.
const MinYear = 2019

// Fixed national boundary: the LSIB simplified country polygons
// filtered to Jordan.
const (
	boundaryTable    = "USDOS/LSIB_SIMPLE/2017"
	boundaryProperty = "country_na"
	boundaryCountry  = "Jordan"
)

// Spatial-mean reduction parameters for city statistics.
const (
	// ReductionScale is the neighborhood scale in meters.
	ReductionScale = 7000

	// ReductionMaxPixels caps the pixels a reduction may consider.
	ReductionMaxPixels = int64(1e9)
)

// Predefined validation errors.
var (
	ErrYearOutOfRange  = errors.New("year out of range")
	ErrMonthOutOfRange = errors.New("month out of range")
)

// MaxYear returns the newest selectable year.
func MaxYear() int {
	return time.Now().Year()
}

// TimeWindow is a calendar month to query.
type TimeWindow struct {
	Year  int
	Month int
}

// NewTimeWindow validates and constructs a window.
func NewTimeWindow(year, month int) (TimeWindow, error) {
	if year < MinYear || year > MaxYear() {
		return TimeWindow{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrYearOutOfRange, year, MinYear, MaxYear())
	}
	if month < 1 || month > 12 {
		return TimeWindow{}, fmt.Errorf("%w: %d", ErrMonthOutOfRange, month)
	}
	return TimeWindow{Year: year, Month: month}, nil
}

// Start returns the first day of the window as YYYY-MM-DD.
func (w TimeWindow) Start() string {
	return fmt.Sprintf("%04d-%02d-01", w.Year, w.Month)
}

// End returns the first day of the following month, rolling into the
// next year after December. The window is [Start, End).
func (w TimeWindow) End() string {
	year, month := w.Year, w.Month+1
	if month > 12 {
		year, month = year+1, 1
	}
	return fmt.Sprintf("%04d-%02d-01", year, month)
}

// Label returns the window as YYYY-MM for report rows.
func (w TimeWindow) Label() string {
	return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
}

// MonthName returns the English month name for display.
func (w TimeWindow) MonthName() string {
	return time.Month(w.Month).String()
}

// Query is an immutable pollutant/month/boundary combination. Its
// expressions describe rasters held remotely, never materialized here.
type Query struct {
	Profile pollutant.Profile
	Window  TimeWindow
}

// NewQuery combines a profile and a window.
func NewQuery(profile pollutant.Profile, window TimeWindow) Query {
	return Query{Profile: profile, Window: window}
}

// Boundary returns the Jordan boundary feature collection node.
func Boundary() *earthengine.ValueNode {
	return earthengine.FilterEquals(
		earthengine.FeatureCollection(boundaryTable),
		boundaryProperty,
		boundaryCountry,
	)
}

// composite returns the image node: collection filtered to the window,
// averaged over time, restricted to the profile band, clipped to the
// boundary. A window with zero source images yields a fully-masked
// raster whose reductions are null, not an error.
func (q Query) composite() *earthengine.ValueNode {
	filtered := earthengine.FilterDate(
		earthengine.ImageCollection(q.Profile.Collection),
		earthengine.Constant(q.Window.Start()),
		earthengine.Constant(q.Window.End()),
	)
	image := earthengine.SelectBand(earthengine.Mean(filtered), q.Profile.Band)
	return earthengine.ClipToCollection(image, Boundary())
}

// CompositeExpression is the clipped temporal-mean raster for map export.
func (q Query) CompositeExpression() *earthengine.Expression {
	return earthengine.NewExpression(q.composite())
}

// BoundaryExpression is the boundary outline drawn as an image layer.
func BoundaryExpression(color string) *earthengine.Expression {
	return earthengine.NewExpression(earthengine.PaintOutline(Boundary(), color))
}

// ReductionExpression is the spatial mean of the composite over a 7 km
// neighborhood centered on the given point.
func (q Query) ReductionExpression(lat, lon float64) *earthengine.Expression {
	return earthengine.NewExpression(earthengine.ReduceRegionMean(
		q.composite(),
		earthengine.Point(lat, lon),
		ReductionScale,
		ReductionMaxPixels,
	))
}
