package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jordanair/jordanair/internal/earthengine"
	"github.com/jordanair/jordanair/internal/raster"
)

// Reducer evaluates spatial-mean reduction expressions remotely.
type Reducer interface {
	ComputeValue(ctx context.Context, expr *earthengine.Expression) (map[string]*float64, error)
}

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	// Reducer executes the per-city reductions.
	Reducer Reducer

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service generates city statistics reports.
type Service struct {
	reducer Reducer
	logger  zerolog.Logger
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		reducer: cfg.Reducer,
		logger:  cfg.Logger,
	}
}

// Generate runs one spatial-mean reduction per configured city and
// assembles the report. Reductions run concurrently, but rows always
// land in fixed city order regardless of completion order. A city with
// no data gets an explicit nil value; a failed remote call fails the
// whole generation.
//
// Results are not memoized: repeating a generation for the same query
// issues the reductions again, matching one report per button press.
func (s *Service) Generate(ctx context.Context, q raster.Query) (*Report, error) {
	start := time.Now()

	values := make([]*float64, len(cities))
	errs := make([]error, len(cities))

	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		go func(i int, city City) {
			defer wg.Done()

			result, err := s.reducer.ComputeValue(ctx, q.ReductionExpression(city.Lat, city.Lon))
			if err != nil {
				errs[i] = fmt.Errorf("reduce %s: %w", city.Name, err)
				return
			}
			// Band absent or null means no data for this city.
			values[i] = result[q.Profile.Band]
		}(i, city)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	rows := make([]Row, len(cities))
	missing := 0
	for i, city := range cities {
		if values[i] == nil {
			missing++
		}
		rows[i] = Row{
			City:      city.Name,
			Pollutant: q.Profile.Name,
			Value:     values[i],
			Unit:      q.Profile.Unit,
			Date:      q.Window.Label(),
		}
	}

	s.logger.Info().
		Str("pollutant", q.Profile.Name).
		Str("window", q.Window.Label()).
		Int("cities", len(rows)).
		Int("missing", missing).
		Dur("duration", time.Since(start)).
		Msg("generated city report")

	return &Report{
		Pollutant:   q.Profile.Name,
		ShortName:   q.Profile.ShortName(),
		Unit:        q.Profile.Unit,
		Date:        q.Window.Label(),
		Year:        q.Window.Year,
		Month:       q.Window.Month,
		GeneratedAt: time.Now(),
		Rows:        rows,
	}, nil
}
