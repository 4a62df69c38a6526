// README: Departures service; queries every stop concurrently and publishes a fresh timetable on a ticker.
package departures

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"mrx/internal/modules/stops"
)

// Source answers "which trips call at this stop soon".
type Source interface {
	StopEvents(ctx context.Context, stopID string) ([]StopEvent, error)
}

// Cache keeps the last good timetable across restarts.
type Cache interface {
	Save(ctx context.Context, deps LineDepartures) error
	Load(ctx context.Context) (LineDepartures, bool, error)
}

type Service struct {
	source   Source
	catalog  *stops.Catalog
	cache    Cache
	workers  int
	interval time.Duration
}

func NewService(source Source, catalog *stops.Catalog, cache Cache, workers int, interval time.Duration) *Service {
	return &Service{source: source, catalog: catalog, cache: cache, workers: workers, interval: interval}
}

// Fetch runs one cycle. A failing stop query contributes nothing; it never
// aborts the other queries.
func (s *Service) Fetch(ctx context.Context) LineDepartures {
	all := s.catalog.All()
	results := make([][]StopEvent, len(all))

	var g errgroup.Group
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}
	for i, stop := range all {
		i, stop := i, stop
		g.Go(func() error {
			events, err := s.source.StopEvents(ctx, stop.ID)
			if err != nil {
				log.Printf("departures: stop %s (%s): %v", stop.ID, stop.Name, err)
				return nil
			}
			results[i] = events
			return nil
		})
	}
	_ = g.Wait()

	deps := Aggregate(s.catalog, results)
	if len(deps) == 0 {
		log.Printf("departures: warning: cycle produced no trips from %d stops", len(all))
		return deps
	}
	if s.cache != nil {
		if err := s.cache.Save(ctx, deps); err != nil {
			log.Printf("departures: cache save: %v", err)
		}
	}
	return deps
}

// WarmStart returns the cached timetable, if any.
func (s *Service) WarmStart(ctx context.Context) (LineDepartures, bool) {
	if s.cache == nil {
		return nil, false
	}
	deps, ok, err := s.cache.Load(ctx)
	if err != nil {
		log.Printf("departures: cache load: %v", err)
		return nil, false
	}
	return deps, ok
}

// Run fetches immediately and then on every interval, handing each result to publish.
func (s *Service) Run(ctx context.Context, publish func(LineDepartures)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		deps := s.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		publish(deps)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
