// README: Curve generator; traces rail paths between consecutive stops of live journeys and appends them to the curve file.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mrx/internal/config"
	"mrx/internal/maps"
	"mrx/internal/modules/departures"
	"mrx/internal/modules/route"
	"mrx/internal/modules/stops"
	"mrx/internal/transit"
	"mrx/internal/types"
)

type pair struct {
	from, to stops.Stop
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	out := flag.String("out", cfg.Data.CurvesFile, "curve file to append to")
	workers := flag.Int("workers", 4, "concurrent directions requests")
	limit := flag.Int("limit", 0, "maximum number of new curves (0 = all)")
	dryRun := flag.Bool("dry-run", false, "list missing pairs without calling the maps api")
	flag.Parse()

	apiKey := os.Getenv("MRX_MAPS_API_KEY")
	if apiKey == "" && !*dryRun {
		log.Fatal("MRX_MAPS_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	source, locator := transit.New(cfg.Transit)
	list, err := stops.LoadFile(cfg.Data.StopsFile)
	if err != nil {
		log.Fatalf("stops: %v", err)
	}
	catalog := stops.NewCatalog(stops.Complete(ctx, list, locator, cfg.Game.FetchWorkers))

	existing, err := route.LoadCurves(*out)
	if err != nil {
		log.Fatalf("curves: %v", err)
	}

	deps := departures.NewService(source, catalog, nil, cfg.Game.FetchWorkers, cfg.Game.FetchInterval).Fetch(ctx)
	missing := missingPairs(deps, catalog, existing, cfg.Game.BusMarker)
	if *limit > 0 && len(missing) > *limit {
		missing = missing[:*limit]
	}
	log.Printf("curvegen: %d trips, %d stop pairs without a curve", len(deps), len(missing))

	if *dryRun {
		for _, p := range missing {
			log.Printf("missing: %s -> %s (%s -> %s)", p.from.ID, p.to.ID, p.from.Name, p.to.Name)
		}
		return
	}

	svc, err := maps.NewRouteService(apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize maps client: %v", err)
	}

	var (
		mu     sync.Mutex
		traced = make(map[int][]types.Point)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for i, p := range missing {
		g.Go(func() error {
			pts, err := svc.TransitPath(gctx, p.from.Point(), p.to.Point())
			if err != nil {
				log.Printf("curvegen: %s -> %s: %v", p.from.Name, p.to.Name, err)
				return nil
			}
			mu.Lock()
			traced[i] = pts
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	f, err := os.OpenFile(*out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	written := 0
	for i, p := range missing {
		pts, ok := traced[i]
		if !ok {
			continue
		}
		if err := route.WriteCurves(f, p.from.ID, p.to.ID, pts); err != nil {
			log.Fatalf("write %s: %v", *out, err)
		}
		written++
	}
	log.Printf("curvegen: appended %d curves to %s", written, *out)
}

// missingPairs lists consecutive stop pairs of non-bus journeys that have no curve in either direction.
func missingPairs(deps departures.LineDepartures, catalog *stops.Catalog, existing *route.CurveStore, busMarker string) []pair {
	seen := make(map[[2]string]bool)
	var out []pair
	for _, j := range deps {
		if busMarker != "" && strings.Contains(j.LineRef, busMarker) {
			continue
		}
		for i := 1; i < len(j.Stops); i++ {
			a, b := j.Stops[i-1].StopID, j.Stops[i].StopID
			key := [2]string{min(a, b), max(a, b)}
			if a == b || seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := existing.Lookup(a, b); ok {
				continue
			}
			from, ok1 := catalog.ByID(a)
			to, ok2 := catalog.ByID(b)
			if !ok1 || !ok2 {
				continue
			}
			out = append(out, pair{from: from, to: to})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].from.ID != out[j].from.ID {
			return out[i].from.ID < out[j].from.ID
		}
		return out[i].to.ID < out[j].to.ID
	})
	return out
}
