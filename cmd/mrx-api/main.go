// README: Entry point; loads config, restores the roster, starts the game loop, the departures fetcher and the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"mrx/internal/config"
	httptransport "mrx/internal/http"
	"mrx/internal/infra"
	"mrx/internal/modules/departures"
	"mrx/internal/modules/game"
	"mrx/internal/modules/replay"
	"mrx/internal/modules/route"
	"mrx/internal/modules/stops"
	"mrx/internal/modules/team"
	"mrx/internal/transit"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, locator := transit.New(cfg.Transit)

	stopList, err := stops.LoadFile(cfg.Data.StopsFile)
	if err != nil {
		log.Fatalf("stops: %v", err)
	}
	catalog := stops.NewCatalog(stops.Complete(ctx, stopList, locator, cfg.Game.FetchWorkers))
	log.Printf("stops: %d of %d stops placed", catalog.Len(), len(stopList))

	curves, err := route.LoadCurves(cfg.Data.CurvesFile)
	if err != nil {
		log.Fatalf("curves: %v", err)
	}
	log.Printf("curves: %d route curves loaded", curves.Len())

	var health []httptransport.HealthCheck

	var pool *pgxpool.Pool
	if cfg.DB.DSN != "" {
		pool, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		health = append(health, httptransport.HealthCheck{Name: "postgres", Check: pool.Ping})
	}

	var cache departures.Cache
	if cfg.Redis.Addr != "" {
		rdb := infra.NewRedis(cfg.Redis.Addr)
		defer rdb.Close()
		cache = departures.NewRedisCache(rdb, cfg.Redis.TTL)
		health = append(health, httptransport.HealthCheck{Name: "redis", Check: redisPing(rdb)})
	}

	var roster team.RosterStore = team.NewFileStore(cfg.Game.TeamsFile)
	if cfg.Game.Roster == "pg" {
		pg := team.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("roster schema: %v", err)
		}
		roster = pg
	}
	teams, err := roster.Load(ctx)
	if err != nil {
		log.Fatalf("roster: %v", err)
	}

	state := game.NewState(teams)
	loop := game.NewLoop(state, route.NewGeometry(catalog, curves), roster, game.NewJournal(cfg.Game.JournalFile), game.LoopConfig{
		Tick:      cfg.Game.Tick,
		BusMarker: cfg.Game.BusMarker,
	})

	fetcher := departures.NewService(source, catalog, cache, cfg.Game.FetchWorkers, cfg.Game.FetchInterval)
	publish := loop.PublishDepartures(ctx)
	if deps, ok := fetcher.WarmStart(ctx); ok {
		publish(deps)
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Loop:     loop,
		Stops:    catalog,
		Replays:  replay.NewLibrary(cfg.Data.ReplayDir),
		Verifier: infra.NewStaticVerifier(cfg.HTTP.AdminToken),
		Health:   health,
	})
	if cfg.HTTP.AdminToken == "" {
		log.Printf("warning: MRX_ADMIN_TOKEN not set; /api/create-team is open")
	}

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go loop.Run(ctx)
	go fetcher.Run(ctx, publish)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func redisPing(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
