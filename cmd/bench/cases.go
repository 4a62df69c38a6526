// README: Smoke cases for a running server; HTTP, websocket fan-out, Postgres roster and Redis departures cache.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"mrx/internal/modules/departures"
	"mrx/internal/modules/game"
	"mrx/internal/modules/team"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	unique := fmt.Sprintf("bench-%d", time.Now().Unix())
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("tables=%d", len(tables))}
			},
		},
		{
			Name: "Redis: departures cache populated",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				deps, ok, err := departures.NewRedisCache(r.redis, 0).Load(ctx)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !ok {
					return Result{Status: "SKIP", Note: "no fetch cycle cached yet"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("trips=%d", len(deps))}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, "", []int{200}),
		httpCaseMethod("API: list teams", http.MethodGet, base+"/api/teams", nil, "", []int{200}),
		httpCaseMethod("API: list stops", http.MethodGet, base+"/api/stops", nil, "", []int{200}),
		httpCaseMethod("API: list replays", http.MethodGet, base+"/api/replays", nil, "", []int{200}),

		httpCase("Teams: blank name -> 400", base+"/api/create-team", map[string]any{"name": "   "}, r.cfg.AdminToken, []int{400}),
		httpCase("Teams: unknown kind -> 400", base+"/api/create-team", map[string]any{"name": unique + "-x", "kind": "Spy"}, r.cfg.AdminToken, []int{400}),
		httpCase("Teams: create", base+"/api/create-team", map[string]any{"name": unique, "color": "#336699"}, r.cfg.AdminToken, []int{200}),
		httpCase("Teams: duplicate name -> 409", base+"/api/create-team", map[string]any{"name": " " + unique + " "}, r.cfg.AdminToken, []int{409}),

		{
			Name: "WS: first snapshot",
			Run: func(ctx context.Context, r *Runner) Result {
				return firstSnapshot(ctx, r)
			},
		},
		{
			Name: "WS: join team and report position",
			Run: func(ctx context.Context, r *Runner) Result {
				return joinAndReport(ctx, r, unique)
			},
		},
		{
			Name: "Perf: snapshot fan-out",
			Run: func(ctx context.Context, r *Runner) Result {
				return fanOut(ctx, r)
			},
		},
	}
}

func httpCase(name, url string, body any, token string, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, token, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, token string, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func (r *Runner) dialGame(ctx context.Context) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(r.cfg.BaseURL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func readSnapshot(conn *websocket.Conn, wait time.Duration) (game.Snapshot, error) {
	var snap game.Snapshot
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}

func firstSnapshot(ctx context.Context, r *Runner) Result {
	start := time.Now()
	conn, err := r.dialGame(ctx)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer conn.Close()

	snap, err := readSnapshot(conn, 3*time.Second)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("teams=%d trains=%d", len(snap.Teams), len(snap.Trains))}
}

func joinAndReport(ctx context.Context, r *Runner, name string) Result {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/api/teams", nil)
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	var teams []team.Team
	err = json.NewDecoder(resp.Body).Decode(&teams)
	resp.Body.Close()
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	var id uint64
	for _, t := range teams {
		if t.Name == name {
			id = t.ID
		}
	}
	if id == 0 {
		return Result{Status: "SKIP", Note: "bench team was not created"}
	}

	conn, err := r.dialGame(ctx)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer conn.Close()

	for _, m := range []game.ClientMessage{game.JoinTeam{TeamID: id}, game.Position{Lat: 49.0094, Long: 8.4090}} {
		data, _ := game.EncodeClientMessage(m)
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
	}

	start := time.Now()
	deadline := start.Add(3 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := readSnapshot(conn, time.Until(deadline))
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		for _, ts := range snap.Teams {
			if ts.Team.ID == id && ts.Lat != 0 {
				return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("lat=%.4f", ts.Lat)}
			}
		}
	}
	return Result{Status: "FAIL", Note: "position never reflected"}
}

func fanOut(ctx context.Context, r *Runner) Result {
	var (
		received atomic.Int64
		failed   atomic.Int64
		wg       sync.WaitGroup
	)
	end := time.Now().Add(r.cfg.Duration)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := r.dialGame(ctx)
			if err != nil {
				failed.Add(1)
				return
			}
			defer conn.Close()
			for time.Now().Before(end) {
				if _, err := readSnapshot(conn, 2*time.Second); err != nil {
					failed.Add(1)
					return
				}
				received.Add(1)
			}
		}()
	}
	wg.Wait()

	if received.Load() == 0 {
		return Result{Status: "FAIL", Note: "no snapshots received"}
	}
	perClient := float64(received.Load()) / float64(r.cfg.Concurrency) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("clients=%d snapshots/s/client=%.1f failures=%d", r.cfg.Concurrency, perClient, failed.Load())}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
