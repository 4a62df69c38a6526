package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httptransport "mrx/internal/http"
	"mrx/internal/infra"
	"mrx/internal/modules/game"
	"mrx/internal/modules/replay"
	"mrx/internal/modules/stops"
)

func newServer(t *testing.T, checks ...httptransport.HealthCheck) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	loop := game.NewLoop(game.NewState(nil), nil, nil, nil, game.LoopConfig{})
	return httptransport.NewServer(httptransport.ServerDeps{
		Loop:     loop,
		Stops:    stops.NewCatalog(nil),
		Replays:  replay.NewLibrary(t.TempDir()),
		Verifier: infra.NewStaticVerifier("secret"),
		Health:   checks,
	}).Routes()
}

func TestRoutes_CreateTeamRequiresAdminToken(t *testing.T) {
	h := newServer(t)
	send := func(auth string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/create-team", strings.NewReader(`{"name":"Blue","color":"#00f"}`))
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}
	if code := send(""); code != http.StatusUnauthorized {
		t.Errorf("no token: %d", code)
	}
	if code := send("Bearer wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong token: %d", code)
	}
	if code := send("Bearer secret"); code != http.StatusOK {
		t.Errorf("right token: %d", code)
	}
}

func TestRoutes_PublicLists(t *testing.T) {
	h := newServer(t)
	for _, path := range []string{"/api/teams", "/api/stops", "/api/replays"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: code = %d", path, w.Code)
		}
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h := newServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/create-team", nil)
	req.Header.Set("Origin", "http://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestRoutes_Health(t *testing.T) {
	ok := newServer(t, httptransport.HealthCheck{Name: "db", Check: func(context.Context) error { return nil }})
	w := httptest.NewRecorder()
	ok.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"ok"`) {
		t.Errorf("healthy: %d %s", w.Code, w.Body.String())
	}

	bad := newServer(t, httptransport.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("down") }})
	w = httptest.NewRecorder()
	bad.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"redis":"down"`) {
		t.Errorf("unhealthy: %d %s", w.Code, w.Body.String())
	}
}
