package team

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func roster() []State {
	return []State{
		{Team: Team{ID: 1, Name: "Mr. X", Kind: KindMrX}},
		{Team: Team{ID: 4, Name: "Alpha", Kind: KindDetective}},
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTeam
		wantErr error
		want    Team
	}{
		{name: "whitespace name", req: CreateTeam{Name: "  "}, wantErr: ErrInvalidName},
		{name: "empty name", req: CreateTeam{}, wantErr: ErrInvalidName},
		{name: "duplicate after trim", req: CreateTeam{Name: " Alpha "}, wantErr: ErrNameAlreadyExists},
		{name: "bad kind", req: CreateTeam{Name: "Beta", Kind: "Spy"}, wantErr: ErrInvalidKind},
		{
			name: "defaults to detective",
			req:  CreateTeam{Name: " Beta ", Color: "#ff0000"},
			want: Team{ID: 5, Name: "Beta", Color: "#ff0000", Kind: KindDetective},
		},
		{
			name: "observer",
			req:  CreateTeam{Name: "Gamma", Kind: KindObserver},
			want: Team{ID: 5, Name: "Gamma", Kind: KindObserver},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(5, tt.req, roster())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("team = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEnsureMrX(t *testing.T) {
	next := uint64(10)
	gen := func() uint64 { next++; return next }

	same, added := EnsureMrX(roster(), gen)
	if added || len(same) != 2 {
		t.Errorf("existing Mr. X must be kept as is")
	}

	got, added := EnsureMrX([]State{{Team: Team{ID: 3, Name: "Alpha", Kind: KindDetective}}}, gen)
	if !added || len(got) != 2 {
		t.Fatalf("expected synthesized Mr. X, got %+v", got)
	}
	mrx := got[1].Team
	if mrx.Kind != KindMrX || mrx.ID != 11 || mrx.Name != MrXName || mrx.Color != MrXColor {
		t.Errorf("synthesized = %+v", mrx)
	}

	clash, _ := EnsureMrX([]State{{Team: Team{ID: 1, Name: MrXName, Kind: KindDetective}}}, gen)
	if clash[1].Team.Name == MrXName {
		t.Error("synthesized team must not reuse an existing name")
	}
}

func TestMaxID(t *testing.T) {
	if MaxID(nil) != 0 || MaxID(roster()) != 4 {
		t.Error("unexpected max id")
	}
}

func TestKind_UnmarshalJSON(t *testing.T) {
	var req CreateTeam
	if err := json.Unmarshal([]byte(`{"name":"a","color":"#fff","kind":"MrX"}`), &req); err != nil || req.Kind != KindMrX {
		t.Errorf("kind = %q err = %v", req.Kind, err)
	}
	if err := json.Unmarshal([]byte(`{"name":"a","kind":"Pirate"}`), &req); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestState_WireShape(t *testing.T) {
	train := "kvv:1"
	data, err := json.Marshal(State{Team: Team{ID: 2, Name: "A", Color: "#1", Kind: KindDetective}, Lat: 49, Long: 8.4, OnTrain: &train})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"team":{"id":2,"name":"A","color":"#1","kind":"Detective"},"long":8.4,"lat":49,"on_train":"kvv:1"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant  %s", data, want)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "teams.json"))
	ctx := context.Background()

	empty, err := store.Load(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("missing file: %v %v", empty, err)
	}

	train := "T9"
	in := append(roster(), State{Team: Team{ID: 7, Name: "Rider", Kind: KindDetective}, OnTrain: &train, Lat: 49.1})
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 3 || out[2].OnTrain == nil || *out[2].OnTrain != "T9" || out[2].Lat != 49.1 {
		t.Errorf("loaded %+v", out)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestPGStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("MRX_TEST_DSN")
	if dsn == "" {
		t.Skip("MRX_TEST_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	store := NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := store.Save(ctx, roster()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, roster()[:1]); err != nil {
		t.Fatalf("save smaller roster: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Team.Kind != KindMrX {
		t.Errorf("loaded %+v", got)
	}
}
