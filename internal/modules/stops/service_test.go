package stops

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog([]Stop{
		{ID: "de:08212", Name: "Karlsruhe", Lat: 49.0, Lon: 8.4},
		{ID: "de:08212:3", Name: "Durlacher Tor/KIT-Campus Süd", Lat: 49.0091, Lon: 8.4203},
		{ID: "de:08212:1001", Name: "Durlacher Tor/KIT-Campus Süd (U)", Lat: 49.0093, Lon: 8.4190},
		{ID: "de:08212:80", Name: "Kronenplatz", Lat: 49.0094, Lon: 8.4090},
	})
}

func TestCatalog_Resolve(t *testing.T) {
	c := testCatalog()
	tests := []struct {
		name   string
		ref    string
		wantID string
		wantOK bool
	}{
		{name: "exact", ref: "de:08212:80", wantID: "de:08212:80", wantOK: true},
		{name: "platform suffix", ref: "de:08212:3:01", wantID: "de:08212:3", wantOK: true},
		{name: "longest wins over parent", ref: "de:08212:1001:02:1", wantID: "de:08212:1001", wantOK: true},
		{name: "no partial segment match", ref: "de:08211:31", wantOK: false},
		{name: "sibling falls back to parent", ref: "de:08212:31", wantID: "de:08212", wantOK: true},
		{name: "unknown", ref: "de:09999:1", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Resolve(tt.ref)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.ref, ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got.ID, tt.wantID)
			}
		})
	}
}

func TestCatalog_ByName(t *testing.T) {
	c := testCatalog()
	s, ok := c.ByName("Kronenplatz")
	if !ok || s.ID != "de:08212:80" {
		t.Errorf("ByName = %+v, %v", s, ok)
	}
	if _, ok := c.ByName("Nowhere"); ok {
		t.Error("unexpected match")
	}
}

func TestParse(t *testing.T) {
	valid := `
stops:
  - id: "de:08212:3"
    name: "Durlacher Tor/KIT-Campus Süd"
  - id: "de:08212:80"
    name: Kronenplatz
    lat: 49.0094
    lon: 8.4090
`
	list, err := Parse([]byte(valid))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].Lat != 49.0094 || list[0].HasPosition() {
		t.Errorf("parsed = %+v", list)
	}

	invalid := map[string]string{
		"missing name": "stops:\n  - id: \"de:1\"\n",
		"bad latitude": "stops:\n  - id: \"de:1\"\n    name: a\n    lat: 123\n",
		"empty":        "stops: []\n",
		"duplicate":    "stops:\n  - id: x\n    name: a\n  - id: x\n    name: b\n",
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type fakeLocator struct {
	known map[string]Stop
}

func (f *fakeLocator) LocateStop(_ context.Context, id string) (Stop, error) {
	s, ok := f.known[id]
	if !ok {
		return Stop{}, errors.New("not found")
	}
	return s, nil
}

func TestComplete(t *testing.T) {
	list := []Stop{
		{ID: "de:08212:80", Name: "Kronenplatz", Lat: 49.0094, Lon: 8.4090},
		{ID: "de:08212:3", Name: "Durlacher Tor"},
		{ID: "de:08212:99", Name: "Missing"},
	}
	loc := &fakeLocator{known: map[string]Stop{
		"de:08212:3": {ID: "de:08212:3", Name: "ignored", Lat: 49.0091, Lon: 8.4203},
	}}

	got := Complete(context.Background(), list, loc, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 stops, got %+v", got)
	}
	for _, s := range got {
		if strings.HasPrefix(s.Name, "Missing") {
			t.Errorf("unresolved stop kept: %+v", s)
		}
		if s.ID == "de:08212:3" && (s.Lat != 49.0091 || s.Name != "Durlacher Tor") {
			t.Errorf("resolved stop = %+v", s)
		}
	}
	if list[1].HasPosition() {
		t.Error("input slice must not be modified")
	}
}
