package types

import (
	"math"
	"testing"
)

func TestDistance_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		wantM     float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Point{Lat: 49.0094, Lng: 8.4044},
			b:         Point{Lat: 49.0094, Lng: 8.4044},
			wantM:     0,
			tolerance: 0.001,
		},
		{
			name:      "one degree of latitude",
			a:         Point{Lat: 49.0, Lng: 8.4},
			b:         Point{Lat: 50.0, Lng: 8.4},
			wantM:     111195,
			tolerance: 5,
		},
		{
			name:      "Marktplatz to Durlacher Tor (~1.2km)",
			a:         Point{Lat: 49.0093, Lng: 8.4040},
			b:         Point{Lat: 49.0091, Lng: 8.4203},
			wantM:     1190,
			tolerance: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("Distance() = %f, want %f (±%f)", got, tt.wantM, tt.tolerance)
			}
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := Point{Lat: 49.0, Lng: 8.3}
	b := Point{Lat: 49.1, Lng: 8.5}
	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

func TestInterpolate_Endpoints(t *testing.T) {
	path := []Point{
		{Lat: 49.00, Lng: 8.40},
		{Lat: 49.01, Lng: 8.41},
		{Lat: 49.02, Lng: 8.40},
		{Lat: 49.03, Lng: 8.43},
	}

	start, ok := Interpolate(path, 0)
	if !ok || start != path[0] {
		t.Errorf("progress 0 = %v, want %v", start, path[0])
	}
	end, ok := Interpolate(path, 1)
	if !ok || end != path[len(path)-1] {
		t.Errorf("progress 1 = %v, want %v", end, path[len(path)-1])
	}
}

func TestInterpolate_Midpoint(t *testing.T) {
	path := []Point{{Lat: 49.0, Lng: 8.4}, {Lat: 49.0, Lng: 8.5}}
	got, ok := Interpolate(path, 0.5)
	if !ok {
		t.Fatal("expected a point")
	}
	if math.Abs(got.Lng-8.45) > 1e-9 || got.Lat != 49.0 {
		t.Errorf("midpoint = %v", got)
	}
}

func TestInterpolate_WeightsSegmentsByLength(t *testing.T) {
	// first segment is three times as long as the second one
	path := []Point{{Lat: 0, Lng: 0}, {Lat: 0.003, Lng: 0}, {Lat: 0.004, Lng: 0}}
	got, _ := Interpolate(path, 0.5)
	if math.Abs(got.Lat-0.002) > 1e-9 {
		t.Errorf("halfway point lat = %f, want 0.002", got.Lat)
	}
}

func TestInterpolate_Degenerate(t *testing.T) {
	if _, ok := Interpolate(nil, 0.5); ok {
		t.Error("empty polyline must not yield a point")
	}

	single := []Point{{Lat: 1, Lng: 2}}
	if got, ok := Interpolate(single, 0.3); !ok || got != single[0] {
		t.Errorf("single point = %v", got)
	}

	same := []Point{{Lat: 1, Lng: 2}, {Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}
	same[2] = same[0]
	if got, ok := Interpolate(same, 0.7); !ok || got != same[2] {
		t.Errorf("zero-length path = %v, want last point", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.25, 0, 1) != 0.25 {
		t.Error("clamp out of range")
	}
}
