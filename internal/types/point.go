// README: Geographic point value object and city-scale distance/interpolation helpers.
package types

import "math"

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371008.8

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"long"`
}

// Distance returns the equirectangular distance in metres between a and b.
// Accurate enough within a city; not geodesically exact over long ranges.
func Distance(a, b Point) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := degreesToRadians(b.Lng - a.Lng)
	x := dLng * math.Cos((lat1+lat2)/2)
	return EarthRadiusMeters * math.Hypot(dLat, x)
}

// Lerp blends a towards b by t (0 yields a, 1 yields b).
func Lerp(a, b Point, t float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// Interpolate returns the point at progress*length along the polyline.
// The caller clamps progress to [0,1]. ok is false only for an empty polyline.
func Interpolate(points []Point, progress float64) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	last := points[len(points)-1]

	segments := make([]float64, len(points)-1)
	var total float64
	for i := 1; i < len(points); i++ {
		segments[i-1] = Distance(points[i-1], points[i])
		total += segments[i-1]
	}
	if total == 0 {
		return last, true
	}

	target := progress * total
	if target >= total {
		return last, true
	}
	var walked float64
	for i, seg := range segments {
		if walked+seg >= target {
			if seg == 0 {
				return points[i+1], true
			}
			return Lerp(points[i], points[i+1], (target-walked)/seg), true
		}
		walked += seg
	}
	return last, true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
