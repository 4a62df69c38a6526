// README: Stop reference data; immutable after startup.
package stops

import "mrx/internal/types"

// Stop is a station the game tracks trains between.
type Stop struct {
	Name string  `json:"name" yaml:"name" validate:"required"`
	ID   string  `json:"id" yaml:"id" validate:"required"`
	Lat  float64 `json:"lat" yaml:"lat" validate:"omitempty,latitude"`
	Lon  float64 `json:"lon" yaml:"lon" validate:"omitempty,longitude"`
}

func (s Stop) Point() types.Point {
	return types.Point{Lat: s.Lat, Lng: s.Lon}
}

// HasPosition reports whether coordinates are known. (0,0) is treated as unknown.
func (s Stop) HasPosition() bool {
	return s.Lat != 0 || s.Lon != 0
}
