// README: Route geometry; builds the polyline a train follows between two stops.
package route

import (
	"mrx/internal/modules/stops"
	"mrx/internal/types"
)

type Geometry struct {
	catalog *stops.Catalog
	curves  *CurveStore
}

func NewGeometry(catalog *stops.Catalog, curves *CurveStore) *Geometry {
	if curves == nil {
		curves = NewCurveStore()
	}
	return &Geometry{catalog: catalog, curves: curves}
}

// PointsOnRoute returns [start, curve..., end]. Without a stored curve the
// result is the straight segment. ok is false when either stop is unknown.
func (g *Geometry) PointsOnRoute(startID, endID string) ([]types.Point, bool) {
	start, ok := g.catalog.ByID(startID)
	if !ok {
		return nil, false
	}
	end, ok := g.catalog.ByID(endID)
	if !ok {
		return nil, false
	}

	curve, found := g.curves.Lookup(start.ID, end.ID)
	if !found {
		curve, _ = g.curves.Lookup(start.Name, end.Name)
	}

	points := make([]types.Point, 0, len(curve)+2)
	points = append(points, start.Point())
	points = append(points, curve...)
	points = append(points, end.Point())
	return points, true
}

// Position interpolates along the route between two stops.
func (g *Geometry) Position(startID, endID string, progress float64) (types.Point, bool) {
	points, ok := g.PointsOnRoute(startID, endID)
	if !ok {
		return types.Point{}, false
	}
	return types.Interpolate(points, types.Clamp(progress, 0, 1))
}
