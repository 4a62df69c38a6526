// README: Train position simulator; places every active trip on its route for a given instant.
package trains

import (
	"sort"
	"strings"
	"time"

	"mrx/internal/modules/departures"
	"mrx/internal/types"
)

// Router resolves the track between two stops.
type Router interface {
	Position(startID, endID string, progress float64) (types.Point, bool)
}

// Simulate positions every trip at instant at. Trips without a bracketing
// stop pair or without geometry are left out. Output is ordered by ID.
func Simulate(deps departures.LineDepartures, router Router, at time.Time) []Train {
	out := make([]Train, 0, len(deps))
	for tripID, j := range deps {
		last, next, ok := bracket(j.Stops, at)
		if !ok {
			continue
		}
		progress := segmentProgress(last.Times.Departure, next.Times.Arrival, at)
		pos, ok := router.Position(last.StopID, next.StopID, progress)
		if !ok {
			continue
		}
		lineID := j.LineRef
		if lineID == "" {
			lineID = tripID
		}
		out = append(out, Train{
			ID:        tripID,
			Lat:       pos.Lat,
			Long:      pos.Lng,
			LineID:    lineID,
			LineName:  j.LineName,
			Direction: j.Destination,
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// bracket finds the last departed stop and the next stop. Before the first
// departure the first pair is used, after the last one the last pair.
func bracket(stops []departures.StopTime, at time.Time) (departures.StopTime, departures.StopTime, bool) {
	if len(stops) < 2 {
		return departures.StopTime{}, departures.StopTime{}, false
	}
	i := sort.Search(len(stops), func(k int) bool {
		return !stops[k].Times.Departure.Before(at)
	})
	i = min(max(i, 1), len(stops)-1)
	lo, hi := i-1, i
	return stops[lo], stops[hi], true
}

func segmentProgress(departed, arrives, at time.Time) float64 {
	total := arrives.Sub(departed)
	if total <= 0 {
		return 1
	}
	return types.Clamp(float64(at.Sub(departed))/float64(total), 0, 1)
}

// WithoutBuses drops trains whose line id carries the marker.
func WithoutBuses(list []Train, marker string) []Train {
	if marker == "" {
		return list
	}
	kept := list[:0:0]
	for _, t := range list {
		if !strings.Contains(t.LineID, marker) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Find returns the train with the given id.
func Find(list []Train, id string) (Train, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return Train{}, false
}
