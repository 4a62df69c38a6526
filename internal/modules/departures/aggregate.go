// README: Journey aggregation; merges per-stop event lists into per-trip timetables.
package departures

import (
	"sort"

	"mrx/internal/modules/stops"
)

// MinStops is the smallest journey that can be positioned (a current and a next stop).
const MinStops = 2

// TimesFor fills a missing arrival or departure with DefaultDwell. ok is false
// when the call carries neither.
func TimesFor(c Call) (Times, bool) {
	switch {
	case c.Arrival != nil && c.Departure != nil:
		return Times{Arrival: c.Arrival.Best(), Departure: c.Departure.Best()}, true
	case c.Arrival != nil:
		a := c.Arrival.Best()
		return Times{Arrival: a, Departure: a.Add(DefaultDwell)}, true
	case c.Departure != nil:
		d := c.Departure.Best()
		return Times{Arrival: d.Add(-DefaultDwell), Departure: d}, true
	default:
		return Times{}, false
	}
}

type tripBuilder struct {
	journey Journey
	seen    map[string]bool
}

// Aggregate merges the results of all stop queries, indexed in catalog order.
// The first record for a (trip, stop) pair wins; later duplicates are dropped.
// Journeys with fewer than MinStops resolved stops are discarded.
func Aggregate(catalog *stops.Catalog, perStop [][]StopEvent) LineDepartures {
	trips := make(map[string]*tripBuilder)
	for _, events := range perStop {
		for _, ev := range events {
			if ev.Cancelled || ev.TripID == "" {
				continue
			}
			b, ok := trips[ev.TripID]
			if !ok {
				b = &tripBuilder{
					journey: Journey{LineRef: ev.LineRef, LineName: ev.LineName, Destination: ev.Destination},
					seen:    make(map[string]bool),
				}
				trips[ev.TripID] = b
			}
			for _, call := range ev.Calls {
				stop, ok := catalog.Resolve(call.StopRef)
				if !ok || b.seen[stop.ID] {
					continue
				}
				times, ok := TimesFor(call)
				if !ok {
					continue
				}
				b.seen[stop.ID] = true
				b.journey.Stops = append(b.journey.Stops, StopTime{StopID: stop.ID, Times: times})
			}
		}
	}

	out := make(LineDepartures, len(trips))
	for id, b := range trips {
		if len(b.journey.Stops) < MinStops {
			continue
		}
		sort.SliceStable(b.journey.Stops, func(i, j int) bool {
			return b.journey.Stops[i].Times.Departure.Before(b.journey.Stops[j].Times.Departure)
		})
		out[id] = b.journey
	}
	return out
}
