// README: Departure data model; the stable boundary record every transit source is translated into.
package departures

import "time"

// DefaultDwell is assumed between arrival and departure when upstream only reports one of them.
const DefaultDwell = 30 * time.Second

// Instant is one scheduled moment with an optional realtime estimate.
type Instant struct {
	Timetabled time.Time
	Estimated  *time.Time
}

// Best prefers the estimate over the timetable.
func (i Instant) Best() time.Time {
	if i.Estimated != nil {
		return *i.Estimated
	}
	return i.Timetabled
}

// Call is one stop visit of a trip as reported by a source.
type Call struct {
	StopRef   string
	Arrival   *Instant
	Departure *Instant
}

// StopEvent is one trip passing a queried stop, with its full call chain
// (previous calls, this call, onward calls) in travel order.
type StopEvent struct {
	TripID      string
	LineRef     string
	LineName    string
	Destination string
	Cancelled   bool
	Calls       []Call
}

type Times struct {
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

type StopTime struct {
	StopID string `json:"stop_id"`
	Times  Times  `json:"times"`
}

// Journey is one trip: its stops in travel order plus display text.
type Journey struct {
	LineRef     string     `json:"line_ref"`
	LineName    string     `json:"line_name"`
	Destination string     `json:"destination"`
	Stops       []StopTime `json:"stops"`
}

// LineDepartures maps trip id to journey. Replaced wholesale every fetch cycle.
type LineDepartures map[string]Journey
