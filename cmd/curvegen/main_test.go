package main

import (
	"testing"

	"mrx/internal/modules/departures"
	"mrx/internal/modules/route"
	"mrx/internal/modules/stops"
	"mrx/internal/types"
)

func TestMissingPairs(t *testing.T) {
	catalog := stops.NewCatalog([]stops.Stop{
		{ID: "A", Name: "a", Lat: 1, Lon: 1},
		{ID: "B", Name: "b", Lat: 2, Lon: 2},
		{ID: "C", Name: "c", Lat: 3, Lon: 3},
	})
	existing := route.NewCurveStore()
	existing.Add("B", "A", []types.Point{{Lat: 2, Lng: 2}, {Lat: 1, Lng: 1}})

	deps := departures.LineDepartures{
		"T1":  {LineRef: "kvv:S1", Stops: []departures.StopTime{{StopID: "A"}, {StopID: "B"}, {StopID: "C"}}},
		"T2":  {LineRef: "kvv:S1", Stops: []departures.StopTime{{StopID: "C"}, {StopID: "B"}}},
		"BUS": {LineRef: "bus:kvv:62", Stops: []departures.StopTime{{StopID: "A"}, {StopID: "C"}}},
	}
	got := missingPairs(deps, catalog, existing, "bus")
	if len(got) != 1 {
		t.Fatalf("pairs = %+v", got)
	}
	if p := got[0]; !(p.from.ID == "B" && p.to.ID == "C") && !(p.from.ID == "C" && p.to.ID == "B") {
		t.Errorf("pair = %s -> %s", p.from.ID, p.to.ID)
	}
}
