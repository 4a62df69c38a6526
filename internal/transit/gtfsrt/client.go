// README: GTFS-Realtime TripUpdates source; one feed download serves all stop queries within the refresh window.
package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"mrx/internal/modules/departures"
)

type Client struct {
	url        string
	minRefresh time.Duration
	http       *http.Client
	now        func() time.Time

	mu        sync.Mutex
	feed      *gtfs.FeedMessage
	fetchedAt time.Time
}

func NewClient(url string, minRefresh time.Duration) *Client {
	return &Client{
		url:        url,
		minRefresh: minRefresh,
		http:       &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// StopEvents returns every trip update that calls at stopID. Stop ids match
// the same way catalog ids do: exact or followed by a ":" suffix.
func (c *Client) StopEvents(ctx context.Context, stopID string) ([]departures.StopEvent, error) {
	feed, err := c.currentFeed(ctx)
	if err != nil {
		return nil, err
	}

	var events []departures.StopEvent
	for _, entity := range feed.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil || tu.GetTrip().GetTripId() == "" {
			continue
		}
		if !callsAt(tu, stopID) {
			continue
		}
		events = append(events, translate(tu))
	}
	return events, nil
}

func (c *Client) currentFeed(ctx context.Context) (*gtfs.FeedMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.feed != nil && c.now().Sub(c.fetchedAt) < c.minRefresh {
		return c.feed, nil
	}
	feed, err := c.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}
	c.feed = feed
	c.fetchedAt = c.now()
	return feed, nil
}

func (c *Client) fetchFeed(ctx context.Context) (*gtfs.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("gtfsrt: create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtfsrt: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtfsrt: feed returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtfsrt: read response: %w", err)
	}
	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("gtfsrt: parse protobuf: %w", err)
	}
	return feed, nil
}

func callsAt(tu *gtfs.TripUpdate, stopID string) bool {
	for _, stu := range tu.GetStopTimeUpdate() {
		id := stu.GetStopId()
		if id == stopID || strings.HasPrefix(id, stopID+":") {
			return true
		}
	}
	return false
}

func translate(tu *gtfs.TripUpdate) departures.StopEvent {
	trip := tu.GetTrip()
	lineRef := trip.GetRouteId()
	if lineRef == "" {
		lineRef = trip.GetTripId()
	}
	ev := departures.StopEvent{
		TripID:    trip.GetTripId(),
		LineRef:   lineRef,
		LineName:  trip.GetRouteId(),
		Cancelled: trip.GetScheduleRelationship() == gtfs.TripDescriptor_CANCELED,
	}
	if tu.GetVehicle().GetLabel() != "" {
		ev.Destination = tu.GetVehicle().GetLabel()
	}

	for _, stu := range tu.GetStopTimeUpdate() {
		if stu.GetScheduleRelationship() == gtfs.TripUpdate_StopTimeUpdate_SKIPPED {
			continue
		}
		ev.Calls = append(ev.Calls, departures.Call{
			StopRef:   stu.GetStopId(),
			Arrival:   instant(stu.GetArrival()),
			Departure: instant(stu.GetDeparture()),
		})
	}
	if ev.Destination == "" && len(ev.Calls) > 0 {
		ev.Destination = ev.Calls[len(ev.Calls)-1].StopRef
	}
	return ev
}

// instant maps a StopTimeEvent. GTFS-RT only carries the predicted absolute
// time, so the timetable is recovered by subtracting the reported delay.
func instant(e *gtfs.TripUpdate_StopTimeEvent) *departures.Instant {
	if e == nil || e.Time == nil {
		return nil
	}
	predicted := time.Unix(e.GetTime(), 0).UTC()
	if e.Delay == nil {
		return &departures.Instant{Timetabled: predicted}
	}
	scheduled := predicted.Add(-time.Duration(e.GetDelay()) * time.Second)
	return &departures.Instant{Timetabled: scheduled, Estimated: &predicted}
}
