// README: TRIAS HTTP client; translates stop events into the departures boundary record.
package trias

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mrx/internal/modules/departures"
	"mrx/internal/modules/stops"
)

const busMarker = "bus"

var ErrNoLocation = errors.New("trias: stop not found")

type Client struct {
	endpoint  string
	requestor string
	results   int
	http      *http.Client
	now       func() time.Time
}

func NewClient(endpoint, accessToken string, results int) *Client {
	if results <= 0 {
		results = 10
	}
	return &Client{
		endpoint:  endpoint,
		requestor: accessToken,
		results:   results,
		http:      &http.Client{Timeout: 15 * time.Second},
		now:       time.Now,
	}
}

// StopEvents returns the upcoming departures at stopID.
func (c *Client) StopEvents(ctx context.Context, stopID string) ([]departures.StopEvent, error) {
	body, err := renderStopEventRequest(c.requestor, stopID, c.results, c.now())
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	payload := resp.ServiceDelivery.DeliveryPayload.StopEventResponse
	if payload == nil {
		return nil, fmt.Errorf("trias: stop %s: missing StopEventResponse", stopID)
	}
	if payload.ErrorMessage != nil && len(payload.Results) == 0 {
		return nil, fmt.Errorf("trias: stop %s: %s %s", stopID, payload.ErrorMessage.Code, payload.ErrorMessage.Text.Text)
	}

	events := make([]departures.StopEvent, 0, len(payload.Results))
	for _, r := range payload.Results {
		events = append(events, translate(r.StopEvent))
	}
	return events, nil
}

// LocateStop resolves a stop id to its name and position.
func (c *Client) LocateStop(ctx context.Context, id string) (stops.Stop, error) {
	body, err := renderLocationRequest(c.requestor, id, c.now())
	if err != nil {
		return stops.Stop{}, err
	}
	resp, err := c.post(ctx, body)
	if err != nil {
		return stops.Stop{}, err
	}
	payload := resp.ServiceDelivery.DeliveryPayload.LocationInformationResponse
	if payload == nil || len(payload.Results) == 0 {
		return stops.Stop{}, ErrNoLocation
	}
	loc := payload.Results[0].Location
	lat, err := parseCoord(loc.GeoPosition.Latitude)
	if err != nil {
		return stops.Stop{}, fmt.Errorf("trias: latitude: %w", err)
	}
	lon, err := parseCoord(loc.GeoPosition.Longitude)
	if err != nil {
		return stops.Stop{}, fmt.Errorf("trias: longitude: %w", err)
	}
	name := loc.StopPoint.StopPointName.Text
	if name == "" {
		name = loc.LocationName.Text
	}
	ref := loc.StopPoint.StopPointRef
	if ref == "" {
		ref = id
	}
	return stops.Stop{ID: ref, Name: name, Lat: lat, Lon: lon}, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*triasResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("trias: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trias: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trias: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("trias: read response: %w", err)
	}
	var out triasResponse
	if err := xml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("trias: decode response: %w", err)
	}
	return &out, nil
}

func translate(ev stopEvent) departures.StopEvent {
	calls := make([]departures.Call, 0, len(ev.PreviousCalls)+1+len(ev.OnwardCalls))
	for _, c := range ev.PreviousCalls {
		calls = append(calls, translateCall(c))
	}
	calls = append(calls, translateCall(ev.ThisCall))
	for _, c := range ev.OnwardCalls {
		calls = append(calls, translateCall(c))
	}

	lineRef := ev.Service.LineRef
	if lineRef == "" {
		lineRef = ev.Service.JourneyRef
	}
	if strings.EqualFold(ev.Service.Mode, busMarker) && !strings.Contains(lineRef, busMarker) {
		lineRef = busMarker + ":" + lineRef
	}

	return departures.StopEvent{
		TripID:      ev.Service.JourneyRef,
		LineRef:     lineRef,
		LineName:    ev.Service.PublishedLineName.Text,
		Destination: ev.Service.DestinationText.Text,
		Cancelled:   ev.Service.Cancelled,
		Calls:       calls,
	}
}

func translateCall(c callAtStop) departures.Call {
	return departures.Call{
		StopRef:   c.StopPointRef,
		Arrival:   translateTime(c.ServiceArrival),
		Departure: translateTime(c.ServiceDeparture),
	}
}

func translateTime(t *serviceTime) *departures.Instant {
	if t == nil {
		return nil
	}
	if t.TimetabledTime.IsZero() {
		if t.EstimatedTime == nil {
			return nil
		}
		return &departures.Instant{Timetabled: *t.EstimatedTime, Estimated: t.EstimatedTime}
	}
	return &departures.Instant{Timetabled: t.TimetabledTime, Estimated: t.EstimatedTime}
}
