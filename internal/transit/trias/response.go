// README: TRIAS 1.1 response shapes; only the fields the game consumes are mapped.
package trias

import (
	"strconv"
	"strings"
	"time"
)

type triasResponse struct {
	ServiceDelivery struct {
		DeliveryPayload struct {
			StopEventResponse           *stopEventResponse           `xml:"StopEventResponse"`
			LocationInformationResponse *locationInformationResponse `xml:"LocationInformationResponse"`
		} `xml:"DeliveryPayload"`
	} `xml:"ServiceDelivery"`
}

type textNode struct {
	Text string `xml:"Text"`
}

type errorMessage struct {
	Code string   `xml:"Code"`
	Text textNode `xml:"Text"`
}

type stopEventResponse struct {
	ErrorMessage *errorMessage      `xml:"ErrorMessage"`
	Results      []stopEventResult `xml:"StopEventResult"`
}

type stopEventResult struct {
	ResultID  string    `xml:"ResultId"`
	StopEvent stopEvent `xml:"StopEvent"`
}

type stopEvent struct {
	PreviousCalls []callAtStop `xml:"PreviousCall>CallAtStop"`
	ThisCall      callAtStop   `xml:"ThisCall>CallAtStop"`
	OnwardCalls   []callAtStop `xml:"OnwardCall>CallAtStop"`
	Service       service      `xml:"Service"`
}

type callAtStop struct {
	StopPointRef     string       `xml:"StopPointRef"`
	StopPointName    textNode     `xml:"StopPointName"`
	ServiceArrival   *serviceTime `xml:"ServiceArrival"`
	ServiceDeparture *serviceTime `xml:"ServiceDeparture"`
}

type serviceTime struct {
	TimetabledTime time.Time  `xml:"TimetabledTime"`
	EstimatedTime  *time.Time `xml:"EstimatedTime"`
}

type service struct {
	OperatingDayRef   string   `xml:"OperatingDayRef"`
	JourneyRef        string   `xml:"JourneyRef"`
	LineRef           string   `xml:"ServiceSection>LineRef"`
	PublishedLineName textNode `xml:"ServiceSection>PublishedLineName"`
	Mode              string   `xml:"ServiceSection>Mode>PtMode"`
	DestinationText   textNode `xml:"DestinationText"`
	Cancelled         bool     `xml:"Cancelled"`
}

type locationInformationResponse struct {
	ErrorMessage *errorMessage    `xml:"ErrorMessage"`
	Results      []locationResult `xml:"LocationResult"`
}

type locationResult struct {
	Location struct {
		StopPoint struct {
			StopPointRef  string   `xml:"StopPointRef"`
			StopPointName textNode `xml:"StopPointName"`
		} `xml:"StopPoint"`
		LocationName textNode `xml:"LocationName"`
		GeoPosition  struct {
			Longitude string `xml:"Longitude"`
			Latitude  string `xml:"Latitude"`
		} `xml:"GeoPosition"`
	} `xml:"Location"`
}

func parseCoord(v string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}
