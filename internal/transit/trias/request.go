// README: TRIAS 1.1 request rendering for stop events and location lookups.
package trias

import (
	"bytes"
	"encoding/xml"
	"text/template"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05Z"

var requestTemplate = template.Must(template.New("trias").Funcs(template.FuncMap{
	"x": func(s string) string {
		var b bytes.Buffer
		_ = xml.EscapeText(&b, []byte(s))
		return b.String()
	},
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<Trias version="1.1" xmlns="http://www.vdv.de/trias" xmlns:siri="http://www.siri.org.uk/siri">
  <ServiceRequest>
    <siri:RequestTimestamp>{{.Timestamp}}</siri:RequestTimestamp>
    <siri:RequestorRef>{{x .RequestorRef}}</siri:RequestorRef>
    <RequestPayload>
{{- if .StopEvent}}
      <StopEventRequest>
        <Location>
          <LocationRef><StopPointRef>{{x .StopEvent.StopRef}}</StopPointRef></LocationRef>
          <DepArrTime>{{.Timestamp}}</DepArrTime>
        </Location>
        <Params>
          <NumberOfResults>{{.StopEvent.Results}}</NumberOfResults>
          <StopEventType>departure</StopEventType>
          <IncludePreviousCalls>true</IncludePreviousCalls>
          <IncludeOnwardCalls>true</IncludeOnwardCalls>
          <IncludeRealtimeData>true</IncludeRealtimeData>
        </Params>
      </StopEventRequest>
{{- end}}
{{- if .Location}}
      <LocationInformationRequest>
        <LocationRef><StopPointRef>{{x .Location.StopRef}}</StopPointRef></LocationRef>
        <Restrictions>
          <Type>stop</Type>
          <NumberOfResults>1</NumberOfResults>
        </Restrictions>
      </LocationInformationRequest>
{{- end}}
    </RequestPayload>
  </ServiceRequest>
</Trias>
`))

type stopEventParams struct {
	StopRef string
	Results int
}

type locationParams struct {
	StopRef string
}

type requestData struct {
	Timestamp    string
	RequestorRef string
	StopEvent    *stopEventParams
	Location     *locationParams
}

func renderStopEventRequest(requestor, stopRef string, results int, now time.Time) ([]byte, error) {
	return render(requestData{
		Timestamp:    now.UTC().Format(timestampLayout),
		RequestorRef: requestor,
		StopEvent:    &stopEventParams{StopRef: stopRef, Results: results},
	})
}

func renderLocationRequest(requestor, stopRef string, now time.Time) ([]byte, error) {
	return render(requestData{
		Timestamp:    now.UTC().Format(timestampLayout),
		RequestorRef: requestor,
		Location:     &locationParams{StopRef: stopRef},
	})
}

func render(d requestData) ([]byte, error) {
	var b bytes.Buffer
	if err := requestTemplate.Execute(&b, d); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
