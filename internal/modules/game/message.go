// README: Client command wire protocol; externally tagged JSON, one canonical shape per command.
package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ClientMessage is one command sent by a connected client.
type ClientMessage interface {
	tag() string
}

type Position struct {
	Long float64 `json:"long"`
	Lat  float64 `json:"lat"`
}

type SetTeamPosition struct {
	Long   float64 `json:"long"`
	Lat    float64 `json:"lat"`
	TeamID uint64  `json:"team_id"`
}

type JoinTeam struct {
	TeamID uint64 `json:"team_id"`
}

type EmbarkTrain struct {
	TrainID string `json:"train_id"`
}

type DisembarkTrain struct{}

type ChatMessage struct {
	Text string
}

func (Position) tag() string        { return "Position" }
func (SetTeamPosition) tag() string { return "SetTeamPosition" }
func (JoinTeam) tag() string        { return "JoinTeam" }
func (EmbarkTrain) tag() string     { return "EmbarkTrain" }
func (DisembarkTrain) tag() string  { return "DisembarkTrain" }
func (ChatMessage) tag() string     { return "Message" }

var ErrUnknownMessage = errors.New("unknown client message")

// DecodeClientMessage parses {"Tag": payload} objects and the bare "DisembarkTrain" string.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return nil, err
		}
		if tag == "DisembarkTrain" {
			return DisembarkTrain{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, tag)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("%w: want exactly one tag, got %d", ErrUnknownMessage, len(obj))
	}
	for tag, payload := range obj {
		return decodeTagged(tag, payload)
	}
	return nil, ErrUnknownMessage
}

func decodeTagged(tag string, payload json.RawMessage) (ClientMessage, error) {
	var (
		msg ClientMessage
		err error
	)
	switch tag {
	case "Position":
		var m Position
		err = strictUnmarshal(payload, &m)
		msg = m
	case "SetTeamPosition":
		var m SetTeamPosition
		err = strictUnmarshal(payload, &m)
		msg = m
	case "JoinTeam":
		var m JoinTeam
		err = strictUnmarshal(payload, &m)
		msg = m
	case "EmbarkTrain":
		var m EmbarkTrain
		err = strictUnmarshal(payload, &m)
		msg = m
	case "DisembarkTrain":
		msg = DisembarkTrain{}
	case "Message":
		var text string
		err = json.Unmarshal(payload, &text)
		msg = ChatMessage{Text: text}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tag, err)
	}
	return msg, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// EncodeClientMessage is the inverse of DecodeClientMessage.
func EncodeClientMessage(m ClientMessage) ([]byte, error) {
	switch v := m.(type) {
	case DisembarkTrain:
		return json.Marshal(v.tag())
	case ChatMessage:
		return json.Marshal(map[string]string{v.tag(): v.Text})
	case nil:
		return nil, ErrUnknownMessage
	default:
		return json.Marshal(map[string]ClientMessage{m.tag(): m})
	}
}
