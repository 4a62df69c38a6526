// README: Replay wire protocol; playback commands in, Start/Frame/End/Files events out.
package replay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Entry is one journal line. Raw is re-emitted verbatim.
type Entry struct {
	Time time.Time
	Raw  string
}

type Command interface {
	command()
}

type Play struct{ File string }
type Pause struct{}
type Goto struct{ Progress float64 }
type Speed struct{ Multiplier float64 }
type ListFiles struct{}

// Disconnected ends the session. It is never sent by clients.
type Disconnected struct{}

func (Play) command()         {}
func (Pause) command()        {}
func (Goto) command()         {}
func (Speed) command()        {}
func (ListFiles) command()    {}
func (Disconnected) command() {}

var ErrUnknownCommand = errors.New("unknown replay command")

// DecodeCommand parses {"Play":"f"}, "Pause", {"Goto":p}, {"Speed":m} and "ListFiles".
func DecodeCommand(data []byte) (Command, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return nil, err
		}
		switch tag {
		case "Pause":
			return Pause{}, nil
		case "ListFiles":
			return ListFiles{}, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, tag)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("%w: want exactly one tag, got %d", ErrUnknownCommand, len(obj))
	}
	for tag, payload := range obj {
		switch tag {
		case "Play":
			var file string
			if err := json.Unmarshal(payload, &file); err != nil {
				return nil, fmt.Errorf("Play: %w", err)
			}
			return Play{File: file}, nil
		case "Goto":
			var p float64
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, fmt.Errorf("Goto: %w", err)
			}
			return Goto{Progress: p}, nil
		case "Speed":
			var m float64
			if err := json.Unmarshal(payload, &m); err != nil {
				return nil, fmt.Errorf("Speed: %w", err)
			}
			return Speed{Multiplier: m}, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, tag)
		}
	}
	return nil, ErrUnknownCommand
}

type Event interface {
	event()
}

type Start struct {
	File    string `json:"file"`
	Session string `json:"session"`
}

type Frame struct {
	Time      string  `json:"time"`
	Progress  float64 `json:"progress"`
	GameState string  `json:"game_state"`
}

type End struct{}

type Files struct {
	Names []string
}

func (Start) event() {}
func (Frame) event() {}
func (End) event()   {}
func (Files) event() {}

func EncodeEvent(ev Event) ([]byte, error) {
	switch v := ev.(type) {
	case Start:
		return json.Marshal(map[string]Start{"Start": v})
	case Frame:
		return json.Marshal(map[string]Frame{"Frame": v})
	case End:
		return json.Marshal("End")
	case Files:
		names := v.Names
		if names == nil {
			names = []string{}
		}
		return json.Marshal(map[string][]string{"Files": names})
	default:
		return nil, fmt.Errorf("unknown replay event %T", ev)
	}
}
