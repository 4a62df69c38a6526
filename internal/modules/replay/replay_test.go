package replay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

// recording builds one entry per second covering the given duration.
func recording(seconds int) []Entry {
	out := make([]Entry, 0, seconds+1)
	for s := 0; s <= seconds; s++ {
		out = append(out, Entry{Time: t0.Add(time.Duration(s) * time.Second), Raw: fmt.Sprintf(`{"s":%d}`, s)})
	}
	return out
}

type memFiles map[string][]Entry

func (m memFiles) List() ([]string, error) {
	var names []string
	for n := range m {
		names = append(names, n)
	}
	return names, nil
}

func (m memFiles) Load(name string) ([]Entry, error) {
	e, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return e, nil
}

type recorder struct {
	events []Event
}

func (r *recorder) emit(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) lastFrame(t *testing.T) Frame {
	t.Helper()
	for i := len(r.events) - 1; i >= 0; i-- {
		if f, ok := r.events[i].(Frame); ok {
			return f
		}
	}
	t.Fatal("no frame emitted")
	return Frame{}
}

func TestParse(t *testing.T) {
	in := "2024-05-17T12:00:00.5+02:00, {\"teams\":[],\"trains\":[]}\n\n2024-05-17T12:00:01+02:00, {\"a\":\"x, y\"}\r\n"
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d", len(got))
	}
	if !got[0].Time.Equal(t0.Add(500*time.Millisecond)) || got[0].Raw != `{"teams":[],"trains":[]}` {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Raw != `{"a":"x, y"}` {
		t.Errorf("raw must be split at the first separator only, got %q", got[1].Raw)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no separator", in: "2024-05-17T12:00:00Z {}\n", want: "line 1"},
		{name: "bad time", in: "2024-05-17T12:00:00Z, {}\nyesterday, {}\n", want: "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestFindNearest(t *testing.T) {
	entries := recording(10)
	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{name: "exact", at: t0.Add(3 * time.Second), want: 3},
		{name: "closer to lower", at: t0.Add(3400 * time.Millisecond), want: 3},
		{name: "closer to upper", at: t0.Add(3600 * time.Millisecond), want: 4},
		{name: "before start clamps", at: t0.Add(-time.Hour), want: 0},
		{name: "after end clamps", at: t0.Add(time.Hour), want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindNearest(entries, tt.at)
			if got.Raw != entries[tt.want].Raw {
				t.Errorf("got %s, want %s", got.Raw, entries[tt.want].Raw)
			}
		})
	}
}

func TestEngine_GotoSpeedScenario(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(memFiles{"game.csv": recording(100)}, rec.emit)

	e.Handle(Play{File: "game.csv"})
	if _, ok := rec.events[0].(Start); !ok {
		t.Fatalf("first event = %#v, want Start", rec.events[0])
	}
	if f := rec.lastFrame(t); f.Progress != 0 || f.GameState != `{"s":0}` {
		t.Errorf("initial frame = %+v", f)
	}

	e.Handle(Goto{Progress: 0.5})
	if f := rec.lastFrame(t); f.GameState != `{"s":50}` {
		t.Errorf("goto must emit the nearest frame immediately, got %+v", f)
	}
	e.Handle(Speed{Multiplier: 2})

	// 10 simulated seconds at 50 ms per frame
	for i := 0; i < 200; i++ {
		e.Step()
	}
	if got := e.Progress(); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("progress = %f, want 0.7", got)
	}
}

func TestEngine_EndPausesAndAcceptsNextFile(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(memFiles{"a.csv": recording(1), "b.csv": recording(5)}, rec.emit)
	e.Handle(Play{File: "a.csv"})

	for i := 0; i < 100 && !e.Paused(); i++ {
		e.Step()
	}
	if !e.Paused() {
		t.Fatal("engine must pause at the end")
	}
	if _, ok := rec.events[len(rec.events)-1].(End); !ok {
		t.Fatalf("last event = %#v, want End", rec.events[len(rec.events)-1])
	}
	if f := rec.lastFrame(t); f.Progress != 1 || f.GameState != `{"s":1}` {
		t.Errorf("final frame = %+v", f)
	}

	n := len(rec.events)
	e.Step()
	if len(rec.events) != n {
		t.Error("paused engine must not emit")
	}

	e.Handle(Play{File: "b.csv"})
	if s, ok := rec.events[n].(Start); !ok || s.File != "b.csv" || s.Session != e.Session() {
		t.Errorf("event = %#v", rec.events[n])
	}
	if e.Paused() || e.Progress() != 0 {
		t.Error("new file must start running from the beginning")
	}
}

func TestEngine_PauseToggles(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(memFiles{"a.csv": recording(10)}, rec.emit)
	e.Handle(Play{File: "a.csv"})
	e.Handle(Pause{})
	n := len(rec.events)
	e.Step()
	if len(rec.events) != n {
		t.Error("paused engine emitted a frame")
	}
	e.Handle(Pause{})
	e.Step()
	if len(rec.events) != n+1 {
		t.Error("resumed engine must emit")
	}
}

func TestEngine_SpeedIsClampedAndValidated(t *testing.T) {
	e := NewEngine(memFiles{"a.csv": recording(1)}, func(Event) {})
	e.Handle(Play{File: "a.csv"})
	e.Handle(Speed{Multiplier: 1000})
	e.Step()
	if e.Progress() != 1 {
		t.Errorf("advance must be clamped to the recording, progress = %f", e.Progress())
	}
	e.Handle(Speed{Multiplier: -1})
	if e.advance != time.Second {
		t.Errorf("negative speed must be ignored, advance = %s", e.advance)
	}
}

func TestEngine_HugeSpeedReachesEnd(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(memFiles{"a.csv": recording(100)}, rec.emit)
	e.Handle(Play{File: "a.csv"})
	e.Handle(Speed{Multiplier: 1e12})
	if e.advance != 100*time.Second {
		t.Fatalf("advance = %s, want the recording's duration", e.advance)
	}
	for i := 0; i < 10 && !e.Paused(); i++ {
		e.Step()
	}
	if e.Progress() != 1 || !e.Paused() {
		t.Errorf("progress = %f paused = %v, want the end of the file", e.Progress(), e.Paused())
	}
	if _, ok := rec.events[len(rec.events)-1].(End); !ok {
		t.Errorf("last event = %#v, want End", rec.events[len(rec.events)-1])
	}
}

func TestEngine_UnknownFileAndDisconnect(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(memFiles{}, rec.emit)
	e.Handle(Play{File: "missing.csv"})
	e.Step()
	if len(rec.events) != 0 {
		t.Errorf("events = %#v", rec.events)
	}
	e.Handle(ListFiles{})
	if _, ok := rec.events[0].(Files); !ok {
		t.Errorf("event = %#v", rec.events[0])
	}
	e.Handle(Disconnected{})
	if !e.Done() {
		t.Error("engine must be done after disconnect")
	}
}

func TestEngine_RunStopsOnDisconnect(t *testing.T) {
	frames := make(chan Event, 1000)
	e := NewEngine(memFiles{"a.csv": recording(100)}, func(ev Event) { frames <- ev })
	cmds := make(chan Command, CommandBuffer)
	done := make(chan struct{})
	go func() {
		e.Run(context.Background(), cmds)
		close(done)
	}()
	cmds <- Play{File: "a.csv"}
	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
	cmds <- Disconnected{}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestCommandAndEventCodec(t *testing.T) {
	cmds := map[string]Command{
		`{"Play":"log.csv"}`: Play{File: "log.csv"},
		`"Pause"`:            Pause{},
		`{"Goto":0.5}`:       Goto{Progress: 0.5},
		`{"Speed":2}`:        Speed{Multiplier: 2},
		`"ListFiles"`:        ListFiles{},
	}
	for in, want := range cmds {
		got, err := DecodeCommand([]byte(in))
		if err != nil || got != want {
			t.Errorf("DecodeCommand(%s) = %#v, %v", in, got, err)
		}
	}
	for _, bad := range []string{`"Disconnected"`, `{"Rewind":1}`, `{"Goto":"x"}`, `[]`} {
		if _, err := DecodeCommand([]byte(bad)); err == nil {
			t.Errorf("DecodeCommand(%s) must fail", bad)
		}
	}

	events := []struct {
		ev   Event
		want string
	}{
		{Start{File: "a.csv", Session: "s"}, `{"Start":{"file":"a.csv","session":"s"}}`},
		{Frame{Time: "t", Progress: 0.5, GameState: `{"teams":[]}`}, `{"Frame":{"time":"t","progress":0.5,"game_state":"{\"teams\":[]}"}}`},
		{End{}, `"End"`},
		{Files{}, `{"Files":[]}`},
	}
	for _, tt := range events {
		data, err := EncodeEvent(tt.ev)
		if err != nil || string(data) != tt.want {
			t.Errorf("EncodeEvent(%#v) = %s, %v; want %s", tt.ev, data, err, tt.want)
		}
	}
}

func TestLibrary(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.csv", "2024-05-17T12:00:00Z, {}\n")
	write("a.csv", "2024-05-17T12:00:00Z, {}\n2024-05-17T12:00:01Z, {}\n")
	write("empty.csv", "\n")
	write("notes.txt", "x")

	lib := NewLibrary(dir)
	names, err := lib.List()
	if err != nil || strings.Join(names, ",") != "a.csv,b.csv,empty.csv" {
		t.Fatalf("List = %v, %v", names, err)
	}
	if entries, err := lib.Load("a.csv"); err != nil || len(entries) != 2 {
		t.Errorf("Load = %v, %v", entries, err)
	}
	if _, err := lib.Load("empty.csv"); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty err = %v", err)
	}
	for _, bad := range []string{"../a.csv", "sub/a.csv", "..", ""} {
		if _, err := lib.Load(bad); !errors.Is(err, ErrInvalidFile) {
			t.Errorf("Load(%q) err = %v", bad, err)
		}
	}
}
