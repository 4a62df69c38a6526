// README: Replay engine; one session per viewer, 50 ms frames with pause, seek and speed control.
package replay

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"mrx/internal/types"
)

// FrameInterval is the wall-clock period between frames and the base position advance.
const FrameInterval = 50 * time.Millisecond

// CommandBuffer is the capacity of a session's command queue.
const CommandBuffer = 16

type FileStore interface {
	List() ([]string, error)
	Load(name string) ([]Entry, error)
}

type Engine struct {
	files   FileStore
	emit    func(Event)
	session string
	loc     *time.Location

	file     string
	entries  []Entry
	position time.Time
	speed    float64
	advance  time.Duration
	paused   bool
	done     bool
}

// NewEngine starts idle, waiting for a Play command.
func NewEngine(files FileStore, emit func(Event)) *Engine {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return &Engine{
		files:   files,
		emit:    emit,
		session: uuid.NewString(),
		loc:     loc,
		speed:   1,
		advance: FrameInterval,
		paused:  true,
	}
}

func (e *Engine) Session() string { return e.session }
func (e *Engine) Done() bool      { return e.done }
func (e *Engine) Paused() bool    { return e.paused }

// Progress is the playback position in [0,1]; 0 when no file is loaded.
func (e *Engine) Progress() float64 {
	if len(e.entries) == 0 {
		return 0
	}
	d := e.duration()
	if d <= 0 {
		return 1
	}
	return types.Clamp(float64(e.position.Sub(e.start()))/float64(d), 0, 1)
}

func (e *Engine) start() time.Time { return e.entries[0].Time }
func (e *Engine) end() time.Time   { return e.entries[len(e.entries)-1].Time }

func (e *Engine) duration() time.Duration {
	return e.end().Sub(e.start())
}

// Handle applies one command.
func (e *Engine) Handle(cmd Command) {
	if e.done {
		return
	}
	switch c := cmd.(type) {
	case Play:
		e.play(c.File)
	case Pause:
		if e.entries != nil {
			e.paused = !e.paused
		}
	case Goto:
		if e.entries == nil {
			return
		}
		p := types.Clamp(c.Progress, 0, 1)
		e.position = e.start().Add(time.Duration(p * float64(e.duration())))
		e.frame()
	case Speed:
		if c.Multiplier <= 0 {
			log.Printf("replay %s: ignoring non-positive speed %v", e.session, c.Multiplier)
			return
		}
		e.speed = c.Multiplier
		e.rescale()
	case ListFiles:
		names, err := e.files.List()
		if err != nil {
			log.Printf("replay %s: list files: %v", e.session, err)
		}
		e.emit(Files{Names: names})
	case Disconnected:
		e.done = true
	}
}

func (e *Engine) play(name string) {
	entries, err := e.files.Load(name)
	if err != nil {
		log.Printf("replay %s: %v", e.session, err)
		return
	}
	e.file = name
	e.entries = entries
	e.position = e.start()
	e.paused = false
	e.rescale()
	e.emit(Start{File: name, Session: e.session})
	e.frame()
}

func (e *Engine) rescale() {
	// clamp before converting; large multipliers overflow a Duration
	f := float64(FrameInterval) * e.speed
	if e.entries != nil && f > float64(e.duration()) {
		f = float64(e.duration())
	}
	if f >= math.MaxInt64 {
		e.advance = math.MaxInt64
		return
	}
	e.advance = max(time.Duration(f), 0)
}

// Step runs one frame period: emit the current frame and advance, or finish the file.
func (e *Engine) Step() {
	if e.done || e.paused || e.entries == nil {
		return
	}
	if !e.position.Before(e.end()) {
		e.position = e.end()
		e.frame()
		e.emit(End{})
		e.paused = true
		return
	}
	e.frame()
	e.position = e.position.Add(e.advance)
}

func (e *Engine) frame() {
	entry := FindNearest(e.entries, e.position)
	e.emit(Frame{
		Time:      e.position.In(e.loc).Format(time.RFC3339Nano),
		Progress:  e.Progress(),
		GameState: entry.Raw,
	})
}

// Run drives the engine until Disconnected or ctx is done. Commands are applied
// between frames without delaying the frame timer.
func (e *Engine) Run(ctx context.Context, cmds <-chan Command) {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	drain:
		for {
			select {
			case cmd, ok := <-cmds:
				if !ok {
					return
				}
				e.Handle(cmd)
			default:
				break drain
			}
		}
		if e.done {
			return
		}
		e.Step()
	}
}
