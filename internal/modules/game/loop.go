// README: Game loop; drains client input, simulates trains, persists and fans out one snapshot per tick.
package game

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"mrx/internal/modules/departures"
	"mrx/internal/modules/team"
	"mrx/internal/modules/trains"
)

// QueueSize is the capacity of the loop's input queue.
const QueueSize = 100

type LoopConfig struct {
	Tick      time.Duration
	BusMarker string
}

type Loop struct {
	state   *State
	queue   chan Input
	router  trains.Router
	roster  team.RosterStore
	journal *Journal
	cfg     LoopConfig
	now     func() time.Time

	lastSaved  []byte
	saveFailed bool
}

// NewLoop wires the loop. roster and journal may be nil to disable persistence.
func NewLoop(state *State, router trains.Router, roster team.RosterStore, journal *Journal, cfg LoopConfig) *Loop {
	if cfg.Tick <= 0 {
		cfg.Tick = 100 * time.Millisecond
	}
	return &Loop{
		state:   state,
		queue:   make(chan Input, QueueSize),
		router:  router,
		roster:  roster,
		journal: journal,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (l *Loop) State() *State {
	return l.state
}

// Enqueue blocks until the input is queued or ctx is done.
func (l *Loop) Enqueue(ctx context.Context, in Input) error {
	select {
	case l.queue <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishDepartures hands a fresh timetable to the loop.
func (l *Loop) PublishDepartures(ctx context.Context) func(departures.LineDepartures) {
	return func(d departures.LineDepartures) {
		if err := l.Enqueue(ctx, DeparturesUpdate{Departures: d}); err != nil {
			log.Printf("game: departures update dropped: %v", err)
		}
	}
}

func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Tick)
	defer ticker.Stop()
	defer func() {
		if l.journal != nil {
			_ = l.journal.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Step(ctx, l.now())
		}
	}
}

// Step runs one tick at the given instant. The state lock is held throughout.
func (l *Loop) Step(ctx context.Context, at time.Time) {
	s := l.state
	s.mu.Lock()
	defer s.mu.Unlock()

	l.drain()

	s.trains = trains.WithoutBuses(trains.Simulate(s.departures, l.router, at), l.cfg.BusMarker)
	if s.trains == nil {
		s.trains = []trains.Train{}
	}
	for i := range s.teams {
		ts := &s.teams[i]
		if ts.OnTrain == nil {
			continue
		}
		// A train that left the timetable keeps its riders at their last position.
		if tr, ok := trains.Find(s.trains, *ts.OnTrain); ok {
			ts.Lat, ts.Long = tr.Lat, tr.Long
		}
	}

	l.persist(ctx)

	snap := Snapshot{Teams: cloneRoster(s.teams), Trains: s.trains}
	if l.journal != nil {
		data, err := json.Marshal(snap)
		if err == nil {
			err = l.journal.Append(at, data)
		}
		if err != nil {
			log.Printf("game: journal: %v (%d lines pending)", err, l.journal.Pending())
		}
	}
	l.fanOut(snap)
}

func (l *Loop) drain() {
	for {
		select {
		case in := <-l.queue:
			l.apply(in)
		default:
			return
		}
	}
}

func (l *Loop) apply(in Input) {
	s := l.state
	switch v := in.(type) {
	case ClientInput:
		l.applyClient(v)
	case DeparturesUpdate:
		s.departures = v.Departures
	case Disconnected:
		s.disconnect(v.ConnID)
	}
}

func (l *Loop) applyClient(in ClientInput) {
	s := l.state
	conn, ok := s.conns[in.ConnID]
	if !ok {
		log.Printf("game: warning: message from unknown client %d", in.ConnID)
		return
	}

	switch m := in.Msg.(type) {
	case JoinTeam:
		if s.teamIndex(m.TeamID) < 0 {
			log.Printf("game: warning: client %d joins unknown team %d", conn.ID, m.TeamID)
			return
		}
		conn.TeamID = m.TeamID
	case SetTeamPosition:
		i := s.teamIndex(m.TeamID)
		if i < 0 {
			log.Printf("game: warning: position override for unknown team %d", m.TeamID)
			return
		}
		s.teams[i].Lat, s.teams[i].Long = m.Lat, m.Long
	case ChatMessage:
		log.Printf("game: client %d: %s", conn.ID, m.Text)
	case Position, EmbarkTrain, DisembarkTrain:
		i := s.teamIndex(conn.TeamID)
		if i < 0 {
			log.Printf("game: warning: client %d sent %s without a team", conn.ID, m.tag())
			return
		}
		ts := &s.teams[i]
		switch m := m.(type) {
		case Position:
			ts.Lat = (ts.Lat + m.Lat) / 2
			ts.Long = (ts.Long + m.Long) / 2
		case EmbarkTrain:
			id := m.TrainID
			ts.OnTrain = &id
		case DisembarkTrain:
			ts.OnTrain = nil
		}
	}
}

// persist saves the roster when it changed or the previous save failed.
func (l *Loop) persist(ctx context.Context) {
	if l.roster == nil {
		return
	}
	s := l.state
	data, err := json.Marshal(s.teams)
	if err != nil {
		log.Printf("game: encode roster: %v", err)
		return
	}
	if !l.saveFailed && bytes.Equal(data, l.lastSaved) {
		return
	}
	if err := l.roster.Save(ctx, cloneRoster(s.teams)); err != nil {
		log.Printf("game: save roster: %v; retrying next tick", err)
		l.saveFailed = true
		return
	}
	l.lastSaved = data
	l.saveFailed = false
}

// fanOut offers every client its filtered view. Full channels drop the snapshot.
func (l *Loop) fanOut(snap Snapshot) {
	s := l.state
	views := make(map[uint64]Snapshot)
	for _, c := range s.conns {
		view, ok := views[c.TeamID]
		if !ok {
			view = Visible(snap, c.TeamID)
			views[c.TeamID] = view
		}
		select {
		case c.send <- view:
		default:
		}
	}
}

// Visible keeps the viewer's own team and every Detective team. Trains are always visible.
func Visible(snap Snapshot, viewer uint64) Snapshot {
	out := Snapshot{Teams: make([]team.State, 0, len(snap.Teams)), Trains: snap.Trains}
	for _, ts := range snap.Teams {
		if ts.Team.ID == viewer || ts.Team.Kind == team.KindDetective {
			out.Teams = append(out.Teams, ts)
		}
	}
	return out
}
