// README: Shared game state; roster, connections and current timetable behind one mutex.
package game

import (
	"slices"
	"sync"

	"mrx/internal/modules/departures"
	"mrx/internal/modules/team"
	"mrx/internal/modules/trains"
)

type State struct {
	mu         sync.Mutex
	teams      []team.State
	conns      map[uint64]*Connection
	departures departures.LineDepartures
	trains     []trains.Train

	clientIDs IDGen
	teamIDs   IDGen
}

// NewState seeds the roster, bumps both id generators past every persisted team id
// and makes sure a Mr. X team exists.
func NewState(roster []team.State) *State {
	s := &State{conns: make(map[uint64]*Connection)}
	floor := team.MaxID(roster) + 1
	s.teamIDs.SetMin(floor)
	s.clientIDs.SetMin(floor)
	s.teams, _ = team.EnsureMrX(slices.Clone(roster), s.teamIDs.Next)
	return s
}

// Connect registers a new client and returns its id and snapshot stream.
// The stream is closed once the matching Disconnected input is applied.
func (s *State) Connect() (uint64, <-chan Snapshot) {
	c := &Connection{ID: s.clientIDs.Next(), send: make(chan Snapshot, SendBuffer)}
	s.mu.Lock()
	s.conns[c.ID] = c
	s.mu.Unlock()
	return c.ID, c.send
}

// CreateTeam validates and appends a team. The id is only consumed on success.
func (s *State) CreateTeam(req team.CreateTeam) (team.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := team.New(0, req, s.teams)
	if err != nil {
		return team.Team{}, err
	}
	t.ID = s.teamIDs.Next()
	s.teams = append(s.teams, team.State{Team: t})
	return t, nil
}

func (s *State) Teams() []team.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]team.Team, len(s.teams))
	for i, ts := range s.teams {
		out[i] = ts.Team
	}
	return out
}

// Roster returns a deep copy of the team states.
func (s *State) Roster() []team.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRoster(s.teams)
}

func (s *State) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *State) teamIndex(id uint64) int {
	for i := range s.teams {
		if s.teams[i].Team.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) kindOf(id uint64) (team.Kind, bool) {
	if i := s.teamIndex(id); i >= 0 {
		return s.teams[i].Team.Kind, true
	}
	return "", false
}

func (s *State) disconnect(id uint64) {
	c, ok := s.conns[id]
	if !ok {
		return
	}
	delete(s.conns, id)
	close(c.send)
}

func cloneRoster(in []team.State) []team.State {
	out := make([]team.State, len(in))
	for i, ts := range in {
		out[i] = ts
		if ts.OnTrain != nil {
			id := *ts.OnTrain
			out[i].OnTrain = &id
		}
	}
	return out
}
