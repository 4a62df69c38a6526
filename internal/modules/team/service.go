// README: Roster rules; create-team validation, Mr. X bootstrap and id seeding.
package team

import (
	"errors"
	"strings"
)

var (
	ErrInvalidName       = errors.New("InvalidName")
	ErrNameAlreadyExists = errors.New("NameAlreadyExists")
	ErrInvalidKind       = errors.New("InvalidKind")
)

const (
	MrXName  = "Mr. X"
	MrXColor = "#000000"
)

// New validates req against the existing roster and builds the team.
// Names are trimmed; empty kind defaults to Detective.
func New(id uint64, req CreateTeam, existing []State) (Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Team{}, ErrInvalidName
	}
	for _, s := range existing {
		if strings.TrimSpace(s.Team.Name) == name {
			return Team{}, ErrNameAlreadyExists
		}
	}
	kind := req.Kind
	if kind == "" {
		kind = KindDetective
	}
	if !kind.Valid() {
		return Team{}, ErrInvalidKind
	}
	return Team{ID: id, Name: name, Color: strings.TrimSpace(req.Color), Kind: kind}, nil
}

// MaxID returns the largest team id in the roster, 0 when empty.
func MaxID(roster []State) uint64 {
	var m uint64
	for _, s := range roster {
		if s.Team.ID > m {
			m = s.Team.ID
		}
	}
	return m
}

// EnsureMrX appends a Mr. X team when the roster has none.
func EnsureMrX(roster []State, nextID func() uint64) ([]State, bool) {
	for _, s := range roster {
		if s.Team.Kind == KindMrX {
			return roster, false
		}
	}
	name := MrXName
	for _, s := range roster {
		if s.Team.Name == name {
			name = MrXName + " (auto)"
		}
	}
	return append(roster, State{Team: Team{ID: nextID(), Name: name, Color: MrXColor, Kind: KindMrX}}), true
}
