// README: Game snapshot, loop inputs and per-client connection records.
package game

import (
	"mrx/internal/modules/departures"
	"mrx/internal/modules/team"
	"mrx/internal/modules/trains"
)

// SendBuffer is the capacity of each client's outgoing snapshot channel.
const SendBuffer = 100

// Snapshot is the state broadcast to clients and written to the journal.
type Snapshot struct {
	Teams  []team.State   `json:"teams"`
	Trains []trains.Train `json:"trains"`
}

// Input is anything the loop drains from its queue.
type Input interface {
	input()
}

type ClientInput struct {
	ConnID uint64
	Msg    ClientMessage
}

type DeparturesUpdate struct {
	Departures departures.LineDepartures
}

type Disconnected struct {
	ConnID uint64
}

func (ClientInput) input()      {}
func (DeparturesUpdate) input() {}
func (Disconnected) input()     {}

// Connection is a registered client. TeamID is 0 until the client joins a team.
type Connection struct {
	ID     uint64
	TeamID uint64
	send   chan Snapshot
}
