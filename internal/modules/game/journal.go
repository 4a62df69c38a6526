// README: Append-only game journal; one "<rfc3339>, <json>" line per tick, lines kept until written.
package game

import (
	"bytes"
	"log"
	"os"
	"time"
)

// MaxPendingLines bounds the lines held back while the journal file is unwritable.
const MaxPendingLines = 10000

type Journal struct {
	path    string
	loc     *time.Location
	file    *os.File
	pending [][]byte
	dropped int
}

// NewJournal appends to path with timestamps in Europe/Berlin, falling back to UTC
// when the zone database is unavailable.
func NewJournal(path string) *Journal {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		log.Printf("journal: %v; using UTC", err)
		loc = time.UTC
	}
	return &Journal{path: path, loc: loc}
}

// Append queues one line and tries to flush everything pending.
func (j *Journal) Append(at time.Time, snapshot []byte) error {
	line := make([]byte, 0, len(snapshot)+40)
	line = at.In(j.loc).AppendFormat(line, time.RFC3339Nano)
	line = append(line, ", "...)
	line = append(line, snapshot...)
	line = append(line, '\n')

	if len(j.pending) >= MaxPendingLines {
		j.pending = j.pending[1:]
		j.dropped++
	}
	j.pending = append(j.pending, line)
	return j.flush()
}

func (j *Journal) flush() error {
	if j.file == nil {
		f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		j.file = f
	}
	if _, err := j.file.Write(bytes.Join(j.pending, nil)); err != nil {
		_ = j.file.Close()
		j.file = nil
		return err
	}
	if j.dropped > 0 {
		log.Printf("journal: %d lines dropped while unwritable", j.dropped)
		j.dropped = 0
	}
	j.pending = j.pending[:0]
	return nil
}

func (j *Journal) Pending() int {
	return len(j.pending)
}

func (j *Journal) Close() error {
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
