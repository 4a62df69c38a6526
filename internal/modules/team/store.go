// README: Roster stores; whole-roster file rewrite or Postgres upsert.
package team

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RosterStore persists the whole roster at once.
type RosterStore interface {
	Load(ctx context.Context) ([]State, error)
	Save(ctx context.Context, roster []State) error
}

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns an empty roster when the file does not exist yet.
func (s *FileStore) Load(_ context.Context) ([]State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var roster []State
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", s.path, err)
	}
	return roster, nil
}

// Save writes to a temp file and renames it over the roster so readers never see a partial file.
func (s *FileStore) Save(_ context.Context, roster []State) error {
	if roster == nil {
		roster = []State{}
	}
	data, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".teams-*.json")
	if err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS teams (
    id         BIGINT PRIMARY KEY,
    name       TEXT NOT NULL,
    color      TEXT NOT NULL DEFAULT '',
    kind       TEXT NOT NULL,
    lat        DOUBLE PRECISION NOT NULL DEFAULT 0,
    long       DOUBLE PRECISION NOT NULL DEFAULT 0,
    on_train   TEXT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *PGStore) Load(ctx context.Context) ([]State, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, color, kind, lat, long, on_train
        FROM teams
        ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []State
	for rows.Next() {
		var st State
		var id int64
		var kind string
		if err := rows.Scan(&id, &st.Team.Name, &st.Team.Color, &kind, &st.Lat, &st.Long, &st.OnTrain); err != nil {
			return nil, err
		}
		st.Team.ID = uint64(id)
		st.Team.Kind = Kind(kind)
		roster = append(roster, st)
	}
	return roster, rows.Err()
}

// Save upserts every team and removes rows no longer in the roster, in one transaction.
func (s *PGStore) Save(ctx context.Context, roster []State) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(roster))
	batch := &pgx.Batch{}
	for _, st := range roster {
		ids = append(ids, int64(st.Team.ID))
		batch.Queue(`
            INSERT INTO teams (id, name, color, kind, lat, long, on_train, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, now())
            ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name, color = EXCLUDED.color, kind = EXCLUDED.kind,
                lat = EXCLUDED.lat, long = EXCLUDED.long, on_train = EXCLUDED.on_train,
                updated_at = now()`,
			int64(st.Team.ID), st.Team.Name, st.Team.Color, string(st.Team.Kind), st.Lat, st.Long, st.OnTrain,
		)
	}
	batch.Queue(`DELETE FROM teams WHERE NOT (id = ANY($1))`, ids)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
