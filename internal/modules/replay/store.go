// README: Journal files on disk; listing, name checks and line parsing.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidFile = errors.New("invalid replay file name")
	ErrEmptyFile   = errors.New("replay file has no entries")
)

// Library serves journal files from one directory.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// List returns the .csv files in the directory, sorted by name.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func (l *Library) Load(name string) ([]Entry, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFile, name)
	}
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	return entries, nil
}

// Parse reads "<rfc3339>, <json>" lines. Blank lines are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var out []Entry
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		stamp, raw, ok := strings.Cut(text, ", ")
		if !ok {
			return nil, fmt.Errorf("line %d: missing separator", line)
		}
		at, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Entry{Time: at, Raw: raw})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// FindNearest returns the entry closest to t. Times outside the recording clamp to its ends.
// entries must be non-empty and sorted.
func FindNearest(entries []Entry, t time.Time) Entry {
	i := sort.Search(len(entries), func(i int) bool { return !entries[i].Time.Before(t) })
	switch {
	case i == 0:
		return entries[0]
	case i == len(entries):
		return entries[len(entries)-1]
	case entries[i].Time.Equal(t):
		return entries[i]
	}
	before, after := entries[i-1], entries[i]
	if t.Sub(before.Time) <= after.Time.Sub(t) {
		return before
	}
	return after
}
