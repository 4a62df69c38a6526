// README: Route curve store; loads "start;end;lat,lon;..." records and serves them in either direction.
package route

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mrx/internal/types"
)

type curveKey struct {
	start, end string
}

// CurveStore holds intermediate track points between stop pairs. Read-only after load.
type CurveStore struct {
	curves map[curveKey][]types.Point
}

func NewCurveStore() *CurveStore {
	return &CurveStore{curves: make(map[curveKey][]types.Point)}
}

// LoadCurves reads a curve file. A missing file yields an empty store.
func LoadCurves(path string) (*CurveStore, error) {
	if path == "" {
		return NewCurveStore(), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewCurveStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open curves: %w", err)
	}
	defer f.Close()
	return ReadCurves(f)
}

func ReadCurves(r io.Reader) (*CurveStore, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	store := NewCurveStore()
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return store, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read curves: %w", err)
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("read curves: line %d: want start;end;points", line)
		}
		points := make([]types.Point, 0, len(rec)-2)
		for _, field := range rec[2:] {
			if strings.TrimSpace(field) == "" {
				continue
			}
			p, err := parsePoint(field)
			if err != nil {
				line, _ := cr.FieldPos(0)
				return nil, fmt.Errorf("read curves: line %d: %w", line, err)
			}
			points = append(points, p)
		}
		store.Add(strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), points)
	}
}

// Add registers the curve for start→end. Later additions for the same pair replace earlier ones.
func (s *CurveStore) Add(start, end string, points []types.Point) {
	s.curves[curveKey{start, end}] = append([]types.Point(nil), points...)
}

// Lookup returns the curve from start to end, reversing a stored end→start curve if needed.
func (s *CurveStore) Lookup(start, end string) ([]types.Point, bool) {
	if pts, ok := s.curves[curveKey{start, end}]; ok {
		return append([]types.Point(nil), pts...), true
	}
	if pts, ok := s.curves[curveKey{end, start}]; ok {
		out := make([]types.Point, len(pts))
		for i, p := range pts {
			out[len(pts)-1-i] = p
		}
		return out, true
	}
	return nil, false
}

func (s *CurveStore) Len() int {
	return len(s.curves)
}

// WriteCurves serialises curves in the format ReadCurves accepts.
func WriteCurves(w io.Writer, start, end string, points []types.Point) error {
	var b strings.Builder
	b.WriteString(start)
	b.WriteByte(';')
	b.WriteString(end)
	for _, p := range points {
		b.WriteByte(';')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lng, 'f', 6, 64))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func parsePoint(field string) (types.Point, error) {
	latStr, lngStr, ok := strings.Cut(field, ",")
	if !ok {
		return types.Point{}, fmt.Errorf("point %q: want lat,lon", field)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("point %q: %w", field, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("point %q: %w", field, err)
	}
	return types.Point{Lat: lat, Lng: lng}, nil
}
