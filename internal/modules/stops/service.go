// README: Catalog lookup (exact and longest-prefix) plus startup coordinate resolution.
package stops

import (
	"context"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const refDelimiter = ":"

// Locator resolves a stop id to full stop data through the transit source.
type Locator interface {
	LocateStop(ctx context.Context, id string) (Stop, error)
}

// Catalog is read-only after NewCatalog returns and safe for concurrent use.
type Catalog struct {
	stops  []Stop
	byID   map[string]int
	byName map[string]int
}

func NewCatalog(list []Stop) *Catalog {
	c := &Catalog{
		stops:  append([]Stop(nil), list...),
		byID:   make(map[string]int, len(list)),
		byName: make(map[string]int, len(list)),
	}
	for i, s := range c.stops {
		c.byID[s.ID] = i
		c.byName[s.Name] = i
	}
	return c
}

func (c *Catalog) All() []Stop {
	return append([]Stop(nil), c.stops...)
}

func (c *Catalog) Len() int {
	return len(c.stops)
}

func (c *Catalog) ByID(id string) (Stop, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Stop{}, false
	}
	return c.stops[i], true
}

func (c *Catalog) ByName(name string) (Stop, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Stop{}, false
	}
	return c.stops[i], true
}

// Resolve maps an upstream stop reference such as "de:08212:3:01" onto the
// catalog stop "de:08212:3". The most specific (longest) matching id wins.
func (c *Catalog) Resolve(ref string) (Stop, bool) {
	if s, ok := c.ByID(ref); ok {
		return s, true
	}
	key := ref + refDelimiter
	best := -1
	for i, s := range c.stops {
		if !strings.HasPrefix(key, s.ID+refDelimiter) {
			continue
		}
		if best < 0 || len(s.ID) > len(c.stops[best].ID) {
			best = i
		}
	}
	if best < 0 {
		return Stop{}, false
	}
	return c.stops[best], true
}

// Complete fills in missing coordinates through the locator, querying up to
// workers stops at a time. Stops that stay unresolved are dropped.
func Complete(ctx context.Context, list []Stop, locator Locator, workers int) []Stop {
	out := make([]Stop, len(list))
	copy(out, list)

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range out {
		if out[i].HasPosition() || locator == nil {
			continue
		}
		i := i
		g.Go(func() error {
			found, err := locator.LocateStop(ctx, out[i].ID)
			if err != nil || !found.HasPosition() {
				log.Printf("stops: cannot locate %s (%s): %v", out[i].ID, out[i].Name, err)
				return nil
			}
			out[i].Lat, out[i].Lon = found.Lat, found.Lon
			if out[i].Name == "" {
				out[i].Name = found.Name
			}
			return nil
		})
	}
	_ = g.Wait()

	kept := out[:0]
	for _, s := range out {
		if s.HasPosition() {
			kept = append(kept, s)
		} else {
			log.Printf("stops: dropping %s without coordinates", s.ID)
		}
	}
	sort.SliceStable(kept, func(a, b int) bool { return kept[a].Name < kept[b].Name })
	return kept
}
