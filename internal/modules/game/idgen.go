// README: Monotonic id generator for client and team ids.
package game

import "sync/atomic"

// IDGen hands out strictly increasing ids starting at 1. Safe for concurrent use.
type IDGen struct {
	last atomic.Uint64
}

func (g *IDGen) Next() uint64 {
	return g.last.Add(1)
}

// SetMin makes the next id at least v. It never moves the generator backwards.
func (g *IDGen) SetMin(v uint64) {
	if v == 0 {
		return
	}
	for {
		cur := g.last.Load()
		if cur >= v-1 {
			return
		}
		if g.last.CompareAndSwap(cur, v-1) {
			return
		}
	}
}
