// Package arena tracks single-occupancy obstacle slots. Every spawner must
// observe an empty slot before creating an obstacle of that category, and the
// slot is released exactly once on whichever terminal event fires first.
package arena

import "log"

// Category is the unit of mutual exclusion between live obstacles.
type Category uint8

const (
	CategorySpike Category = iota
	CategoryRoller
	CategoryWeaver

	categoryCount
)

func (c Category) String() string {
	switch c {
	case CategorySpike:
		return "spike"
	case CategoryRoller:
		return "roller"
	case CategoryWeaver:
		return "weaver"
	}
	return "unknown"
}

// Token identifies one successful acquisition. The zero Token never matches
// an occupied slot.
type Token uint64

// Registry holds one slot per obstacle category plus the shower-in-progress
// flag. All access happens on the single game goroutine; the contract is
// about callback interleaving, not threads.
type Registry struct {
	slots     [categoryCount]Token
	next      Token
	showering bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// TryAcquire claims the category slot. It fails while the slot is occupied;
// the caller must drop the spawn request, not queue it.
func (r *Registry) TryAcquire(cat Category) (Token, bool) {
	if r == nil || cat >= categoryCount {
		return 0, false
	}
	if r.slots[cat] != 0 {
		return 0, false
	}
	r.next++
	r.slots[cat] = r.next
	return r.next, true
}

// Release empties the slot if tok is the current occupant. A stale token (a
// dead obstacle releasing a slot already re-acquired after a reset) or a
// repeated release is silently absorbed.
func (r *Registry) Release(cat Category, tok Token) bool {
	if r == nil || cat >= categoryCount || tok == 0 {
		return false
	}
	if r.slots[cat] != tok {
		if r.slots[cat] != 0 {
			log.Printf("arena: stale release for %s slot ignored", cat)
		}
		return false
	}
	r.slots[cat] = 0
	return true
}

// Occupied reports whether the category slot holds a live obstacle.
func (r *Registry) Occupied(cat Category) bool {
	return r != nil && cat < categoryCount && r.slots[cat] != 0
}

// AnyOccupied reports whether any slot or the shower flag is held.
func (r *Registry) AnyOccupied() bool {
	if r == nil {
		return false
	}
	if r.showering {
		return true
	}
	for _, t := range r.slots {
		if t != 0 {
			return true
		}
	}
	return false
}

// SetShowering flips the shower-in-progress flag, which blocks ordinary
// spawning for the burst's duration.
func (r *Registry) SetShowering(on bool) {
	if r != nil {
		r.showering = on
	}
}

func (r *Registry) Showering() bool {
	return r != nil && r.showering
}

// Reset empties every slot and clears the shower flag. Used on game over and
// full wave teardown; outstanding tokens become stale and their releases
// no-op.
func (r *Registry) Reset() {
	if r == nil {
		return
	}
	for i := range r.slots {
		r.slots[i] = 0
	}
	r.showering = false
}
