package engine

import (
	"github.com/roach88/tollsim/internal/grid"
	"github.com/roach88/tollsim/internal/ir"
)

// arena stores vehicle records addressed by grid.Slot.
// Completed vehicles return their slot to the free list.
type arena struct {
	vehicles []ir.Vehicle
	live     []bool
	free     []grid.Slot
	count    int
	lastID   ir.VehicleID
}

func newArena() *arena {
	return &arena{}
}

// alloc stores v under a fresh ID and returns its slot.
func (a *arena) alloc(v ir.Vehicle) grid.Slot {
	a.lastID++
	v.ID = a.lastID
	a.count++

	if n := len(a.free); n > 0 {
		s := a.free[n-1]
		a.free = a.free[:n-1]
		a.vehicles[s] = v
		a.live[s] = true
		return s
	}
	a.vehicles = append(a.vehicles, v)
	a.live = append(a.live, true)
	return grid.Slot(len(a.vehicles) - 1)
}

// get returns the record in slot s. The pointer is valid until the next
// alloc.
func (a *arena) get(s grid.Slot) *ir.Vehicle {
	return &a.vehicles[s]
}

func (a *arena) release(s grid.Slot) {
	if !a.live[s] {
		return
	}
	a.live[s] = false
	a.vehicles[s] = ir.Vehicle{}
	a.free = append(a.free, s)
	a.count--
}

// len returns the number of live vehicles.
func (a *arena) len() int {
	return a.count
}
