package grid

// Slot addresses a vehicle record in the engine arena.
type Slot int32

// Empty marks an unoccupied cell.
const Empty Slot = -1

// ClearAhead is the gap reported when nothing occupies the lane ahead.
const ClearAhead = 1000

// Grid is a dense lanes x cols occupancy grid.
type Grid struct {
	lanes int
	cols  int
	cells []Slot
}

// New creates an empty grid.
func New(lanes, cols int) *Grid {
	g := &Grid{
		lanes: lanes,
		cols:  cols,
		cells: make([]Slot, lanes*cols),
	}
	g.Reset()
	return g
}

// Lanes returns the number of lanes (B).
func (g *Grid) Lanes() int { return g.lanes }

// Cols returns the track length.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (lane, pos) addresses a cell.
func (g *Grid) InBounds(lane, pos int) bool {
	return lane >= 0 && lane < g.lanes && pos >= 0 && pos < g.cols
}

// At returns the slot at (lane, pos), or Empty when out of bounds.
func (g *Grid) At(lane, pos int) Slot {
	if !g.InBounds(lane, pos) {
		return Empty
	}
	return g.cells[lane*g.cols+pos]
}

// Occupied reports whether (lane, pos) is in bounds and holds a vehicle.
func (g *Grid) Occupied(lane, pos int) bool {
	return g.At(lane, pos) != Empty
}

// Set writes s into (lane, pos) unconditionally.
// Out-of-bounds writes are ignored.
func (g *Grid) Set(lane, pos int, s Slot) {
	if !g.InBounds(lane, pos) {
		return
	}
	g.cells[lane*g.cols+pos] = s
}

// Claim writes s into (lane, pos) only if the cell is still empty.
// It returns false when another vehicle already claimed the cell or the
// address is out of bounds.
func (g *Grid) Claim(lane, pos int, s Slot) bool {
	if !g.InBounds(lane, pos) {
		return false
	}
	i := lane*g.cols + pos
	if g.cells[i] != Empty {
		return false
	}
	g.cells[i] = s
	return true
}

// Reset empties every cell.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = Empty
	}
}

// Gap counts the empty cells strictly ahead of pos until the next occupied
// cell. It returns ClearAhead when the lane is clear to the end of the track
// and 0 when (lane, pos) is out of bounds.
func (g *Grid) Gap(lane, pos int) int {
	if !g.InBounds(lane, pos) {
		return 0
	}
	gap := 0
	for x := pos + 1; x < g.cols; x++ {
		if g.cells[lane*g.cols+x] != Empty {
			return gap
		}
		gap++
	}
	return ClearAhead
}

// QueueLength counts the contiguous occupied cells strictly behind pos,
// stopping at the first empty cell.
func (g *Grid) QueueLength(lane, pos int) int {
	if lane < 0 || lane >= g.lanes {
		return 0
	}
	q := 0
	for x := pos - 1; x >= 0 && x < g.cols; x-- {
		if g.cells[lane*g.cols+x] == Empty {
			break
		}
		q++
	}
	return q
}

// CanChangeLane is the two-cell look-ahead check shared by lateral escape
// and fan-in: the target lane exists, the target cell is empty, and the
// cell ahead of it is empty (or beyond the track end).
//
// Callers must additionally Claim the destination in the next grid.
func (g *Grid) CanChangeLane(target, pos int) bool {
	if target < 0 || target >= g.lanes || pos < 0 || pos >= g.cols {
		return false
	}
	if g.Occupied(target, pos) {
		return false
	}
	if pos+1 < g.cols && g.Occupied(target, pos+1) {
		return false
	}
	return true
}
