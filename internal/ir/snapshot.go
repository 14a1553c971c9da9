package ir

// CellView is the read-only view of an occupied cell handed to renderers.
type CellView struct {
	ID                VehicleID `json:"id"`
	Class             Class     `json:"class"`
	IsTeleporting     bool      `json:"is_teleporting"`
	AssignedBoothLane int       `json:"assigned_booth_lane"`
}

// PlacedView is a CellView together with its grid coordinates.
type PlacedView struct {
	Lane     int `json:"lane"`
	Position int `json:"position"`
	CellView
}

// Snapshot is a deep copy of the committed grid at a tick boundary.
// Mutating a Snapshot never affects the engine.
type Snapshot struct {
	Tick  int64 `json:"tick"`
	Lanes int   `json:"lanes"`
	Cols  int   `json:"cols"`

	cells []*CellView
}

// NewSnapshot creates an empty lanes x cols snapshot.
func NewSnapshot(tick int64, lanes, cols int) Snapshot {
	return Snapshot{
		Tick:  tick,
		Lanes: lanes,
		Cols:  cols,
		cells: make([]*CellView, lanes*cols),
	}
}

// Put records an occupied cell. Used by the engine while building a snapshot.
func (s *Snapshot) Put(lane, pos int, v CellView) {
	s.cells[lane*s.Cols+pos] = &v
}

// At returns the view at (lane, pos), or false when the cell is empty or
// out of range.
func (s Snapshot) At(lane, pos int) (CellView, bool) {
	if lane < 0 || lane >= s.Lanes || pos < 0 || pos >= s.Cols {
		return CellView{}, false
	}
	c := s.cells[lane*s.Cols+pos]
	if c == nil {
		return CellView{}, false
	}
	return *c, true
}

// Vehicles lists occupied cells, lanes ascending then positions ascending.
func (s Snapshot) Vehicles() []PlacedView {
	var out []PlacedView
	for lane := 0; lane < s.Lanes; lane++ {
		for pos := 0; pos < s.Cols; pos++ {
			if c := s.cells[lane*s.Cols+pos]; c != nil {
				out = append(out, PlacedView{Lane: lane, Position: pos, CellView: *c})
			}
		}
	}
	return out
}

// Count returns the number of occupied cells.
func (s Snapshot) Count() int {
	n := 0
	for _, c := range s.cells {
		if c != nil {
			n++
		}
	}
	return n
}
