package engine

import (
	"github.com/roach88/tollsim/internal/grid"
	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/rules"
)

// EscapeProbability is the acceptance of a lateral escape with a feasible
// target.
const EscapeProbability = 0.5

// spawn admits at most one vehicle at position 0 of a highway lane.
func (e *Engine) spawn(tick int64) {
	p := e.params
	if e.src.Float64() >= p.Lambda {
		return
	}
	lane := e.src.IntN(p.Lanes)
	if e.current.Occupied(lane, 0) {
		return
	}

	class := ir.ClassManual
	if e.src.Float64() < p.ETCRatio {
		class = ir.ClassETC
	}
	booth := rules.AssignTargetBooth(lane, p.Lanes, p.Booths, p.Sigma, e.src)

	s := e.arena.alloc(ir.Vehicle{
		Class:             class,
		OriginLane:        lane,
		AssignedBoothLane: booth,
	})
	e.current.Set(lane, 0, s)
	e.spawned++

	e.emit(ir.Event{
		Kind:     ir.EventSpawned,
		Tick:     tick,
		Vehicle:  e.arena.get(s).ID,
		FromLane: lane,
		ToLane:   lane,
	})
}

// sweep evaluates every vehicle once and commits the next grid.
func (e *Engine) sweep(tick int64) {
	e.next.Reset()
	for lane := 0; lane < e.current.Lanes(); lane++ {
		for pos := e.current.Cols() - 1; pos >= 0; pos-- {
			s := e.current.At(lane, pos)
			if s == grid.Empty {
				continue
			}
			e.update(tick, s, lane, pos)
		}
	}
	e.current, e.next = e.next, e.current
}

// update applies the rule chain to the vehicle in slot s at (lane, pos).
// Exactly one outcome is written: a move into next, a completion, or a hold.
func (e *Engine) update(tick int64, s grid.Slot, lane, pos int) {
	v := e.arena.get(s)
	v.IsTeleporting = false
	if v.LaneChangeCooldown > 0 {
		v.LaneChangeCooldown--
	}

	svc := rules.UpdateService(v, pos, e.layout.BoothX, e.params, e.src)
	if svc.Started {
		e.emit(ir.Event{Kind: ir.EventServiceStarted, Tick: tick, Vehicle: v.ID, FromLane: lane, ToLane: lane, Position: pos})
	}
	if svc.Finished {
		e.emit(ir.Event{Kind: ir.EventServed, Tick: tick, Vehicle: v.ID, FromLane: lane, ToLane: lane, Position: pos})
	}
	if svc.Hold {
		e.hold(s, lane, pos)
		return
	}

	if pos == e.layout.DivStart && !v.HasPassedFanOut && !e.params.IsDegenerate() {
		e.fanOut(tick, s, v, lane, pos)
		return
	}

	moved, blocked := e.forward(tick, s, v, lane, pos)
	if moved {
		return
	}
	if blocked && e.escape(tick, s, v, lane, pos) {
		return
	}
	if e.merge(tick, s, v, lane, pos) {
		return
	}
	e.hold(s, lane, pos)
}

// hold keeps the vehicle in its own cell. No other vehicle can have
// claimed that cell: every claim requires the destination to be empty (or
// the claimant) in the current grid.
func (e *Engine) hold(s grid.Slot, lane, pos int) {
	e.next.Set(lane, pos, s)
}

// fanOut claims the first feasible booth lane at the junction column, or
// holds. Either way the vehicle's turn is over.
func (e *Engine) fanOut(tick int64, s grid.Slot, v *ir.Vehicle, lane, pos int) {
	for _, c := range e.routes.fanOut[v.OriginLane] {
		if cur := e.current.At(c.Lane, pos); cur != grid.Empty && cur != s {
			continue
		}
		if !e.next.Claim(c.Lane, pos, s) {
			continue
		}
		v.HasPassedFanOut = true
		v.IsTeleporting = c.Lane != lane
		e.emit(ir.Event{Kind: ir.EventFannedOut, Tick: tick, Vehicle: v.ID, FromLane: lane, ToLane: c.Lane, Position: pos})
		return
	}
	e.hold(s, lane, pos)
}

// forward attempts one cell of advance. blocked reports that the move was
// impossible regardless of the draw: the cell ahead is taken in either
// grid, or the vehicle is in a vanishing lane at the merge wall.
func (e *Engine) forward(tick int64, s grid.Slot, v *ir.Vehicle, lane, pos int) (moved, blocked bool) {
	if e.vanishing(lane) && e.layout.AtMergeWall(pos) {
		return false, true
	}
	ahead := pos + 1
	exits := ahead >= e.current.Cols()
	if !exits && (e.current.Occupied(lane, ahead) || e.next.Occupied(lane, ahead)) {
		return false, true
	}

	p := rules.EffectiveForwardProbability(e.params, e.current.Gap(lane, pos))
	if e.src.Float64() >= p {
		return false, false
	}

	if exits {
		e.complete(tick, s, v, lane, pos)
		return true, false
	}
	e.next.Claim(lane, ahead, s)
	return true, false
}

// escape attempts a lateral move to an adjacent lane, lower index first.
// Only the first feasible target gets a draw.
func (e *Engine) escape(tick int64, s grid.Slot, v *ir.Vehicle, lane, pos int) bool {
	if v.LaneChangeCooldown > 0 || !e.layout.AllowsEscape(pos) {
		return false
	}
	for _, target := range [2]int{lane - 1, lane + 1} {
		// Booth lanes do not exist upstream of the junction.
		if pos < e.layout.DivStart && target >= e.params.Lanes {
			continue
		}
		if !e.lateralFree(target, pos) {
			continue
		}
		if e.src.Float64() >= EscapeProbability {
			return false
		}
		e.next.Claim(target, pos, s)
		v.LaneChangeCooldown = e.params.LaneChangeCooldown
		e.emit(ir.Event{Kind: ir.EventLaneChanged, Tick: tick, Vehicle: v.ID, FromLane: lane, ToLane: target, Position: pos})
		return true
	}
	return false
}

// merge attempts fan-in from a vanishing lane at or past the merge wall.
// Only the top-ranked feasible highway lane gets a draw.
func (e *Engine) merge(tick int64, s grid.Slot, v *ir.Vehicle, lane, pos int) bool {
	if !e.vanishing(lane) || !e.layout.AtMergeWall(pos) || v.LaneChangeCooldown > 0 {
		return false
	}
	for _, c := range e.routes.fanIn[lane] {
		if !e.lateralFree(c.Lane, pos) {
			continue
		}
		q := e.current.QueueLength(lane, pos)
		if e.src.Float64() >= rules.MergeProbability(q, e.params.Alpha) {
			return false
		}
		e.next.Claim(c.Lane, pos, s)
		v.LaneChangeCooldown = e.params.LaneChangeCooldown
		e.emit(ir.Event{Kind: ir.EventMerged, Tick: tick, Vehicle: v.ID, FromLane: lane, ToLane: c.Lane, Position: pos})
		return true
	}
	return false
}

// lateralFree is the two-cell look-ahead plus an unclaimed next slot.
func (e *Engine) lateralFree(target, pos int) bool {
	return e.current.CanChangeLane(target, pos) && !e.next.Occupied(target, pos)
}

func (e *Engine) complete(tick int64, s grid.Slot, v *ir.Vehicle, lane, pos int) {
	id := v.ID
	e.arena.release(s)
	e.completed++
	e.emit(ir.Event{Kind: ir.EventCompleted, Tick: tick, Vehicle: id, FromLane: lane, ToLane: lane, Position: pos})
}

func (e *Engine) vanishing(lane int) bool {
	return lane >= e.params.Lanes
}
