package engine

import (
	"log/slog"

	"github.com/roach88/tollsim/internal/grid"
	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/rules"
)

// Observer receives lifecycle events synchronously from Step.
// Implementations must not call back into the engine.
type Observer interface {
	Observe(ev ir.Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev ir.Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev ir.Event) { f(ev) }

// Engine is the toll plaza simulation.
//
// INVARIANTS:
//   - every cell of current holds at most one slot, and every live arena
//     slot appears in exactly one cell of current between ticks
//   - completed + arena.len() == spawned between ticks
//   - params.Lanes and params.Booths never change after New
type Engine struct {
	params ir.Params
	layout ir.Layout
	routes routes

	src      ir.RandomSource
	logger   *slog.Logger
	observer Observer

	clock   *Clock
	current *grid.Grid
	next    *grid.Grid
	arena   *arena

	completed int64
	spawned   int64
}

// routes caches the quota rankings, which depend on topology only.
type routes struct {
	fanOut [][]rules.Candidate // by origin lane
	fanIn  [][]rules.Candidate // by booth lane; nil for highway lanes
}

func newRoutes(lanes, booths int) routes {
	r := routes{
		fanOut: make([][]rules.Candidate, lanes),
		fanIn:  make([][]rules.Candidate, booths),
	}
	for o := 0; o < lanes; o++ {
		r.fanOut[o] = rules.FanOutCandidates(o, lanes, booths)
	}
	for b := lanes; b < booths; b++ {
		r.fanIn[b] = rules.MergeCandidates(b, lanes, booths)
	}
	return r
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomSource injects the random source. It overrides WithSeed.
func WithRandomSource(src ir.RandomSource) Option {
	return func(e *Engine) {
		e.src = src
	}
}

// WithSeed seeds the default PCG source.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		if e.src == nil {
			e.src = NewSeededSource(seed)
		}
	}
}

// WithLayout overrides the standard 90-column layout.
// Tests use short layouts to keep scenarios small.
func WithLayout(l ir.Layout) Option {
	return func(e *Engine) {
		e.layout = l
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New creates an engine for cfg. Unset optional fields take their defaults;
// the vehicle ID generator and the counters start from zero.
//
// Returns a *ConfigError when the topology or layout is unusable.
func New(cfg ir.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		layout: ir.DefaultLayout(),
		logger: slog.Default(),
		clock:  NewClock(),
		arena:  newArena(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = NewSeededSource(DefaultSeed)
	}

	if cfg.Lanes < 1 || cfg.Booths < cfg.Lanes {
		return nil, NewTopologyError(cfg.Lanes, cfg.Booths)
	}
	l := e.layout
	if !l.Valid() {
		return nil, NewLayoutError(l.Cols, l.DivStart, l.LockStart, l.BoothX, l.MergeStart)
	}

	e.params = cfg.Resolve()
	e.routes = newRoutes(cfg.Lanes, cfg.Booths)
	e.current = grid.New(cfg.Booths, l.Cols)
	e.next = grid.New(cfg.Booths, l.Cols)

	e.logger.Debug("engine created",
		"lanes", cfg.Lanes,
		"booths", cfg.Booths,
		"cols", l.Cols,
		"degenerate", e.params.IsDegenerate(),
	)
	return e, nil
}

// Step advances the simulation by exactly one tick.
// Step never fails: a vehicle that cannot move holds and retries.
func (e *Engine) Step() {
	tick := e.clock.Next()
	e.spawn(tick)
	e.sweep(tick)
}

// Snapshot returns a deep copy of the committed grid.
func (e *Engine) Snapshot() ir.Snapshot {
	snap := ir.NewSnapshot(e.clock.Current(), e.current.Lanes(), e.current.Cols())
	for lane := 0; lane < e.current.Lanes(); lane++ {
		for pos := 0; pos < e.current.Cols(); pos++ {
			s := e.current.At(lane, pos)
			if s == grid.Empty {
				continue
			}
			v := e.arena.get(s)
			snap.Put(lane, pos, ir.CellView{
				ID:                v.ID,
				Class:             v.Class,
				IsTeleporting:     v.IsTeleporting,
				AssignedBoothLane: v.AssignedBoothLane,
			})
		}
	}
	return snap
}

// Stats returns the engine counters.
func (e *Engine) Stats() ir.Stats {
	return ir.Stats{
		ElapsedTicks:      e.clock.Current(),
		VehiclesCompleted: e.completed,
		VehiclesSpawned:   e.spawned,
		OnGrid:            e.arena.len(),
	}
}

// Params returns the resolved parameters in effect.
func (e *Engine) Params() ir.Params {
	return e.params
}

// Layout returns the longitudinal layout.
func (e *Engine) Layout() ir.Layout {
	return e.layout
}

// UpdateParams replaces the configuration wholesale, effective from the
// next Step. Lanes and Booths must match the running engine; the grid is
// never resized.
func (e *Engine) UpdateParams(cfg ir.Config) error {
	if cfg.Lanes != e.params.Lanes || cfg.Booths != e.params.Booths {
		return NewTopologyChangedError(e.params.Lanes, e.params.Booths, cfg.Lanes, cfg.Booths)
	}
	e.params = cfg.Resolve()
	e.logger.Debug("engine params updated",
		"tick", e.clock.Current(),
		"lambda", e.params.Lambda,
		"accel", e.params.Accel,
		"mu", e.params.Mu,
		"service_mode", string(e.params.ServiceMode),
	)
	return nil
}

func (e *Engine) emit(ev ir.Event) {
	if e.observer != nil {
		e.observer.Observe(ev)
	}
}
