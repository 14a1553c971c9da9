package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tollsim/internal/ir"
)

// traceContext is how many trailing events an AssertionError prints.
const traceContext = 10

// AssertionError is returned when an assertion fails.
// It includes the tail of the trace to help debug the failure.
type AssertionError struct {
	Type     string     // Assertion type for categorization
	Expected string     // Human-readable expected outcome
	Actual   string     // Human-readable actual outcome
	Trace    []ir.Event // Trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) == 0 {
		return buf.String()
	}
	tail := e.Trace
	if len(tail) > traceContext {
		tail = tail[len(tail)-traceContext:]
	}
	fmt.Fprintf(&buf, "\nLast %d of %d events:\n", len(tail), len(e.Trace))
	for _, ev := range tail {
		fmt.Fprintf(&buf, "  [t=%d] %s vehicle=%d lane %d->%d pos=%d\n",
			ev.Tick, ev.Kind, ev.Vehicle, ev.FromLane, ev.ToLane, ev.Position)
	}
	return buf.String()
}

// assertCompleted checks the completed counter against a lower bound or an
// exact value.
func assertCompleted(result *Result, a Assertion, exact bool) error {
	got := result.Stats.VehiclesCompleted
	if exact && got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("exactly %d completed vehicles", a.Count),
			Actual:   fmt.Sprintf("%d completed", got),
			Trace:    result.Trace,
		}
	}
	if !exact && got < a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("at least %d completed vehicles", a.Count),
			Actual:   fmt.Sprintf("%d completed", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertExitTick checks the tick in which a vehicle left the grid.
func assertExitTick(result *Result, a Assertion) error {
	ev, ok := result.Find(ir.EventCompleted, a.Vehicle)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("vehicle %d exits at tick %d", a.Vehicle, a.Tick),
			Actual:   "vehicle never exited",
			Trace:    result.Trace,
		}
	}
	if ev.Tick != a.Tick {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("vehicle %d exits at tick %d", a.Vehicle, a.Tick),
			Actual:   fmt.Sprintf("exited at tick %d", ev.Tick),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertEventCount checks the number of events of one kind.
func assertEventCount(result *Result, a Assertion) error {
	if got := result.Count(a.Kind); got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %s events", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d events", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertNoRoutingLaneChange checks that every lane change was a lateral
// escape: no fan-out or fan-in moved a vehicle, and no vehicle changed lane
// without an event.
func assertNoRoutingLaneChange(result *Result, a Assertion) error {
	if result.RoutingLaneChanges == 0 && result.UnexplainedLaneChanges == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: "lane changes by lateral escape only",
		Actual: fmt.Sprintf("%d routed and %d unexplained lane changes",
			result.RoutingLaneChanges, result.UnexplainedLaneChanges),
		Trace: result.Trace,
	}
}

// assertConservation checks that no tick lost, duplicated or overlapped a
// vehicle.
func assertConservation(result *Result, a Assertion) error {
	if result.ConservationViolations == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: "spawned == completed + on_grid after every tick",
		Actual:   fmt.Sprintf("violated in %d ticks", result.ConservationViolations),
		Trace:    result.Trace,
	}
}

// assertBoothRange checks the booth targets of vehicles from one origin
// lane. It fails when no vehicle spawned in that lane.
func assertBoothRange(result *Result, a Assertion) error {
	lane := *a.Lane
	seen := 0
	for id, as := range result.Assignments {
		if as.Origin != lane {
			continue
		}
		seen++
		if !slices.Contains(a.Booths, as.Booth) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("vehicles from lane %d target booths %v", lane, a.Booths),
				Actual:   fmt.Sprintf("vehicle %d targets booth %d", id, as.Booth),
			}
		}
	}
	if seen == 0 {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("vehicles spawned in lane %d", lane),
			Actual:   "none",
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertCompletedMin:
			err = assertCompleted(result, a, false)
		case AssertCompletedExact:
			err = assertCompleted(result, a, true)
		case AssertExitTick:
			err = assertExitTick(result, a)
		case AssertEventCount:
			err = assertEventCount(result, a)
		case AssertNoRoutingLaneChange:
			err = assertNoRoutingLaneChange(result, a)
		case AssertConservation:
			err = assertConservation(result, a)
		case AssertBoothRange:
			if a.Lane == nil {
				err = fmt.Errorf("assertion[%d]: booth_range requires lane", i)
			} else {
				err = assertBoothRange(result, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
