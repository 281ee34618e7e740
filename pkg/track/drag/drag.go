// Package drag implements drag-to-pan for a track view as a pure reducer.
//
// A [Reducer] folds pointer and view events into a [State]. While a drag is
// in progress the state carries a horizontal draw offset that renderers apply
// as a plain translation; the layout is not recomputed. When the pointer is
// released after moving at least MinDistance pixels, the step emits the new
// view region, and the caller runs a fresh layout pass for it. Once the caller
// reports the new region with [RegionChanged], the offset drops back to 0,
// even when the caller clamped the emitted region back to the current one.
//
//	r := drag.New(800)
//	s := drag.Initial(view)
//	s, _ = r.Step(s, drag.Press{X: 100})
//	s, _ = r.Step(s, drag.Move{X: 130})
//	s, out := r.Step(s, drag.Release{X: 130})
//	if out.NewRegion != nil {
//	    view = *out.NewRegion
//	    s, _ = r.Step(s, drag.RegionChanged{Region: view})
//	}
package drag

import (
	"math"

	"github.com/matzehuels/genetrack/pkg/genome"
	"github.com/matzehuels/genetrack/pkg/track/layout"
)

// DefaultMinDistance is the smallest drag, in pixels, that pans the view.
const DefaultMinDistance = 20.0

// Phase is the gesture state.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Button identifies the pointer button of a Press.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Event is one of Press, Move, Release or RegionChanged.
type Event interface{ event() }

// Press is a pointer button going down at X.
type Press struct {
	X      float64
	Button Button
}

// Move is a pointer motion to X.
type Move struct{ X float64 }

// Release is the pointer button going up at X.
type Release struct{ X float64 }

// RegionChanged reports that the caller finished a layout pass for Region.
// It also acknowledges a region emitted by the last Release.
type RegionChanged struct{ Region genome.Region }

func (Press) event()         {}
func (Move) event()          {}
func (Release) event()       {}
func (RegionChanged) event() {}

// State is the gesture state plus the view it applies to.
type State struct {
	Phase  Phase
	Region genome.Region

	// Offset is the live horizontal draw offset in pixels.
	Offset float64

	// OffsetOnDragStart and StartX are only meaningful while Dragging.
	OffsetOnDragStart float64
	StartX            float64

	// Pending is set between a Release that emitted a region and the
	// RegionChanged acknowledging it.
	Pending bool
}

// Initial returns an idle state for region.
func Initial(region genome.Region) State { return State{Region: region} }

// Output carries the side effects of a step.
type Output struct {
	// PreventDefault asks the host to suppress its default handling of the
	// triggering event.
	PreventDefault bool

	// NewRegion is set when a qualifying drag completed.
	NewRegion *genome.Region
}

// Reducer holds the gesture configuration.
type Reducer struct {
	// MinDistance is the drag threshold in pixels.
	MinDistance float64

	// Width is the viewport width in pixels, used to convert the drag
	// distance to bases.
	Width float64
}

// New returns a reducer for a viewport of width pixels with the default
// threshold.
func New(width float64) Reducer {
	return Reducer{MinDistance: DefaultMinDistance, Width: width}
}

// Step applies e to s and returns the next state. Events that do not apply
// to the current phase leave the state unchanged.
func (r Reducer) Step(s State, e Event) (State, Output) {
	var out Output

	switch e := e.(type) {
	case Press:
		if s.Phase != Idle || e.Button != ButtonPrimary {
			return s, out
		}
		s.Phase = Dragging
		s.OffsetOnDragStart = s.Offset
		s.StartX = e.X
		out.PreventDefault = true

	case Move:
		if s.Phase != Dragging {
			return s, out
		}
		s.Offset = s.OffsetOnDragStart + (e.X - s.StartX)

	case Release:
		if s.Phase != Dragging {
			return s, out
		}
		dx := e.X - s.StartX
		s.Phase = Idle
		s.Offset = s.OffsetOnDragStart + dx
		if math.Abs(dx) >= r.MinDistance {
			region := r.panned(s.Region, dx)
			out.NewRegion = &region
			s.Pending = true
		}

	case RegionChanged:
		if e.Region != s.Region || s.Pending {
			s.Region = e.Region
			s.Offset = 0
			s.OffsetOnDragStart = 0
		}
		s.Pending = false
	}
	return s, out
}

// panned returns region shifted so that the content under the pointer
// follows a drag of dx pixels.
func (r Reducer) panned(region genome.Region, dx float64) genome.Region {
	scale := layout.LinearScale{Region: region, Width: r.Width}
	start := scale.XToBase(-dx)
	return region.Shift(start - region.Start)
}
