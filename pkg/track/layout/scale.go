package layout

import "github.com/matzehuels/genetrack/pkg/genome"

// Projector maps a genomic coordinate to a pixel x-offset in the viewport.
// Implementations must be pure and monotonic non-decreasing.
type Projector interface {
	BaseToX(pos int64) float64
}

// ProjectorFunc adapts a plain function to [Projector].
type ProjectorFunc func(pos int64) float64

// BaseToX calls f(pos).
func (f ProjectorFunc) BaseToX(pos int64) float64 { return f(pos) }

// Identity projects base n to pixel n.
var Identity Projector = ProjectorFunc(func(pos int64) float64 { return float64(pos) })

// LinearScale maps Region linearly onto [0, Width) pixels.
type LinearScale struct {
	Region genome.Region
	Width  float64
}

// BaseToX returns the pixel offset of pos. Positions outside the region
// project outside [0, Width).
func (s LinearScale) BaseToX(pos int64) float64 {
	return float64(pos-s.Region.Start) * s.PixelsPerBase()
}

// XToBase is the inverse of BaseToX, rounded to the nearest base.
func (s LinearScale) XToBase(x float64) int64 {
	ppb := s.PixelsPerBase()
	if ppb == 0 {
		return s.Region.Start
	}
	return s.Region.Start + roundInt64(x/ppb)
}

// BasesPerPixel returns how many bases one pixel covers.
func (s LinearScale) BasesPerPixel() float64 {
	if s.Width <= 0 {
		return 0
	}
	return float64(s.Region.Width()) / s.Width
}

// PixelsPerBase returns how many pixels one base covers.
func (s LinearScale) PixelsPerBase() float64 {
	if s.Region.Empty() {
		return 0
	}
	return s.Width / float64(s.Region.Width())
}

func roundInt64(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}
