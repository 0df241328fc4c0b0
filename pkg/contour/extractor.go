// Package contour converts a thresholded probability grid into closed vector
// contours on the pixel-corner lattice.
//
// Boundaries are walked with the region kept on the right-hand side of the
// travel direction, so outer boundaries come out clockwise in grid
// coordinates (y axis pointing down) and hole boundaries counter-clockwise.
// Equivalently, outer contours have positive shoelace signed area and holes
// negative. Regions are 4-connected: foreground pixels that touch only
// diagonally trace as separate contours.
package contour

import (
	"fmt"

	"github.com/menta2k/maskvec/pkg/types"
)

// Contour is one closed boundary loop in grid coordinates. Points are the
// loop's vertices in traversal order; the closing segment from the last
// point back to the first is implicit.
type Contour struct {
	Points []types.Point
	Hole   bool
}

// SignedArea returns the shoelace sum of the loop. Positive means the outer
// winding (clockwise with y down), negative a hole.
func (c Contour) SignedArea() float64 {
	pts := c.Points
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// Config controls thresholding and output simplification
type Config struct {
	// Threshold splits foreground from background. Values at or above it
	// are inside. The default 0.0 assumes raw logit grids; see
	// OtsuThreshold for calibrating against an unknown convention.
	Threshold float64

	// SimplifyTolerance is the Douglas-Peucker tolerance in grid pixels
	// applied to each contour. Zero disables simplification.
	SimplifyTolerance float64
}

// DefaultConfig returns the standard extraction settings
func DefaultConfig() Config {
	return Config{
		Threshold:         0.0,
		SimplifyTolerance: 0,
	}
}

// Extractor traces closed contours out of probability grids
type Extractor struct {
	config Config
}

// NewExtractor creates an extractor with default settings
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with custom settings
func NewExtractorWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract thresholds the grid and returns all closed boundary loops,
// outer contours and holes alike. An all-background grid yields an empty
// set, an all-foreground grid a single rectangular border loop. One linear
// scan finds the loops and each boundary edge is walked once.
func (e *Extractor) Extract(grid *types.Grid) ([]Contour, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", types.ErrDimensionMismatch)
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("failed to extract contours: %w", err)
	}

	w := &walker{
		grid:      grid,
		threshold: e.config.Threshold,
		visited:   make(map[corner]bool),
	}

	var contours []Contour
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if !w.inside(x, y) || w.inside(x, y-1) {
				continue
			}
			if w.visited[corner{x, y}] {
				continue
			}
			pts := w.trace(x, y)
			if len(pts) < 3 {
				continue
			}
			if e.config.SimplifyTolerance > 0 {
				pts = simplifyClosed(pts, e.config.SimplifyTolerance)
				if len(pts) < 3 {
					continue
				}
			}
			c := Contour{Points: pts}
			c.Hole = c.SignedArea() < 0
			contours = append(contours, c)
		}
	}

	return contours, nil
}

// corner addresses a lattice point between grid cells
type corner struct {
	x, y int
}

// Directions on the corner lattice, clockwise on screen. Turning right is
// (d+1)%4, turning left (d+3)%4.
const (
	dirRight = 0
	dirDown  = 1
	dirLeft  = 2
	dirUp    = 3
)

var (
	dirDX = [4]int{1, 0, -1, 0}
	dirDY = [4]int{0, 1, 0, -1}
)

type walker struct {
	grid      *types.Grid
	threshold float64

	// visited marks traversed rightward edges by their left corner. Every
	// loop contains at least one such edge, which makes it a complete
	// dedup key for the row-major start scan.
	visited map[corner]bool
}

func (w *walker) inside(x, y int) bool {
	if x < 0 || y < 0 || x >= w.grid.Width || y >= w.grid.Height {
		return false
	}
	return w.grid.At(x, y) >= w.threshold
}

// isBoundary reports whether the directed edge leaving corner (cx, cy) in
// direction d separates an inside cell on its right from an outside cell on
// its left.
func (w *walker) isBoundary(cx, cy, d int) bool {
	var rx, ry, lx, ly int
	switch d {
	case dirRight:
		rx, ry, lx, ly = cx, cy, cx, cy-1
	case dirDown:
		rx, ry, lx, ly = cx-1, cy, cx, cy
	case dirLeft:
		rx, ry, lx, ly = cx-1, cy-1, cx-1, cy
	default: // dirUp
		rx, ry, lx, ly = cx, cy-1, cx-1, cy-1
	}
	return w.inside(rx, ry) && !w.inside(lx, ly)
}

// trace walks one closed loop starting from the top edge of the inside cell
// at (sx, sy). Collinear lattice points are collapsed as they are appended,
// with a final pass for collinearity across the closing segment.
func (w *walker) trace(sx, sy int) []types.Point {
	pts := make([]types.Point, 0, 16)

	addPoint := func(x, y int) {
		p := types.Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n >= 2 {
			a := pts[n-2]
			b := pts[n-1]
			// Collinearity check: (b-a) x (p-b) == 0
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			if cross == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	addPoint(sx, sy)

	cx, cy, d := sx, sy, dirRight
	maxSteps := w.grid.Width*w.grid.Height*4 + 8

	for steps := 0; steps < maxSteps; steps++ {
		if d == dirRight {
			w.visited[corner{cx, cy}] = true
		}
		cx += dirDX[d]
		cy += dirDY[d]

		// Rightmost turn first keeps the walk hugging the region and
		// splits diagonally touching pixels into separate loops.
		nd := -1
		for _, cand := range [3]int{(d + 1) % 4, d, (d + 3) % 4} {
			if w.isBoundary(cx, cy, cand) {
				nd = cand
				break
			}
		}
		if nd < 0 {
			break
		}
		if cx == sx && cy == sy && nd == dirRight {
			break
		}
		addPoint(cx, cy)
		d = nd
	}

	return collapseClosure(pts)
}

// collapseClosure removes points that are collinear across the implicit
// closing segment, which the incremental collapse cannot see.
func collapseClosure(pts []types.Point) []types.Point {
	collinear := func(a, b, p types.Point) bool {
		return (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0
	}
	for len(pts) >= 3 && collinear(pts[len(pts)-2], pts[len(pts)-1], pts[0]) {
		pts = pts[:len(pts)-1]
	}
	for len(pts) >= 3 && collinear(pts[len(pts)-1], pts[0], pts[1]) {
		pts = pts[1:]
	}
	return pts
}
