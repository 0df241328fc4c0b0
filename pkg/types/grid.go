package types

import "fmt"

// Grid is a dense 2D field of per-pixel mask scores in row-major order.
// Values follow the model collaborator's convention (raw logits by default,
// see the mask threshold configuration). A grid is immutable once handed to
// the session.
type Grid struct {
	Data   []float64 `json:"data"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}

// NewGrid wraps row-major data after checking it against the declared
// dimensions. Fails with ErrDimensionMismatch before any value is read.
func NewGrid(data []float64, width, height int) (*Grid, error) {
	g := &Grid{Data: data, Width: width, Height: height}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewEmptyGrid allocates a zero-filled grid of the given dimensions
func NewEmptyGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrDimensionMismatch, width, height)
	}
	return &Grid{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}, nil
}

// Validate checks the data length against the declared dimensions
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrDimensionMismatch, g.Width, g.Height)
	}
	if len(g.Data) != g.Width*g.Height {
		return fmt.Errorf("%w: %d values for %dx%d grid", ErrDimensionMismatch, len(g.Data), g.Width, g.Height)
	}
	return nil
}

// At returns the value at grid cell (x, y). The caller is responsible for
// bounds; indices are not clamped.
func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// Set writes the value at grid cell (x, y)
func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}
