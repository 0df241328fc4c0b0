// Package vision provides an in-process MaskPredictor built on color
// similarity to the clicked seed pixels. It exists so the pipeline can run
// and be exercised without a segmentation server; its masks are much
// coarser than a neural model's but follow the same request contract,
// including previous-mask feedback and per-session image state.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/menta2k/maskvec/pkg/types"
)

// Config holds tuning for the region predictor
type Config struct {
	// ColorTolerance is the normalized RGB distance (0..1) at which a
	// pixel's score crosses zero. Smaller values select tighter regions.
	ColorTolerance float64

	// FeedbackWeight blends the previous mask into the new score,
	// 0 ignores history and 1 freezes the selection.
	FeedbackWeight float64
}

// DefaultConfig returns tuning that selects visually similar regions
func DefaultConfig() Config {
	return Config{
		ColorTolerance: 0.25,
		FeedbackWeight: 0.3,
	}
}

// RegionPredictor scores grid cells by color distance to the clicked seeds.
// Foreground clicks attract, background clicks repel, and the previous mask
// is blended in as feedback. Scores are logit-like: positive inside the
// selection, negative outside, zero at the tolerance boundary.
type RegionPredictor struct {
	config Config

	mu     sync.Mutex
	images map[uuid.UUID]*image.NRGBA
}

// New creates a predictor with default configuration
func New() *RegionPredictor {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a predictor with custom configuration
func NewWithConfig(config Config) *RegionPredictor {
	if config.ColorTolerance <= 0 {
		config.ColorTolerance = DefaultConfig().ColorTolerance
	}
	return &RegionPredictor{
		config: config,
		images: make(map[uuid.UUID]*image.NRGBA),
	}
}

// Predict scores every cell of the mask grid for one refinement step. The
// first request of a session must carry the base64 model-input image; later
// requests reuse the image cached under the session id.
func (p *RegionPredictor) Predict(ctx context.Context, req *types.ModelRequest) (*types.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Clicks) == 0 {
		return nil, fmt.Errorf("no clicks in request")
	}
	if err := req.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scale profile: %w", err)
	}

	gridImg, err := p.sessionImage(req)
	if err != nil {
		return nil, err
	}

	gridExtent := req.Profile.GridExtent()
	grid, err := types.NewEmptyGrid(gridExtent.Width, gridExtent.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate grid: %w", err)
	}

	// Seed colors are sampled where the clicks land on the grid. Clicks
	// arrive in model-input space; onnxScale moves them to grid space.
	type seed struct {
		r, g, b    float64
		foreground bool
	}
	seeds := make([]seed, 0, len(req.Clicks))
	for _, c := range req.Clicks {
		gx := clampInt(int(math.Round(c.X*req.Profile.OnnxScale)), 0, gridExtent.Width-1)
		gy := clampInt(int(math.Round(c.Y*req.Profile.OnnxScale)), 0, gridExtent.Height-1)
		r, g, b := nrgbaAt(gridImg, gx, gy)
		seeds = append(seeds, seed{r: r, g: g, b: b, foreground: c.Label == types.LabelForeground})
	}

	feedback := req.PreviousMask
	if feedback != nil && (feedback.Width != gridExtent.Width || feedback.Height != gridExtent.Height) {
		return nil, fmt.Errorf("%w: previous mask is %dx%d, grid is %dx%d",
			types.ErrDimensionMismatch, feedback.Width, feedback.Height, gridExtent.Width, gridExtent.Height)
	}

	for y := 0; y < gridExtent.Height; y++ {
		for x := 0; x < gridExtent.Width; x++ {
			r, g, b := nrgbaAt(gridImg, x, y)

			attract := math.Inf(-1)
			repel := math.Inf(-1)
			for _, s := range seeds {
				score := (p.config.ColorTolerance - colorDistance(r, g, b, s.r, s.g, s.b)) / p.config.ColorTolerance
				if s.foreground {
					attract = math.Max(attract, score)
				} else {
					repel = math.Max(repel, score)
				}
			}

			v := attract
			if !math.IsInf(repel, -1) && repel > attract {
				v = -repel
			}

			if feedback != nil {
				v = v*(1-p.config.FeedbackWeight) + feedback.At(x, y)*p.config.FeedbackWeight
			}
			grid.Set(x, y, v)
		}
	}

	return grid, nil
}

// EndSession drops the cached image for a session
func (p *RegionPredictor) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.images, sessionID)
	return nil
}

// sessionImage returns the session's image resampled to grid resolution,
// decoding and caching it from the first request's payload.
func (p *RegionPredictor) sessionImage(req *types.ModelRequest) (*image.NRGBA, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if img, ok := p.images[req.SessionID]; ok {
		return img, nil
	}

	if req.ImageData == "" {
		return nil, fmt.Errorf("no cached image for session %s and no image data in request", req.SessionID)
	}

	raw, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	gridExtent := req.Profile.GridExtent()
	resized := imaging.Resize(img, gridExtent.Width, gridExtent.Height, imaging.Lanczos)
	p.images[req.SessionID] = resized
	return resized, nil
}

// nrgbaAt returns a pixel's channels normalized to 0..1
func nrgbaAt(img *image.NRGBA, x, y int) (float64, float64, float64) {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// colorDistance is the Euclidean RGB distance normalized to 0..1
func colorDistance(r1, g1, b1, r2, g2, b2 float64) float64 {
	dr := r1 - r2
	dg := g1 - g2
	db := b1 - b2
	return math.Sqrt(dr*dr+dg*dg+db*db) / math.Sqrt(3)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
