// Package transform maps points and sizes between the four coordinate
// spaces of an editing session: the original image, the model input, the
// mask probability grid, and the on-screen canvas. Every mapping is a pure
// uniform multiply derived from one ScaleProfile, so any composition of
// mappings agrees with the direct mapping and every mapping is invertible.
package transform

import (
	"fmt"
	"math"

	"github.com/menta2k/maskvec/pkg/types"
)

// Space identifies one of the session's coordinate spaces
type Space int

const (
	// SpaceOriginal is the source image at its natural resolution
	SpaceOriginal Space = iota
	// SpaceModelInput is the image as resized for the model's visual encoder
	SpaceModelInput
	// SpaceMaskGrid is the model's predicted probability grid
	SpaceMaskGrid
	// SpaceCanvas is the on-screen render target
	SpaceCanvas
)

// String returns a human-readable space name
func (s Space) String() string {
	switch s {
	case SpaceOriginal:
		return "original"
	case SpaceModelInput:
		return "model-input"
	case SpaceMaskGrid:
		return "mask-grid"
	case SpaceCanvas:
		return "canvas"
	default:
		return "unknown"
	}
}

// ScaleConfig holds the fixed target dimensions the scale profile is
// derived from. UploadTargetDim constrains the long edge of the model
// input. PreviewTargetDim constrains the short edge of the mask grid,
// except that PreviewMaxDim caps the long edge: when the short-edge rule
// would push the long edge past the cap, the scale is recomputed from the
// cap instead.
type ScaleConfig struct {
	UploadTargetDim  int
	PreviewTargetDim int
	PreviewMaxDim    int
}

// DefaultScaleConfig returns the standard model input and preview targets
func DefaultScaleConfig() ScaleConfig {
	return ScaleConfig{
		UploadTargetDim:  1024,
		PreviewTargetDim: 800,
		PreviewMaxDim:    1333,
	}
}

// Validate checks that every target dimension is positive
func (c ScaleConfig) Validate() error {
	if c.UploadTargetDim <= 0 {
		return fmt.Errorf("upload target dimension must be positive, got %d", c.UploadTargetDim)
	}
	if c.PreviewTargetDim <= 0 {
		return fmt.Errorf("preview target dimension must be positive, got %d", c.PreviewTargetDim)
	}
	if c.PreviewMaxDim <= 0 {
		return fmt.Errorf("preview max dimension must be positive, got %d", c.PreviewMaxDim)
	}
	return nil
}

// ComputeScaleProfile derives the session's scale factors from the image
// extent. The upload scale is UploadTargetDim over the larger dimension.
// The preview scale starts from PreviewTargetDim over the smaller dimension
// and is recomputed from PreviewMaxDim when the larger dimension would
// exceed it; both steps are required for extreme aspect ratios. The onnx
// scale is the stored preview scale over the stored upload scale.
// canvasScale is supplied by the caller from its layout, never derived.
func ComputeScaleProfile(extent types.Extent, canvasScale float64, cfg ScaleConfig) (types.ScaleProfile, error) {
	if err := extent.Validate(); err != nil {
		return types.ScaleProfile{}, err
	}
	if err := cfg.Validate(); err != nil {
		return types.ScaleProfile{}, err
	}
	if math.IsNaN(canvasScale) || math.IsInf(canvasScale, 0) || canvasScale <= 0 {
		return types.ScaleProfile{}, fmt.Errorf("canvas scale must be finite and positive, got %v", canvasScale)
	}

	maxDim := float64(extent.MaxDim())
	minDim := float64(extent.MinDim())

	uploadScale := float64(cfg.UploadTargetDim) / maxDim

	previewScale := float64(cfg.PreviewTargetDim) / minDim
	if maxDim*previewScale > float64(cfg.PreviewMaxDim) {
		previewScale = float64(cfg.PreviewMaxDim) / maxDim
	}

	return types.ScaleProfile{
		UploadScale:  uploadScale,
		PreviewScale: previewScale,
		OnnxScale:    previewScale / uploadScale,
		CanvasScale:  canvasScale,
		Extent:       extent,
	}, nil
}

// scaleOf returns a space's scale factor relative to the original image.
// Unknown spaces map like the original space.
func scaleOf(p types.ScaleProfile, s Space) float64 {
	switch s {
	case SpaceModelInput:
		return p.UploadScale
	case SpaceMaskGrid:
		return p.PreviewScale
	case SpaceCanvas:
		return p.CanvasScale
	default:
		return 1
	}
}

// Factor returns the uniform multiplier that maps coordinates in the from
// space to the to space. Factors for opposite directions are exact
// reciprocals of the same two stored scales, which keeps round trips and
// compositions consistent.
func Factor(p types.ScaleProfile, from, to Space) float64 {
	if from == to {
		return 1
	}
	return scaleOf(p, to) / scaleOf(p, from)
}

// Map converts a point between two spaces. The multiply is unclamped;
// points outside the image pass through unchanged apart from scaling, and
// bounds are the caller's concern.
func Map(p types.ScaleProfile, pt types.Point, from, to Space) types.Point {
	return pt.Scale(Factor(p, from, to))
}

// MapSize converts a width/height pair between two spaces
func MapSize(p types.ScaleProfile, sz types.Size, from, to Space) types.Size {
	f := Factor(p, from, to)
	return types.Size{Width: sz.Width * f, Height: sz.Height * f}
}
