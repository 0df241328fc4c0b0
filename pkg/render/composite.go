package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/menta2k/maskvec/pkg/types"
	"github.com/menta2k/maskvec/pkg/vectorpath"
)

var alphaOpaque = color.Alpha{A: 255}

// OverlayOptions controls the interactive-editing composite
type OverlayOptions struct {
	// Fill is the highlight color laid over the selection
	Fill color.NRGBA

	// Opacity scales the fill, 0 transparent to 1 opaque
	Opacity float64
}

// DefaultOverlayOptions returns the standard translucent blue highlight
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		Fill:    color.NRGBA{R: 40, G: 130, B: 255, A: 255},
		Opacity: 0.45,
	}
}

// Composite renders the path over the source image with the given intent.
// The path must already be in the source image's coordinate space; the
// intent never changes geometry, only compositing.
func Composite(src image.Image, p *vectorpath.Path, intent vectorpath.Intent) (image.Image, error) {
	switch intent {
	case vectorpath.IntentOverlay:
		return Overlay(src, p, DefaultOverlayOptions()), nil
	case vectorpath.IntentCutout:
		return Cutout(src, p), nil
	default:
		return nil, fmt.Errorf("unknown render intent %d", intent)
	}
}

// Overlay composites a translucent fill of the selection over the source
// image, the editing-time view. A nil or empty path returns the source
// unchanged apart from the NRGBA copy.
func Overlay(src image.Image, p *vectorpath.Path, opts OverlayOptions) *image.NRGBA {
	bounds := src.Bounds()
	out := imaging.Clone(src)
	if p.IsEmpty() || opts.Opacity <= 0 {
		return out
	}

	mask := Rasterize(p, bounds.Dx(), bounds.Dy())
	fill := image.NewUniform(color.NRGBA{
		R: opts.Fill.R,
		G: opts.Fill.G,
		B: opts.Fill.B,
		A: uint8(clampUnit(opts.Opacity)*255 + 0.5),
	})
	draw.DrawMask(out, out.Bounds(), fill, image.Point{}, mask, image.Point{}, draw.Over)
	return out
}

// Cutout erases everything outside the selection by zeroing alpha, the
// export view. A nil or empty path yields a fully transparent image.
func Cutout(src image.Image, p *vectorpath.Path) *image.NRGBA {
	bounds := src.Bounds()
	out := imaging.Clone(src)
	mask := Rasterize(p, bounds.Dx(), bounds.Dy())

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if mask.AlphaAt(x, y).A == 0 {
				i := out.PixOffset(x, y)
				out.Pix[i+3] = 0
			}
		}
	}
	return out
}

// CutoutCropped cuts the selection out and crops the result to the path's
// bounding box grown by padding pixels, clamped to the image. Returns an
// error for an empty selection, which has no bounds to crop to.
func CutoutCropped(src image.Image, p *vectorpath.Path, padding float64) (*image.NRGBA, error) {
	if p.IsEmpty() {
		return nil, fmt.Errorf("empty selection has no crop bounds")
	}

	cut := Cutout(src, p)
	box := p.BoundingBox().Pad(padding)

	rect := image.Rect(
		int(box.Min.X), int(box.Min.Y),
		int(box.Max.X+0.5), int(box.Max.Y+0.5),
	).Intersect(cut.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("selection bounds %v lie outside the image", box)
	}

	return imaging.Crop(cut, rect), nil
}

// PathBounds exposes the rect the cutout crop would use, for callers that
// lay out export surfaces before rendering.
func PathBounds(p *vectorpath.Path, padding float64) types.Rect {
	if p.IsEmpty() {
		return types.Rect{}
	}
	return p.BoundingBox().Pad(padding)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
