// Package processing bridges raster images and the pipeline's data model:
// model-input preparation, mask grid to image conversion and back, and a
// debug overlay for click prompts.
package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/maskvec/pkg/transform"
	"github.com/menta2k/maskvec/pkg/types"
)

// Processor handles image processing operations
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// PrepareImageForModel resizes an image to model-input resolution under the
// profile's upload scale and returns it base64-encoded for the first
// request of a session.
func (p *Processor) PrepareImageForModel(img image.Image, profile types.ScaleProfile, format string, quality int) (string, error) {
	if err := profile.Validate(); err != nil {
		return "", fmt.Errorf("invalid scale profile: %w", err)
	}

	size := transform.MapSize(profile, types.Size{
		Width:  float64(profile.Extent.Width),
		Height: float64(profile.Extent.Height),
	}, transform.SpaceOriginal, transform.SpaceModelInput)

	resized := imaging.Resize(img,
		int(math.Round(size.Width)),
		int(math.Round(size.Height)),
		imaging.Lanczos)

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, resized); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// GridToImage renders a probability grid as a grayscale image. Values pass
// through the logistic function so raw logits land on 0..255 with the zero
// threshold exactly at mid-gray.
func (p *Processor) GridToImage(grid *types.Grid) (*image.Gray, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	img := image.NewGray(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			prob := 1 / (1 + math.Exp(-grid.At(x, y)))
			img.SetGray(x, y, color.Gray{Y: uint8(prob*255 + 0.5)})
		}
	}
	return img, nil
}

// GridFromImage is the inverse of GridToImage: luminance becomes a logit,
// mid-gray mapping to zero. Extreme luminances are clamped so the logit
// stays finite. Any image type is accepted; color is reduced to luminance.
func (p *Processor) GridFromImage(img image.Image) *types.Grid {
	bounds := img.Bounds()
	grid := &types.Grid{
		Data:   make([]float64, bounds.Dx()*bounds.Dy()),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			prob := clamp(float64(g.Y)/255, 1e-4, 1-1e-4)
			grid.Set(x, y, math.Log(prob/(1-prob)))
		}
	}
	return grid
}

// DrawClickMarkers returns a copy of the image with a crosshair per click,
// green for foreground and red for background prompts. Clicks are in
// model-input space and are mapped into the image's space for drawing.
func (p *Processor) DrawClickMarkers(img image.Image, clicks []types.Click, profile types.ScaleProfile, space transform.Space) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	green := color.NRGBA{G: 255, A: 255}
	red := color.NRGBA{R: 255, A: 255}
	cross := int(math.Max(4, 0.01*float64(minInt(w, h)))) // ~1% of min side

	for _, c := range clicks {
		pt := transform.Map(profile, c.Point(), transform.SpaceModelInput, space)
		px := int(pt.X + 0.5)
		py := int(pt.Y + 0.5)

		marker := green
		if c.Label == types.LabelBackground {
			marker = red
		}
		drawHLine(nrgba, py, px-cross, px+cross, marker)
		drawVLine(nrgba, px, py-cross, py+cross, marker)
	}

	return nrgba
}

// Helper functions
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
