// Package imagesource loads and saves the images an editing session works
// on and probes their natural extent without a full decode.
package imagesource

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/maskvec/pkg/types"
)

// Source provides image file access for editing sessions
type Source struct {
	config Config
}

// Config holds configuration for the image source
type Config struct {
	DefaultQuality   int
	SupportedFormats []string
	MinImageSize     int
}

// New creates a new Source with default configuration
func New() *Source {
	return &Source{
		config: Config{
			DefaultQuality:   85,
			SupportedFormats: []string{"jpg", "jpeg", "png", "webp"},
			MinImageSize:     16,
		},
	}
}

// NewWithConfig creates a new Source with custom configuration
func NewWithConfig(config Config) *Source {
	return &Source{config: config}
}

// Load loads an image from file
func (s *Source) Load(filepath string) (image.Image, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return s.LoadFromReader(file)
}

// LoadFromReader loads an image from an io.Reader
func (s *Source) LoadFromReader(reader io.Reader) (image.Image, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if !s.isFormatSupported(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	return img, nil
}

// DecodeExtent reads only the image header and returns the natural extent,
// the value an editing session is created with. The pixels stay on disk.
func (s *Source) DecodeExtent(filepath string) (types.Extent, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return types.Extent{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return types.Extent{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if !s.isFormatSupported(format) {
		return types.Extent{}, fmt.Errorf("unsupported image format: %s", format)
	}

	return types.NewExtent(float64(cfg.Width), float64(cfg.Height))
}

// Extent returns a decoded image's natural dimensions
func (s *Source) Extent(img image.Image) (types.Extent, error) {
	bounds := img.Bounds()
	return types.NewExtent(float64(bounds.Dx()), float64(bounds.Dy()))
}

// Save saves an image to file, picking the encoder from the extension
func (s *Source) Save(img image.Image, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath[strings.LastIndex(filepath, ".")+1:])

	switch ext {
	case "jpg", "jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: s.config.DefaultQuality})
	case "png":
		return png.Encode(file, img)
	case "webp":
		return webp.Encode(file, img, &webp.Options{Quality: float32(s.config.DefaultQuality)})
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}
}

// Resize scales an image to the given dimensions with Lanczos resampling
func (s *Source) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Info returns basic information about an image
func (s *Source) Info(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	return ImageInfo{
		Width:       width,
		Height:      height,
		AspectRatio: float64(width) / float64(height),
		Area:        width * height,
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

func (s *Source) isFormatSupported(format string) bool {
	for _, supported := range s.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// Validate checks if an image meets minimum requirements for a session
func (s *Source) Validate(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < s.config.MinImageSize || bounds.Dy() < s.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), s.config.MinImageSize)
	}
	return nil
}
