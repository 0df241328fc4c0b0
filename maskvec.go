// Package maskvec provides interactive mask vectorization: click-driven
// object selection over a neural segmentation model's probability masks,
// converted into editable vector paths.
//
// The pipeline keeps four coordinate spaces consistent for one image — the
// original resolution, the model-input resolution, the mask-grid resolution
// and the on-screen canvas — while each click refines the previous mask
// into a better one, with undo replaying earlier results from history.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/menta2k/maskvec"
//		"github.com/menta2k/maskvec/pkg/types"
//		"github.com/menta2k/maskvec/pkg/vision"
//	)
//
//	func main() {
//		vectorizer := maskvec.New()
//
//		// Open an editing session; 0.25 is the canvas scale from layout.
//		sess, _, err := vectorizer.NewSessionForImage("photo.jpg", 0.25)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Any MaskPredictor works; vision runs without a model server.
//		predictor := vision.New()
//		defer predictor.EndSession(context.Background(), sess.ID())
//
//		// One click in canvas coordinates selects the object under it.
//		path, err := vectorizer.Refine(context.Background(), sess, predictor,
//			types.Point{X: 120, Y: 80})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Println(path.SVGPathData())
//	}
//
// The package consists of these components:
//
// 1. Transform (pkg/transform): scale profiles and space-to-space mapping
// 2. Contour (pkg/contour): probability grid to closed boundary loops
// 3. Vectorpath (pkg/vectorpath): contours to renderable paths
// 4. Session (pkg/session): click history, undo and stale-mask rejection
// 5. Client (pkg/client, pkg/onnxserver, pkg/vision): model collaborators
// 6. Render (pkg/render): reference overlay and cutout compositing
package maskvec

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/menta2k/maskvec/internal/config"
	"github.com/menta2k/maskvec/internal/utils"
	"github.com/menta2k/maskvec/pkg/client"
	"github.com/menta2k/maskvec/pkg/contour"
	"github.com/menta2k/maskvec/pkg/imagesource"
	"github.com/menta2k/maskvec/pkg/processing"
	"github.com/menta2k/maskvec/pkg/render"
	"github.com/menta2k/maskvec/pkg/session"
	"github.com/menta2k/maskvec/pkg/transform"
	"github.com/menta2k/maskvec/pkg/types"
	"github.com/menta2k/maskvec/pkg/vectorpath"
)

// Version of the mask vectorization library
const Version = "1.0.0"

// Vectorizer provides a high-level interface to the refinement pipeline
type Vectorizer struct {
	source     *imagesource.Source
	processor  *processing.Processor
	extractor  *contour.Extractor
	builder    *vectorpath.Builder
	scaleCfg   transform.ScaleConfig
	sessionCfg session.Config
	modelCfg   config.ModelConfig
}

// New creates a Vectorizer with default configuration
func New() *Vectorizer {
	v, _ := NewWithConfig(config.Default())
	return v
}

// NewWithConfig creates a Vectorizer from an application configuration
func NewWithConfig(cfg *config.Config) (*Vectorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fillRule, err := vectorpath.ParseFillRule(cfg.Mask.FillRule)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	contourCfg := contour.Config{
		Threshold:         cfg.Mask.Threshold,
		SimplifyTolerance: cfg.Mask.SimplifyTolerance,
	}

	return &Vectorizer{
		source: imagesource.NewWithConfig(imagesource.Config{
			DefaultQuality:   cfg.Source.DefaultQuality,
			SupportedFormats: cfg.Source.SupportedFormats,
			MinImageSize:     cfg.Source.MinImageSize,
		}),
		processor: processing.NewProcessor(),
		extractor: contour.NewExtractorWithConfig(contourCfg),
		builder:   vectorpath.NewBuilderWithFillRule(fillRule),
		scaleCfg: transform.ScaleConfig{
			UploadTargetDim:  cfg.Scale.UploadTargetDim,
			PreviewTargetDim: cfg.Scale.PreviewTargetDim,
			PreviewMaxDim:    cfg.Scale.PreviewMaxDim,
		},
		sessionCfg: session.Config{
			HistorySize: cfg.Session.HistorySize,
			Contour:     contourCfg,
			FillRule:    fillRule,
		},
		modelCfg: cfg.Model,
	}, nil
}

// ComputeScaleProfile derives the scale factors relating the four
// coordinate spaces for an image extent. canvasScale comes from the
// caller's layout: on-screen render size over original size.
func (v *Vectorizer) ComputeScaleProfile(extent types.Extent, canvasScale float64) (types.ScaleProfile, error) {
	return transform.ComputeScaleProfile(extent, canvasScale, v.scaleCfg)
}

// NewSession opens a refinement session for an image described by its
// scale profile.
func (v *Vectorizer) NewSession(profile types.ScaleProfile) (*session.Session, error) {
	return session.New(profile, v.sessionCfg)
}

// NewSessionForImage loads an image file, derives its scale profile and
// opens a session with the model-input payload already attached. The
// decoded image is returned for rendering.
func (v *Vectorizer) NewSessionForImage(path string, canvasScale float64) (*session.Session, image.Image, error) {
	img, err := v.source.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load image: %w", err)
	}
	if err := v.source.Validate(img); err != nil {
		return nil, nil, fmt.Errorf("image validation failed: %w", err)
	}

	extent, err := v.source.Extent(img)
	if err != nil {
		return nil, nil, err
	}
	profile, err := v.ComputeScaleProfile(extent, canvasScale)
	if err != nil {
		return nil, nil, err
	}

	sess, err := v.NewSession(profile)
	if err != nil {
		return nil, nil, err
	}

	imageData, err := v.processor.PrepareImageForModel(img, profile, v.modelCfg.ImageFormat, v.modelCfg.ImageQuality)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare model input: %w", err)
	}
	sess.SetImageData(imageData)

	return sess, img, nil
}

// Refine drives one full refinement step: the canvas-space click is added
// to the session, the predictor is asked for a new mask, and the mask is
// fed back in to become the current path. A predictor failure is returned
// as a RefinementError; the click stays and the session keeps its
// last-good mask and path.
func (v *Vectorizer) Refine(ctx context.Context, sess *session.Session, predictor client.MaskPredictor, canvasPoint types.Point) (*vectorpath.Path, error) {
	return v.refine(ctx, sess, predictor, canvasPoint, types.LabelForeground)
}

// RefineBackground is Refine with a background-labeled click, carving the
// clicked region out of the selection.
func (v *Vectorizer) RefineBackground(ctx context.Context, sess *session.Session, predictor client.MaskPredictor, canvasPoint types.Point) (*vectorpath.Path, error) {
	return v.refine(ctx, sess, predictor, canvasPoint, types.LabelBackground)
}

func (v *Vectorizer) refine(ctx context.Context, sess *session.Session, predictor client.MaskPredictor, canvasPoint types.Point, label types.Label) (*vectorpath.Path, error) {
	req, stepID := sess.AddLabeledClick(canvasPoint, label)

	grid, err := predictor.Predict(ctx, req)
	if err != nil {
		return nil, session.NewRefinementError(stepID, err)
	}

	path, err := sess.OnMaskReceived(stepID, grid)
	if err != nil {
		return nil, session.NewRefinementError(stepID, err)
	}
	return path, nil
}

// VectorizeGrid converts one probability grid into a path without a
// session, placed in the chosen space of the profile.
func (v *Vectorizer) VectorizeGrid(grid *types.Grid, profile types.ScaleProfile, to transform.Space) (*vectorpath.Path, error) {
	contours, err := v.extractor.Extract(grid)
	if err != nil {
		return nil, err
	}
	return v.builder.Build(contours, profile, transform.SpaceMaskGrid, to), nil
}

// ProcessMaskImage is a convenience for offline use: it loads an image and
// a grayscale mask rendering of it, vectorizes the mask, composites with
// the given intent and saves the result. The mask may be at any resolution;
// it is treated as the session's mask grid.
func (v *Vectorizer) ProcessMaskImage(imagePath, maskPath, outputPath string, intent vectorpath.Intent) error {
	img, err := v.source.Load(imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	maskImg, err := v.source.Load(maskPath)
	if err != nil {
		return fmt.Errorf("failed to load mask: %w", err)
	}

	extent, err := v.source.Extent(img)
	if err != nil {
		return err
	}
	grid := v.processor.GridFromImage(maskImg)

	// A profile whose canvas is the original image, with the preview scale
	// taken from the mask's actual resolution.
	profile := types.ScaleProfile{
		UploadScale:  float64(v.scaleCfg.UploadTargetDim) / float64(extent.MaxDim()),
		PreviewScale: float64(grid.Width) / float64(extent.Width),
		CanvasScale:  1,
		Extent:       extent,
	}
	profile.OnnxScale = profile.PreviewScale / profile.UploadScale

	path, err := v.VectorizeGrid(grid, profile, transform.SpaceCanvas)
	if err != nil {
		return fmt.Errorf("failed to vectorize mask: %w", err)
	}

	out, err := render.Composite(img, path, intent)
	if err != nil {
		return fmt.Errorf("failed to composite: %w", err)
	}

	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := v.source.Save(out, outputPath); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
