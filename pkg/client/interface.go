// Package client defines the contract between the refinement pipeline and
// the external segmentation model collaborator.
package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/menta2k/maskvec/pkg/types"
)

// MaskPredictor is the external model collaborator. It accepts one
// refinement step's request (ordered clicks, optional previous-mask
// feedback, scale metadata) and returns the predicted probability grid.
// Implementations decide how to use the previous mask and may keep
// per-session embedding state keyed by the request's session id.
type MaskPredictor interface {
	// Predict runs one refinement step. The returned grid's values follow
	// the implementation's score convention; the caller thresholds them.
	Predict(ctx context.Context, req *types.ModelRequest) (*types.Grid, error)

	// EndSession releases any collaborator-side state for the session
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}
