package types

import "github.com/google/uuid"

// ModelRequest is the payload handed to the external segmentation
// collaborator for one refinement step. Clicks are in model-input space and
// ordered oldest first; each new click is overlaid on top of the prior ones.
// PreviousMask carries the last accepted grid as feedback context; the model,
// not this pipeline, decides how to use it. ImageData holds the base64
// model-input image and is only populated on the first step of a session,
// after which the collaborator keys its embedding state by SessionID.
type ModelRequest struct {
	SessionID    uuid.UUID    `json:"session_id"`
	StepID       int          `json:"step_id"`
	Clicks       []Click      `json:"clicks"`
	PreviousMask *Grid        `json:"previous_mask,omitempty"`
	Profile      ScaleProfile `json:"profile"`
	ImageData    string       `json:"image_data,omitempty"`
}
