// Package session owns the click history and current mask of one
// interactive selection and turns mask arrivals into renderable paths.
//
// The session is commanded by AddClick and Undo and fed by one event,
// OnMaskReceived. The external model collaborator is asynchronous and its
// responses may arrive out of order relative to newer edits, so every
// outgoing request is tagged with the click-list length at send time and a
// response is only accepted while that tag still matches. That check is the
// sole ordering rule; stale responses are discarded silently.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/menta2k/maskvec/pkg/contour"
	"github.com/menta2k/maskvec/pkg/transform"
	"github.com/menta2k/maskvec/pkg/types"
	"github.com/menta2k/maskvec/pkg/vectorpath"
)

// State describes the session's refinement lifecycle
type State int

const (
	// StateEmpty means no clicks, no mask and no path
	StateEmpty State = iota
	// StateRefining means at least one click, with a mask pending or present
	StateRefining
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRefining:
		return "refining"
	default:
		return "unknown"
	}
}

// EventType classifies session notifications
type EventType int

const (
	// EventPathUpdated fires when the current path changes, including to nil
	EventPathUpdated EventType = iota
	// EventSelectionCleared fires on the transition back to the empty state
	EventSelectionCleared
	// EventStaleMaskDiscarded fires when an out-of-date response is dropped
	EventStaleMaskDiscarded
)

// Event is delivered to subscribers after the session state has settled
type Event struct {
	Type   EventType
	StepID int
	Path   *vectorpath.Path
}

// Config controls session behavior
type Config struct {
	// HistorySize bounds the per-step mask cache that undo replays from.
	// Steps evicted from the cache behave like the in-flight race: undoing
	// onto them clears the path until a fresh mask arrives.
	HistorySize int

	// Contour configures thresholding and simplification
	Contour contour.Config

	// FillRule is attached to every built path
	FillRule vectorpath.FillRule

	// Logger receives debug events such as stale discards. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns the standard session settings
func DefaultConfig() Config {
	return Config{
		HistorySize: 64,
		Contour:     contour.DefaultConfig(),
		FillRule:    vectorpath.FillRuleNonZero,
	}
}

// stepResult is the cached outcome of one accepted refinement step
type stepResult struct {
	grid *types.Grid
	path *vectorpath.Path
}

// Session is the single writer of one selection's click list, current mask
// and current path. Renderers get read-only views. All methods are safe for
// concurrent use; mask arrivals may come from any goroutine.
type Session struct {
	mu sync.RWMutex

	id        uuid.UUID
	profile   types.ScaleProfile
	extractor *contour.Extractor
	builder   *vectorpath.Builder
	logger    *slog.Logger

	clicks    []types.Click
	grid      *types.Grid
	path      *vectorpath.Path
	history   *lru.Cache[int, stepResult]
	imageData string

	listeners []func(Event)
}

// New creates a session for one image described by its scale profile
func New(profile types.ScaleProfile, cfg Config) (*Session, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	history, err := lru.New[int, stepResult](cfg.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create mask history: %w", err)
	}

	return &Session{
		id:        uuid.New(),
		profile:   profile,
		extractor: contour.NewExtractorWithConfig(cfg.Contour),
		builder:   vectorpath.NewBuilderWithFillRule(cfg.FillRule),
		logger:    cfg.Logger,
		history:   history,
	}, nil
}

// ID returns the session identity used to key collaborator-side state
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Profile returns the session's scale profile
func (s *Session) Profile() types.ScaleProfile {
	return s.profile
}

// State reports whether the session holds any clicks
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clicks) == 0 {
		return StateEmpty
	}
	return StateRefining
}

// StepID returns the current refinement step, equal to the click count
func (s *Session) StepID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clicks)
}

// Clicks returns a copy of the ordered click list in model-input space
func (s *Session) Clicks() []types.Click {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Click, len(s.clicks))
	copy(out, s.clicks)
	return out
}

// Path returns the current path in canvas space, nil when cleared
func (s *Session) Path() *vectorpath.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Grid returns the last accepted probability grid, nil when cleared
func (s *Session) Grid() *types.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// SetImageData attaches the base64 model-input image sent with the first
// request of the session. Later requests rely on collaborator-side state
// keyed by the session id.
func (s *Session) SetImageData(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageData = data
}

// Subscribe registers a listener for session events. Listeners run after
// the state change has settled and must not block.
func (s *Session) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddClick appends a foreground click given in canvas space and returns the
// request for the next mask along with its step id.
func (s *Session) AddClick(canvasPoint types.Point) (*types.ModelRequest, int) {
	return s.AddLabeledClick(canvasPoint, types.LabelForeground)
}

// AddLabeledClick appends a click with an explicit label. Background clicks
// let the caller carve regions out of the selection.
func (s *Session) AddLabeledClick(canvasPoint types.Point, label types.Label) (*types.ModelRequest, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modelPoint := transform.Map(s.profile, canvasPoint, transform.SpaceCanvas, transform.SpaceModelInput)
	s.clicks = append(s.clicks, types.Click{X: modelPoint.X, Y: modelPoint.Y, Label: label})

	stepID := len(s.clicks)
	return s.buildRequestLocked(stepID), stepID
}

// buildRequestLocked snapshots the request for the given step. The click
// slice is copied so the caller can hold the request across later edits.
func (s *Session) buildRequestLocked(stepID int) *types.ModelRequest {
	clicks := make([]types.Click, len(s.clicks))
	copy(clicks, s.clicks)

	req := &types.ModelRequest{
		SessionID:    s.id,
		StepID:       stepID,
		Clicks:       clicks,
		PreviousMask: s.grid,
		Profile:      s.profile,
	}
	if stepID == 1 {
		req.ImageData = s.imageData
	}
	return req
}

// Undo removes the most recent click. The mask cached for the shorter click
// list is replayed without a new model request; if it was never cached (its
// response was still in flight when the click was added, or it aged out of
// the history) the path clears until a fresh mask arrives. Undoing the last
// click empties the selection. Returns the new current path and step id.
func (s *Session) Undo() (*vectorpath.Path, int) {
	s.mu.Lock()

	if len(s.clicks) == 0 {
		s.mu.Unlock()
		return nil, 0
	}

	s.clicks = s.clicks[:len(s.clicks)-1]
	stepID := len(s.clicks)

	// Truncation invalidates every cached step beyond the new length.
	for _, k := range s.history.Keys() {
		if k > stepID {
			s.history.Remove(k)
		}
	}

	if stepID == 0 {
		s.grid = nil
		s.path = nil
		s.mu.Unlock()
		s.emit(Event{Type: EventSelectionCleared})
		return nil, 0
	}

	if res, ok := s.history.Get(stepID); ok {
		s.grid = res.grid
		s.path = res.path
	} else {
		s.grid = nil
		s.path = nil
	}
	path := s.path
	s.mu.Unlock()

	s.emit(Event{Type: EventPathUpdated, StepID: stepID, Path: path})
	return path, stepID
}

// Clear drops all clicks, the current mask and path, and the step history
func (s *Session) Clear() {
	s.mu.Lock()
	s.clicks = nil
	s.grid = nil
	s.path = nil
	s.history.Purge()
	s.mu.Unlock()

	s.emit(Event{Type: EventSelectionCleared})
}

// OnMaskReceived accepts the collaborator's grid for the given step. A
// response whose step id no longer matches the current click count is
// discarded and returns a nil path with no error. Accepted grids are
// extracted and built into a canvas-space path synchronously, cached for
// undo replay, and installed as the current state. A malformed grid fails
// before any state changes.
func (s *Session) OnMaskReceived(stepID int, grid *types.Grid) (*vectorpath.Path, error) {
	s.mu.Lock()

	if stepID != len(s.clicks) {
		current := len(s.clicks)
		s.mu.Unlock()
		s.logger.Debug("discarding stale mask",
			"step_id", stepID,
			"current_step", current,
		)
		s.emit(Event{Type: EventStaleMaskDiscarded, StepID: stepID})
		return nil, nil
	}

	contours, err := s.extractor.Extract(grid)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	path := s.builder.Build(contours, s.profile, transform.SpaceMaskGrid, transform.SpaceCanvas)
	s.grid = grid
	s.path = path
	s.history.Add(stepID, stepResult{grid: grid, path: path})
	s.mu.Unlock()

	s.emit(Event{Type: EventPathUpdated, StepID: stepID, Path: path})
	return path, nil
}

// emit delivers an event to all listeners outside the session lock
func (s *Session) emit(e Event) {
	s.mu.RLock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}
