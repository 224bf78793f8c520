// Package interaction turns pointer events into drag and resize gestures
// against a scene, emitting alignment guides and a measurement readout for
// the layer being manipulated.
package interaction

import (
	"errors"
	"fmt"

	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/scene"
	"osonaiAPI/internal/selection"
)

var ErrGestureActive = errors.New("a gesture is already in progress")

// gesture is the transient state of one press-move-release sequence.
// A nil gesture means the controller is idle.
type gesture interface {
	layer() string
}

type dragGesture struct {
	layerID string
	offset  geometry.Point
}

func (g dragGesture) layer() string { return g.layerID }

type resizeGesture struct {
	layerID string
	handle  geometry.Handle
	start   geometry.Point
	initial geometry.Rect
	limits  geometry.SizeLimits
}

func (g resizeGesture) layer() string { return g.layerID }

// Feedback is what the client draws while a gesture runs. Guides and the
// measurement are empty once the gesture ends.
type Feedback struct {
	LayerID     string                `json:"layerId,omitempty"`
	Gesture     string                `json:"gesture,omitempty"`
	Frame       *geometry.Rect        `json:"frame,omitempty"`
	Guides      []geometry.Guide      `json:"guides"`
	Measurement *geometry.Measurement `json:"measurement,omitempty"`
	Active      bool                  `json:"active"`
	Panel       *selection.Panel      `json:"panel,omitempty"`
}

// Controller drives one scene. It is not safe for concurrent use; pointer
// events must be fed in the order they were received.
type Controller struct {
	scene *scene.Scene
	coord *selection.Coordinator
	state gesture

	// editing is the text layer currently focused for in-place editing.
	editing string

	Tolerance float64
}

func New(s *scene.Scene, coord *selection.Coordinator) *Controller {
	return &Controller{scene: s, coord: coord, Tolerance: geometry.DefaultSnapTolerance}
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool {
	return c.state != nil
}

// Editing returns the text layer focused for editing, or "".
func (c *Controller) Editing() string {
	return c.editing
}

// PointerDown starts a gesture. An empty handle grabs the layer body and
// starts a drag; a handle name starts a resize and selects the layer. A body
// press on the text layer being edited starts nothing.
func (c *Controller) PointerDown(layerID, handle string, p geometry.Point) (Feedback, error) {
	if c.state != nil {
		return Feedback{}, ErrGestureActive
	}
	frame, limits, err := c.scene.Frame(layerID)
	if err != nil {
		return Feedback{}, err
	}

	if handle != "" {
		h, err := geometry.ParseHandle(handle)
		if err != nil {
			return Feedback{}, err
		}
		panel, err := c.coord.Select(layerID)
		if err != nil {
			return Feedback{}, err
		}
		c.state = resizeGesture{layerID: layerID, handle: h, start: p, initial: frame, limits: limits}
		fb := c.feedback(layerID, frame)
		fb.Panel = &panel
		return fb, nil
	}

	if c.editing == layerID {
		return Feedback{LayerID: layerID, Frame: &frame, Guides: []geometry.Guide{}}, nil
	}

	origin := c.scene.Viewport.Origin
	c.state = dragGesture{
		layerID: layerID,
		offset:  p.Sub(origin).Sub(geometry.Point{X: frame.Left, Y: frame.Top}),
	}
	return c.feedback(layerID, frame), nil
}

// PointerMove advances the active gesture. When idle it does nothing.
func (c *Controller) PointerMove(p geometry.Point) (Feedback, error) {
	var (
		frame geometry.Rect
		err   error
	)
	switch g := c.state.(type) {
	case nil:
		return Feedback{Guides: []geometry.Guide{}}, nil
	case dragGesture:
		pos := p.Sub(c.scene.Viewport.Origin).Sub(g.offset)
		frame, err = c.scene.SetPosition(g.layerID, geometry.Position{Left: pos.X, Top: pos.Y})
	case resizeGesture:
		r := geometry.ApplyResize(g.handle, p.Sub(g.start), g.initial, g.limits, c.scene.Canvas())
		frame, err = c.scene.SetFrame(g.layerID, r)
	}
	if err != nil {
		// the layer went away under the gesture
		id := c.state.layer()
		c.state = nil
		return Feedback{LayerID: id, Guides: []geometry.Guide{}}, fmt.Errorf("gesture on %s ended: %w", id, err)
	}
	return c.feedback(c.state.layer(), frame), nil
}

// PointerUp ends the active gesture wherever the pointer was released.
func (c *Controller) PointerUp() Feedback {
	return c.end()
}

// Cancel ends the active gesture programmatically. The layer keeps the box
// written by the last move.
func (c *Controller) Cancel() Feedback {
	return c.end()
}

func (c *Controller) end() Feedback {
	if c.state == nil {
		return Feedback{Guides: []geometry.Guide{}}
	}
	id := c.state.layer()
	c.state = nil
	fb := Feedback{LayerID: id, Guides: []geometry.Guide{}}
	if frame, _, err := c.scene.Frame(id); err == nil {
		fb.Frame = &frame
	}
	return fb
}

// Click selects a layer exclusively.
func (c *Controller) Click(layerID string) (selection.Panel, error) {
	return c.coord.Select(layerID)
}

// ClickOutside handles a click that hit no layer.
func (c *Controller) ClickOutside(insidePanel bool) selection.Panel {
	return c.coord.ClickOutside(insidePanel)
}

// Focus marks a text layer as being edited in place.
func (c *Controller) Focus(layerID string) error {
	if _, err := scene.ParseRole(layerID); err != nil {
		return err
	}
	c.editing = layerID
	return nil
}

// Blur ends in-place editing.
func (c *Controller) Blur() {
	c.editing = ""
}

func (c *Controller) feedback(layerID string, frame geometry.Rect) Feedback {
	canvas := c.scene.Canvas()
	m := geometry.Measure(frame, canvas)
	kind := "drag"
	if _, ok := c.state.(resizeGesture); ok {
		kind = "resize"
	}
	return Feedback{
		LayerID:     layerID,
		Gesture:     kind,
		Frame:       &frame,
		Guides:      geometry.DetectSnap(frame, canvas, c.Tolerance),
		Measurement: &m,
		Active:      true,
	}
}
