// Package selection keeps track of the active layer and mirrors its style
// into the side panel controls.
package selection

import (
	"osonaiAPI/internal/scene"
)

// Panel is the state of the style panel controls.
type Panel struct {
	Bound      bool             `json:"bound"`
	LayerID    string           `json:"layerId,omitempty"`
	Kind       scene.LayerKind  `json:"kind,omitempty"`
	FontFamily scene.FontFamily `json:"fontFamily,omitempty"`
	FontSize   float64          `json:"fontSize,omitempty"`
	Color      string           `json:"color,omitempty"`
	TextAlign  scene.TextAlign  `json:"textAlign,omitempty"`
	Shadow     bool             `json:"shadow"`
}

// Coordinator binds the panel to the scene's selected layer.
type Coordinator struct {
	scene *scene.Scene
}

// New creates a Coordinator over s.
func New(s *scene.Scene) *Coordinator {
	return &Coordinator{scene: s}
}

// Select makes id the only active layer and returns the refreshed panel.
// Selecting the active layer again is a no-op.
func (c *Coordinator) Select(id string) (Panel, error) {
	if err := c.scene.Select(id); err != nil {
		return c.Panel(), err
	}
	return c.Panel(), nil
}

// Deselect clears the selection. The panel stays but is unbound.
func (c *Coordinator) Deselect() Panel {
	c.scene.ClearSelection()
	return c.Panel()
}

// ClickOutside handles a click that hit no layer. Clicks landing on the
// style panel keep the binding.
func (c *Coordinator) ClickOutside(insidePanel bool) Panel {
	if insidePanel {
		return c.Panel()
	}
	return c.Deselect()
}

// Panel reads the active layer's style straight from the model.
func (c *Coordinator) Panel() Panel {
	id := c.scene.Selected()
	if id == "" {
		return Panel{}
	}
	role, err := scene.ParseRole(id)
	if err != nil {
		return Panel{Bound: true, LayerID: id, Kind: scene.KindImage}
	}
	l, _ := c.scene.TextLayer(role)
	return Panel{
		Bound:      true,
		LayerID:    id,
		Kind:       scene.KindText,
		FontFamily: l.Style.FontFamily,
		FontSize:   l.Style.FontSizePx,
		Color:      l.Style.Color,
		TextAlign:  l.Style.TextAlign,
		Shadow:     l.Style.Shadow,
	}
}

// Apply pushes a panel edit onto the selected text layer. It reports false
// without error when there is nothing stylable selected.
func (c *Coordinator) Apply(prop scene.StyleProperty, value string) (Panel, bool, error) {
	role, err := scene.ParseRole(c.scene.Selected())
	if err != nil {
		return c.Panel(), false, nil
	}
	if err := c.scene.SetStyle(role, prop, value); err != nil {
		return c.Panel(), false, err
	}
	return c.Panel(), true, nil
}
