// Package scene is the in-memory model of a post being composed: the
// background, the title and subtitle text layers and the image overlays.
//
// Every position and size write goes through the geometry package so the
// layers always stay inside the canvas. A Scene is not safe for concurrent
// use; its owner serializes access.
package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/imagesource"
)

var (
	ErrLayerNotFound      = errors.New("layer not found")
	ErrInvalidStyle       = errors.New("invalid style value")
	ErrInvalidAspectRatio = errors.New("aspect ratio must be one of 1:1, 4:5, 16:9")
	ErrInvalidBackground  = errors.New("invalid background settings")
	ErrInvalidViewport    = errors.New("viewport must have a positive width and height")
)

const (
	DefaultTitle    = "Your Title Here"
	DefaultSubtitle = "Your subtitle here"
)

// Scene is the root aggregate of one editing session.
type Scene struct {
	ID          string
	AspectRatio AspectRatio
	Viewport    Viewport
	Background  *Background
	Title       *TextLayer
	Subtitle    *TextLayer
	Overlays    []*ImageOverlay
	Prompt      string
	Caption     string
	Hashtags    []string

	selected string
}

// New creates a default scene. A nil viewport selects the default for the ratio.
func New(id string, aspect AspectRatio, vp *Viewport) *Scene {
	s := &Scene{ID: id}
	s.reset(aspect, vp)
	return s
}

// Reset turns the scene back into a blank post, keeping its id and viewport.
func (s *Scene) Reset() {
	vp := s.Viewport
	s.reset(s.AspectRatio, &vp)
}

func (s *Scene) reset(aspect AspectRatio, vp *Viewport) {
	if aspect == "" {
		aspect = AspectSquare
	}
	s.AspectRatio = aspect
	if vp != nil && vp.Valid() {
		s.Viewport = *vp
	} else {
		s.Viewport = DefaultViewport(aspect)
	}

	s.Background = nil
	s.Overlays = nil
	s.Prompt = ""
	s.Caption = ""
	s.Hashtags = nil
	s.selected = ""

	cw, ch := s.Viewport.Size.Width, s.Viewport.Size.Height
	s.Title = &TextLayer{
		Role:   RoleTitle,
		Text:   DefaultTitle,
		Style:  TextStyle{FontFamily: FontBold, FontSizePx: 48, Color: "#ffffff", TextAlign: AlignCenter, Shadow: true},
		Frame:  geometry.NewRect(cw*0.1, ch*0.35, cw*0.8, 80),
		ZIndex: 10,
	}
	s.Subtitle = &TextLayer{
		Role:   RoleSubtitle,
		Text:   DefaultSubtitle,
		Style:  TextStyle{FontFamily: FontModern, FontSizePx: 24, Color: "#ffffff", TextAlign: AlignCenter, Shadow: true},
		Frame:  geometry.NewRect(cw*0.1, ch*0.35+90, cw*0.8, 50),
		ZIndex: 11,
	}
	s.Title.Frame = geometry.ConstrainRect(s.Title.Frame, TextLimits, s.Canvas())
	s.Subtitle.Frame = geometry.ConstrainRect(s.Subtitle.Frame, TextLimits, s.Canvas())
}

// Canvas returns the on-screen canvas size every layer is constrained to.
func (s *Scene) Canvas() geometry.Size {
	return s.Viewport.Size
}

// SetAspectRatio switches the post shape. The canvas keeps its width and
// takes the new ratio's height until the client reports the real viewport.
func (s *Scene) SetAspectRatio(a AspectRatio) error {
	if _, ok := exportSizes[a]; !ok {
		return ErrInvalidAspectRatio
	}
	s.AspectRatio = a
	vp := s.Viewport
	vp.Size = a.FitWidth(vp.Size.Width)
	return s.SetViewport(vp)
}

// SetViewport records the on-screen canvas and re-clamps every layer into it.
func (s *Scene) SetViewport(vp Viewport) error {
	if !vp.Valid() {
		return ErrInvalidViewport
	}
	s.Viewport = vp
	canvas := s.Canvas()
	for _, l := range s.TextLayers() {
		l.Frame = geometry.ConstrainRect(l.Frame, TextLimits, canvas)
	}
	for _, o := range s.Overlays {
		o.Frame = geometry.ConstrainRect(o.Frame, OverlayLimits, canvas)
	}
	return nil
}

// TextLayers returns title then subtitle.
func (s *Scene) TextLayers() []*TextLayer {
	return []*TextLayer{s.Title, s.Subtitle}
}

// TextLayer looks a text layer up by role.
func (s *Scene) TextLayer(role Role) (*TextLayer, error) {
	switch role {
	case RoleTitle:
		return s.Title, nil
	case RoleSubtitle:
		return s.Subtitle, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, role)
}

// Overlay looks an image overlay up by id.
func (s *Scene) Overlay(id string) (*ImageOverlay, error) {
	for _, o := range s.Overlays {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
}

// Kind reports what kind of layer id names.
func (s *Scene) Kind(id string) (LayerKind, error) {
	if _, err := ParseRole(id); err == nil {
		return KindText, nil
	}
	if _, err := s.Overlay(id); err != nil {
		return "", err
	}
	return KindImage, nil
}

// Frame returns a layer's box and the size limits that apply to it.
func (s *Scene) Frame(id string) (geometry.Rect, geometry.SizeLimits, error) {
	if role, err := ParseRole(id); err == nil {
		l, _ := s.TextLayer(role)
		return l.Frame, TextLimits, nil
	}
	o, err := s.Overlay(id)
	if err != nil {
		return geometry.Rect{}, geometry.SizeLimits{}, err
	}
	return o.Frame, OverlayLimits, nil
}

// SetPosition moves a layer, clamped inside the canvas.
func (s *Scene) SetPosition(id string, pos geometry.Position) (geometry.Rect, error) {
	frame, _, err := s.Frame(id)
	if err != nil {
		return geometry.Rect{}, err
	}
	frame.Position = geometry.ConstrainPosition(pos, frame.Size, s.Canvas())
	return frame, s.writeFrame(id, frame)
}

// SetSize resizes a layer in place, floored, capped and clamped.
func (s *Scene) SetSize(id string, size geometry.Size) (geometry.Rect, error) {
	frame, _, err := s.Frame(id)
	if err != nil {
		return geometry.Rect{}, err
	}
	frame.Size = size
	return s.SetFrame(id, frame)
}

// SetFrame writes a whole box, enforcing the layer's limits and the canvas bounds.
func (s *Scene) SetFrame(id string, r geometry.Rect) (geometry.Rect, error) {
	_, limits, err := s.Frame(id)
	if err != nil {
		return geometry.Rect{}, err
	}
	r = geometry.ConstrainRect(r, limits, s.Canvas())
	return r, s.writeFrame(id, r)
}

func (s *Scene) writeFrame(id string, r geometry.Rect) error {
	if role, err := ParseRole(id); err == nil {
		l, _ := s.TextLayer(role)
		l.Frame = r
		return nil
	}
	o, err := s.Overlay(id)
	if err != nil {
		return err
	}
	o.Frame = r
	return nil
}

// SetText replaces a text layer's content.
func (s *Scene) SetText(role Role, text string) error {
	l, err := s.TextLayer(role)
	if err != nil {
		return err
	}
	l.Text = text
	return nil
}

// SetStyle applies one style property to a text layer.
func (s *Scene) SetStyle(role Role, prop StyleProperty, value string) error {
	l, err := s.TextLayer(role)
	if err != nil {
		return err
	}
	return l.Style.Apply(prop, value)
}

// AddImageOverlay adds an overlay above every other layer at the initial box.
func (s *Scene) AddImageOverlay(src imagesource.Source) *ImageOverlay {
	o := &ImageOverlay{
		ID:     uuid.New().String(),
		Source: src,
		Frame:  geometry.ConstrainRect(overlayInitialFrame, OverlayLimits, s.Canvas()),
		ZIndex: s.maxZ() + 1,
	}
	s.Overlays = append(s.Overlays, o)
	return o
}

// RemoveImageOverlay deletes an overlay, dropping the selection if it pointed at it.
func (s *Scene) RemoveImageOverlay(id string) error {
	for i, o := range s.Overlays {
		if o.ID == id {
			s.Overlays = append(s.Overlays[:i], s.Overlays[i+1:]...)
			if s.selected == id {
				s.selected = ""
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
}

// SetOverlayHidden shows or hides an overlay.
func (s *Scene) SetOverlayHidden(id string, hidden bool) error {
	o, err := s.Overlay(id)
	if err != nil {
		return err
	}
	o.Hidden = hidden
	return nil
}

// ReorderToFront lifts a layer above the current maximum z-index.
func (s *Scene) ReorderToFront(id string) (int, error) {
	z := s.maxZ() + 1
	if role, err := ParseRole(id); err == nil {
		l, _ := s.TextLayer(role)
		if l.ZIndex != z-1 || s.zCount(l.ZIndex) > 1 {
			l.ZIndex = z
		}
		return l.ZIndex, nil
	}
	o, err := s.Overlay(id)
	if err != nil {
		return 0, err
	}
	if o.ZIndex != z-1 || s.zCount(o.ZIndex) > 1 {
		o.ZIndex = z
	}
	return o.ZIndex, nil
}

// OverlaysByZ returns the overlays in ascending z-order, insertion order breaking ties.
func (s *Scene) OverlaysByZ() []*ImageOverlay {
	out := append([]*ImageOverlay(nil), s.Overlays...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

func (s *Scene) maxZ() int {
	z := 0
	for _, l := range s.TextLayers() {
		if l.ZIndex > z {
			z = l.ZIndex
		}
	}
	for _, o := range s.Overlays {
		if o.ZIndex > z {
			z = o.ZIndex
		}
	}
	return z
}

func (s *Scene) zCount(z int) int {
	n := 0
	for _, l := range s.TextLayers() {
		if l.ZIndex == z {
			n++
		}
	}
	for _, o := range s.Overlays {
		if o.ZIndex == z {
			n++
		}
	}
	return n
}

// SetBackground replaces the background image and resets its mapping.
func (s *Scene) SetBackground(src imagesource.Source) {
	s.Background = newBackground(src)
}

// UpdateBackground edits scale, position or fit of the current background.
func (s *Scene) UpdateBackground(settings BackgroundSettings) error {
	if s.Background == nil {
		return fmt.Errorf("%w: no background image", ErrInvalidBackground)
	}
	return s.Background.apply(settings)
}

// ClearBackground removes the background image.
func (s *Scene) ClearBackground() {
	s.Background = nil
}

// SetContent applies generated or mock text content.
func (s *Scene) SetContent(title, subtitle, caption string, hashtags []string) {
	s.Title.Text = title
	s.Subtitle.Text = subtitle
	s.Caption = caption
	s.Hashtags = append([]string(nil), hashtags...)
}

// Select makes id the only active layer.
func (s *Scene) Select(id string) error {
	if _, err := s.Kind(id); err != nil {
		return err
	}
	s.selected = id
	return nil
}

// ClearSelection leaves no layer active.
func (s *Scene) ClearSelection() {
	s.selected = ""
}

// Selected returns the active layer id, or "" when nothing is selected.
func (s *Scene) Selected() string {
	return s.selected
}

// HashtagLine joins the hashtags with spaces.
func (s *Scene) HashtagLine() string {
	return strings.Join(s.Hashtags, " ")
}

// Clone returns a deep copy safe to read while the original keeps changing.
// Embedded image bytes are shared; they are never mutated.
func (s *Scene) Clone() *Scene {
	c := *s
	title, subtitle := *s.Title, *s.Subtitle
	c.Title, c.Subtitle = &title, &subtitle
	if s.Background != nil {
		bg := *s.Background
		c.Background = &bg
	}
	c.Overlays = make([]*ImageOverlay, 0, len(s.Overlays))
	for _, o := range s.Overlays {
		cp := *o
		c.Overlays = append(c.Overlays, &cp)
	}
	c.Hashtags = append([]string(nil), s.Hashtags...)
	return &c
}
