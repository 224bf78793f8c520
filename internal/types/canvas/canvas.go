package canvas

import (
	"fmt"

	"github.com/google/uuid"

	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/scene"
)

type CanvasItemType string

const (
	ItemTypeImage CanvasItemType = "image"
	ItemTypeText  CanvasItemType = "text"
)

// CanvasItem is one positioned layer as the browser draws it.
type CanvasItem struct {
	ID       string         `json:"id"`
	ItemType CanvasItemType `json:"itemType"`
	// Content is the text of a text layer or the image URL of an overlay.
	// Uploaded overlays are sent as data URLs.
	Content string  `json:"content"`
	PosX    float64 `json:"posX"`
	PosY    float64 `json:"posY"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	ZIndex int  `json:"zIndex"`
	Hidden bool `json:"hidden,omitempty"`

	Style *scene.TextStyle `json:"style,omitempty"`
}

type BackgroundView struct {
	URL      string                   `json:"url"`
	Scale    float64                  `json:"scale"`
	Position scene.BackgroundPosition `json:"position"`
	Fit      scene.BackgroundFit      `json:"fit"`
}

type ViewportView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ExportSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SceneView is the whole scene as sent to the client and as read by the
// offline renderer.
type SceneView struct {
	ID          string            `json:"id"`
	AspectRatio scene.AspectRatio `json:"aspectRatio"`
	Viewport    ViewportView      `json:"viewport"`
	ExportSize  ExportSize        `json:"exportSize"`
	Background  *BackgroundView   `json:"background,omitempty"`
	Items       []CanvasItem      `json:"items"`
	Selected    string            `json:"selected,omitempty"`
	Prompt      string            `json:"prompt,omitempty"`
	Caption     string            `json:"caption"`
	Hashtags    []string          `json:"hashtags"`
	Generating  bool              `json:"generating,omitempty"`
}

// FromScene projects s. Items are the title, the subtitle, then overlays in
// ascending z-order.
func FromScene(s *scene.Scene) SceneView {
	w, h := s.AspectRatio.ExportSize()
	view := SceneView{
		ID:          s.ID,
		AspectRatio: s.AspectRatio,
		Viewport: ViewportView{
			X:      s.Viewport.Origin.X,
			Y:      s.Viewport.Origin.Y,
			Width:  s.Viewport.Size.Width,
			Height: s.Viewport.Size.Height,
		},
		ExportSize: ExportSize{Width: w, Height: h},
		Items:      make([]CanvasItem, 0, 2+len(s.Overlays)),
		Selected:   s.Selected(),
		Prompt:     s.Prompt,
		Caption:    s.Caption,
		Hashtags:   append([]string{}, s.Hashtags...),
	}
	if bg := s.Background; bg != nil {
		view.Background = &BackgroundView{URL: bg.Source.DataURL(), Scale: bg.Scale, Position: bg.Position, Fit: bg.Fit}
	}
	for _, l := range s.TextLayers() {
		style := l.Style
		view.Items = append(view.Items, CanvasItem{
			ID:       l.ID(),
			ItemType: ItemTypeText,
			Content:  l.Text,
			PosX:     l.Frame.Left,
			PosY:     l.Frame.Top,
			Width:    l.Frame.Width,
			Height:   l.Frame.Height,
			ZIndex:   l.ZIndex,
			Style:    &style,
		})
	}
	for _, o := range s.OverlaysByZ() {
		view.Items = append(view.Items, CanvasItem{
			ID:       o.ID,
			ItemType: ItemTypeImage,
			Content:  o.Source.DataURL(),
			PosX:     o.Frame.Left,
			PosY:     o.Frame.Top,
			Width:    o.Frame.Width,
			Height:   o.Frame.Height,
			ZIndex:   o.ZIndex,
			Hidden:   o.Hidden,
		})
	}
	return view
}

// ToScene rebuilds a scene from a view. Every box goes back through the
// layer model, so out-of-range values are clamped rather than rejected.
func ToScene(v SceneView) (*scene.Scene, error) {
	aspect, err := scene.ParseAspectRatio(string(v.AspectRatio))
	if err != nil {
		return nil, err
	}
	id := v.ID
	if id == "" {
		id = uuid.New().String()
	}
	var vp *scene.Viewport
	if v.Viewport.Width > 0 && v.Viewport.Height > 0 {
		vp = &scene.Viewport{
			Origin: geometry.Point{X: v.Viewport.X, Y: v.Viewport.Y},
			Size:   geometry.Size{Width: v.Viewport.Width, Height: v.Viewport.Height},
		}
	}
	s := scene.New(id, aspect, vp)
	s.Prompt = v.Prompt
	s.Caption = v.Caption
	s.Hashtags = append([]string(nil), v.Hashtags...)

	if v.Background != nil && v.Background.URL != "" {
		src, err := imagesource.FromURL(v.Background.URL)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		s.SetBackground(src)
		settings := scene.BackgroundSettings{Scale: v.Background.Scale, Position: v.Background.Position, Fit: v.Background.Fit}
		if err := s.UpdateBackground(settings); err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
	}

	for _, item := range v.Items {
		frame := geometry.NewRect(item.PosX, item.PosY, item.Width, item.Height)
		switch item.ItemType {
		case ItemTypeText:
			role, err := scene.ParseRole(item.ID)
			if err != nil {
				return nil, err
			}
			l, _ := s.TextLayer(role)
			l.Text = item.Content
			if item.Style != nil {
				if err := applyStyle(&l.Style, *item.Style); err != nil {
					return nil, fmt.Errorf("%s: %w", item.ID, err)
				}
			}
			if item.ZIndex != 0 {
				l.ZIndex = item.ZIndex
			}
			if _, err := s.SetFrame(l.ID(), frame); err != nil {
				return nil, err
			}
		case ItemTypeImage:
			src, err := imagesource.FromURL(item.Content)
			if err != nil {
				return nil, fmt.Errorf("overlay %s: %w", item.ID, err)
			}
			o := s.AddImageOverlay(src)
			if item.ZIndex != 0 {
				o.ZIndex = item.ZIndex
			}
			o.Hidden = item.Hidden
			if _, err := s.SetFrame(o.ID, frame); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown item type %q", item.ItemType)
		}
	}
	return s, nil
}

// applyStyle validates an incoming style property by property.
func applyStyle(dst *scene.TextStyle, src scene.TextStyle) error {
	next := *dst
	props := []struct {
		prop  scene.StyleProperty
		value string
		set   bool
	}{
		{scene.PropFontFamily, string(src.FontFamily), src.FontFamily != ""},
		{scene.PropFontSize, fmt.Sprint(src.FontSizePx), src.FontSizePx != 0},
		{scene.PropColor, src.Color, src.Color != ""},
		{scene.PropTextAlign, string(src.TextAlign), src.TextAlign != ""},
		{scene.PropTextShadow, fmt.Sprint(src.Shadow), true},
	}
	for _, p := range props {
		if !p.set {
			continue
		}
		if err := next.Apply(p.prop, p.value); err != nil {
			return err
		}
	}
	*dst = next
	return nil
}
