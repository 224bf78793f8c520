package scene

import (
	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/imagesource"
)

// Role identifies one of the two fixed text layers.
type Role string

const (
	RoleTitle    Role = "title"
	RoleSubtitle Role = "subtitle"
)

// ParseRole validates a text layer role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTitle, RoleSubtitle:
		return Role(s), nil
	}
	return "", ErrLayerNotFound
}

// LayerKind tells text layers and image overlays apart.
type LayerKind string

const (
	KindText  LayerKind = "text"
	KindImage LayerKind = "image"
)

var (
	// TextLimits keeps text legible and grabbable.
	TextLimits = geometry.SizeLimits{MinWidth: 100, MinHeight: 40}
	// OverlayLimits lets overlays get small but avoids runaway growth.
	OverlayLimits = geometry.SizeLimits{MinWidth: 20, MinHeight: 20, MaxWidth: 300, MaxHeight: 300}
)

// Overlays are placed here on upload.
var overlayInitialFrame = geometry.NewRect(50, 50, 100, 100)

// TextLayer is the title or subtitle.
type TextLayer struct {
	Role   Role
	Text   string
	Style  TextStyle
	Frame  geometry.Rect
	ZIndex int
}

// ID returns the layer id, which is the role name.
func (l *TextLayer) ID() string { return string(l.Role) }

// ImageOverlay is a user-uploaded image drawn to fill its frame.
type ImageOverlay struct {
	ID     string
	Source imagesource.Source
	Frame  geometry.Rect
	ZIndex int
	Hidden bool
}

// BackgroundFit maps the background image into the canvas rectangle.
type BackgroundFit string

const (
	FitCover   BackgroundFit = "cover"
	FitContain BackgroundFit = "contain"
	FitFill    BackgroundFit = "fill"
	FitNone    BackgroundFit = "none"
)

// BackgroundPosition anchors a background that does not fill the canvas.
type BackgroundPosition string

const (
	PositionCenter BackgroundPosition = "center"
	PositionTop    BackgroundPosition = "top"
	PositionBottom BackgroundPosition = "bottom"
	PositionLeft   BackgroundPosition = "left"
	PositionRight  BackgroundPosition = "right"
)

// Background is the optional image under every layer.
type Background struct {
	Source   imagesource.Source
	Scale    float64
	Position BackgroundPosition
	Fit      BackgroundFit
}

// BackgroundSettings is an edit of the background mapping. Zero values keep
// the current setting.
type BackgroundSettings struct {
	Scale    float64            `json:"scale"`
	Position BackgroundPosition `json:"position"`
	Fit      BackgroundFit      `json:"fit"`
}

func newBackground(src imagesource.Source) *Background {
	return &Background{Source: src, Scale: 100, Position: PositionCenter, Fit: FitFill}
}

func (b *Background) apply(s BackgroundSettings) error {
	next := *b
	if s.Scale != 0 {
		if s.Scale < 10 || s.Scale > 400 {
			return ErrInvalidBackground
		}
		next.Scale = s.Scale
	}
	if s.Position != "" {
		switch s.Position {
		case PositionCenter, PositionTop, PositionBottom, PositionLeft, PositionRight:
			next.Position = s.Position
		default:
			return ErrInvalidBackground
		}
	}
	if s.Fit != "" {
		switch s.Fit {
		case FitCover, FitContain, FitFill, FitNone:
			next.Fit = s.Fit
		default:
			return ErrInvalidBackground
		}
	}
	*b = next
	return nil
}
