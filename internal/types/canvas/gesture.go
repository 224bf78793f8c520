package canvas

import (
	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/interaction"
	"osonaiAPI/internal/selection"
)

// Gesture event types sent by the browser.
const (
	EventPointerDown  = "pointerdown"
	EventPointerMove  = "pointermove"
	EventPointerUp    = "pointerup"
	EventCancel       = "cancel"
	EventClick        = "click"
	EventClickOutside = "clickoutside"
	EventFocus        = "focus"
	EventBlur         = "blur"
)

// Reply types sent back.
const (
	ReplyFeedback = "feedback"
	ReplyPanel    = "panel"
	ReplyError    = "error"
)

// GestureEvent is one pointer or focus event. X and Y are document
// coordinates; the scene viewport origin maps them onto the canvas.
type GestureEvent struct {
	Type        string  `json:"type"`
	LayerID     string  `json:"layerId,omitempty"`
	Handle      string  `json:"handle,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	InsidePanel bool    `json:"insidePanel,omitempty"`
}

func (e GestureEvent) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

type GestureReply struct {
	Type     string                `json:"type"`
	Feedback *interaction.Feedback `json:"feedback,omitempty"`
	Panel    *selection.Panel      `json:"panel,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func FeedbackReply(fb interaction.Feedback) GestureReply {
	return GestureReply{Type: ReplyFeedback, Feedback: &fb}
}

func PanelReply(p selection.Panel) GestureReply {
	return GestureReply{Type: ReplyPanel, Panel: &p}
}

func ErrorReply(err error) GestureReply {
	return GestureReply{Type: ReplyError, Error: err.Error()}
}
