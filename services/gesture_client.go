package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"osonaiAPI/internal/types/canvas"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// HandleGesture applies one pointer or focus event to the session and
// returns the replies for the client, in order.
func (s *EditorSession) HandleGesture(ev canvas.GestureEvent) []canvas.GestureReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	c := s.controller
	switch ev.Type {
	case canvas.EventPointerDown:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		fb, err := c.PointerDown(ev.LayerID, ev.Handle, ev.Point())
		if err != nil {
			return []canvas.GestureReply{canvas.ErrorReply(err)}
		}
		return []canvas.GestureReply{canvas.FeedbackReply(fb)}

	case canvas.EventPointerMove:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		fb, err := c.PointerMove(ev.Point())
		if err != nil {
			return []canvas.GestureReply{canvas.ErrorReply(err), canvas.FeedbackReply(fb)}
		}
		return []canvas.GestureReply{canvas.FeedbackReply(fb)}

	case canvas.EventPointerUp:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		return []canvas.GestureReply{canvas.FeedbackReply(c.PointerUp())}

	case canvas.EventCancel:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		return []canvas.GestureReply{canvas.FeedbackReply(c.Cancel())}

	case canvas.EventClick:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		panel, err := c.Click(ev.LayerID)
		if err != nil {
			return []canvas.GestureReply{canvas.ErrorReply(err)}
		}
		return []canvas.GestureReply{canvas.PanelReply(panel)}

	case canvas.EventClickOutside:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		return []canvas.GestureReply{canvas.PanelReply(c.ClickOutside(ev.InsidePanel))}

	case canvas.EventFocus:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		if err := c.Focus(ev.LayerID); err != nil {
			return []canvas.GestureReply{canvas.ErrorReply(err)}
		}
		return []canvas.GestureReply{canvas.PanelReply(s.coord.Panel())}

	case canvas.EventBlur:
		gestureEvents.WithLabelValues(ev.Type).Inc()
		c.Blur()
		return []canvas.GestureReply{canvas.PanelReply(s.coord.Panel())}
	}

	gestureEvents.WithLabelValues("unknown").Inc()
	return []canvas.GestureReply{canvas.ErrorReply(fmt.Errorf("unknown event type %q", ev.Type))}
}

// endStream releases whatever the closed stream left behind. A pointer-up
// that never arrived still ends the gesture.
func (s *EditorSession) endStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controller.Active() {
		s.controller.Cancel()
	}
	s.controller.Blur()
}

// GestureClient sits between one websocket and one editor session.
type GestureClient struct {
	Session *EditorSession
	Conn    *websocket.Conn
	Send    chan []byte
}

func NewGestureClient(sess *EditorSession, conn *websocket.Conn) *GestureClient {
	return &GestureClient{
		Session: sess,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}
}

// ReadPump applies incoming events in the order they arrive. It owns Send
// and closes it on exit, which stops WritePump.
func (c *GestureClient) ReadPump() {
	defer func() {
		c.Session.endStream()
		close(c.Send)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Session %s] gesture stream error: %v", c.Session.ID, err)
			}
			return
		}

		var ev canvas.GestureEvent
		var replies []canvas.GestureReply
		if err := json.Unmarshal(message, &ev); err != nil {
			replies = []canvas.GestureReply{canvas.ErrorReply(fmt.Errorf("malformed event: %w", err))}
		} else {
			replies = c.Session.HandleGesture(ev)
		}

		for _, reply := range replies {
			data, err := json.Marshal(reply)
			if err != nil {
				log.Printf("[Session %s] failed to encode reply: %v", c.Session.ID, err)
				continue
			}
			select {
			case c.Send <- data:
			default:
				log.Printf("[Session %s] gesture client too slow, closing", c.Session.ID)
				return
			}
		}
	}
}

// WritePump handles messages going to the browser.
func (c *GestureClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
