package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/interaction"
	"osonaiAPI/internal/scene"
	"osonaiAPI/internal/selection"
	"osonaiAPI/internal/types/canvas"
)

var (
	ErrSessionNotFound      = errors.New("scene not found")
	ErrGenerationInProgress = errors.New("a generation request is already in progress for this scene")
)

// EditorSession owns one scene and the controllers bound to it. Every
// access goes through its mutex.
type EditorSession struct {
	ID string

	mu         sync.Mutex
	scene      *scene.Scene
	coord      *selection.Coordinator
	controller *interaction.Controller

	generating atomic.Bool
	lastSeen   atomic.Int64
}

func newEditorSession(id string, aspect scene.AspectRatio, vp *scene.Viewport) *EditorSession {
	s := scene.New(id, aspect, vp)
	coord := selection.New(s)
	sess := &EditorSession{
		ID:         id,
		scene:      s,
		coord:      coord,
		controller: interaction.New(s, coord),
	}
	sess.touch()
	return sess
}

func (s *EditorSession) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen is the time of the last access.
func (s *EditorSession) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Do runs fn with exclusive access to the scene.
func (s *EditorSession) Do(fn func(sc *scene.Scene) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return fn(s.scene)
}

// View returns the client projection of the scene.
func (s *EditorSession) View() canvas.SceneView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.viewLocked()
}

func (s *EditorSession) viewLocked() canvas.SceneView {
	v := canvas.FromScene(s.scene)
	v.Generating = s.generating.Load()
	return v
}

// Snapshot returns a deep copy safe to read without the lock.
func (s *EditorSession) Snapshot() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.scene.Clone()
}

// beginGeneration claims the in-flight slot. The returned func releases it.
func (s *EditorSession) beginGeneration() (func(), error) {
	if !s.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}
	return func() { s.generating.Store(false) }, nil
}

// SceneManager holds every editor session in memory.
type SceneManager struct {
	sessions map[string]*EditorSession
	mu       sync.RWMutex
}

func NewSceneManager() *SceneManager {
	return &SceneManager{
		sessions: make(map[string]*EditorSession),
	}
}

func (m *SceneManager) Create(aspect scene.AspectRatio, vp *scene.Viewport) *EditorSession {
	sess := newEditorSession(uuid.New().String(), aspect, vp)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	n := len(m.sessions)
	m.mu.Unlock()

	activeSessions.Set(float64(n))
	log.Printf("[Session %s] created (%s). Count: %d", sess.ID, aspect, n)
	return sess
}

func (m *SceneManager) Get(id string) (*EditorSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (m *SceneManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	activeSessions.Set(float64(len(m.sessions)))
	log.Printf("[Session %s] deleted", id)
	return nil
}

func (m *SceneManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepIdle drops sessions not touched within ttl of now and reports how
// many went away. Sessions with a generation in flight are kept.
func (m *SceneManager) SweepIdle(ttl time.Duration, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.generating.Load() {
			continue
		}
		if now.Sub(sess.LastSeen()) > ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	return removed
}

// SceneService is the scene mutation API used by the HTTP handlers.
type SceneService struct {
	manager         *SceneManager
	uploadMaxBytes  int64
	uploadMaxPixels int
}

func NewSceneService(manager *SceneManager, uploadMaxBytes int64, uploadMaxPixels int) *SceneService {
	return &SceneService{manager: manager, uploadMaxBytes: uploadMaxBytes, uploadMaxPixels: uploadMaxPixels}
}

func (s *SceneService) Manager() *SceneManager {
	return s.manager
}

type CreateSceneRequest struct {
	AspectRatio string               `json:"aspectRatio"`
	Viewport    *canvas.ViewportView `json:"viewport,omitempty"`
}

func (s *SceneService) Create(req CreateSceneRequest) (canvas.SceneView, error) {
	aspect, err := scene.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		return canvas.SceneView{}, err
	}
	var vp *scene.Viewport
	if req.Viewport != nil {
		v := toViewport(*req.Viewport)
		if !v.Valid() {
			return canvas.SceneView{}, scene.ErrInvalidViewport
		}
		vp = &v
	}
	return s.manager.Create(aspect, vp).View(), nil
}

func (s *SceneService) Get(id string) (canvas.SceneView, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return canvas.SceneView{}, err
	}
	return sess.View(), nil
}

func (s *SceneService) Delete(id string) error {
	return s.manager.Delete(id)
}

// mutate runs fn under the session lock and returns the updated view.
func (s *SceneService) mutate(id string, fn func(sess *EditorSession, sc *scene.Scene) error) (canvas.SceneView, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return canvas.SceneView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	if err := fn(sess, sess.scene); err != nil {
		return canvas.SceneView{}, err
	}
	return sess.viewLocked(), nil
}

func (s *SceneService) Reset(id string) (canvas.SceneView, error) {
	return s.mutate(id, func(sess *EditorSession, sc *scene.Scene) error {
		sess.controller.Cancel()
		sess.controller.Blur()
		sc.Reset()
		return nil
	})
}

func (s *SceneService) SetAspectRatio(id, value string) (canvas.SceneView, error) {
	aspect, err := scene.ParseAspectRatio(value)
	if err != nil {
		return canvas.SceneView{}, err
	}
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		return sc.SetAspectRatio(aspect)
	})
}

func (s *SceneService) SetViewport(id string, v canvas.ViewportView) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		return sc.SetViewport(toViewport(v))
	})
}

func (s *SceneService) SetText(id, role, text string) (canvas.SceneView, error) {
	r, err := scene.ParseRole(role)
	if err != nil {
		return canvas.SceneView{}, err
	}
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		return sc.SetText(r, text)
	})
}

// FrameRequest is a direct box write. Nil fields keep the current value.
type FrameRequest struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func (s *SceneService) SetFrame(id, layerID string, req FrameRequest) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		frame, _, err := sc.Frame(layerID)
		if err != nil {
			return err
		}
		if req.Left != nil {
			frame.Left = *req.Left
		}
		if req.Top != nil {
			frame.Top = *req.Top
		}
		if req.Width != nil {
			frame.Width = *req.Width
		}
		if req.Height != nil {
			frame.Height = *req.Height
		}
		_, err = sc.SetFrame(layerID, frame)
		return err
	})
}

// AddOverlay validates an upload and adds it above every layer. Nothing is
// added when the upload is rejected.
func (s *SceneService) AddOverlay(id string, r io.Reader, contentType string) (canvas.SceneView, string, error) {
	src, err := imagesource.ReadUpload(r, contentType, s.uploadMaxBytes, s.uploadMaxPixels)
	if err != nil {
		return canvas.SceneView{}, "", err
	}
	var overlayID string
	view, err := s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		overlayID = sc.AddImageOverlay(src).ID
		return nil
	})
	return view, overlayID, err
}

func (s *SceneService) RemoveOverlay(id, overlayID string) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		return sc.RemoveImageOverlay(overlayID)
	})
}

// BringToFront lifts an overlay above the others. Text layers are refused:
// export always draws them beneath the overlays.
func (s *SceneService) BringToFront(id, overlayID string) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		if _, err := sc.Overlay(overlayID); err != nil {
			return err
		}
		_, err := sc.ReorderToFront(overlayID)
		return err
	})
}

func (s *SceneService) SetOverlayHidden(id, overlayID string, hidden bool) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		return sc.SetOverlayHidden(overlayID, hidden)
	})
}

func (s *SceneService) SetBackgroundUpload(id string, r io.Reader, contentType string) (canvas.SceneView, error) {
	src, err := imagesource.ReadUpload(r, contentType, s.uploadMaxBytes, s.uploadMaxPixels)
	if err != nil {
		return canvas.SceneView{}, err
	}
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		sc.SetBackground(src)
		return nil
	})
}

func (s *SceneService) UpdateBackground(id string, settings scene.BackgroundSettings) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		return sc.UpdateBackground(settings)
	})
}

func (s *SceneService) ClearBackground(id string) (canvas.SceneView, error) {
	return s.mutate(id, func(_ *EditorSession, sc *scene.Scene) error {
		sc.ClearBackground()
		return nil
	})
}

func (s *SceneService) Panel(id string) (selection.Panel, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return selection.Panel{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	return sess.coord.Panel(), nil
}

func (s *SceneService) Select(id, layerID string) (selection.Panel, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return selection.Panel{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	return sess.coord.Select(layerID)
}

func (s *SceneService) Deselect(id string) (selection.Panel, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return selection.Panel{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	return sess.coord.Deselect(), nil
}

// ApplyStyle pushes a panel edit onto the selected layer. applied is false
// when nothing stylable is selected.
func (s *SceneService) ApplyStyle(id string, prop scene.StyleProperty, value string) (panel selection.Panel, applied bool, err error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return selection.Panel{}, false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	return sess.coord.Apply(prop, value)
}

func toViewport(v canvas.ViewportView) scene.Viewport {
	return scene.Viewport{
		Origin: geometry.Point{X: v.X, Y: v.Y},
		Size:   geometry.Size{Width: v.Width, Height: v.Height},
	}
}
