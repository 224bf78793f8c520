package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osonaiAPI/internal/generation"
	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/render"
	"osonaiAPI/internal/scene"
	"osonaiAPI/internal/types/canvas"
	"osonaiAPI/services"
)

type stubProvider struct {
	generation.Disabled
	image generation.Image
}

func (p stubProvider) GenerateImage(context.Context, string, scene.AspectRatio) (generation.Image, error) {
	return p.image, nil
}

func newTestRouter(t *testing.T, provider generation.Provider) *mux.Router {
	t.Helper()
	manager := services.NewSceneManager()
	sceneService := services.NewSceneService(manager, 0, 0)
	exportService := services.NewExportService(manager, render.NewRenderer(nil, nil))
	generationService := services.NewGenerationService(provider, time.Second, manager)

	h := Handlers{
		Scenes:     NewSceneHandler(sceneService, exportService, 0),
		Generation: NewGenerationHandler(generationService, time.Second),
		Gestures:   NewGestureHandler(manager),
		Proxy:      NewProxyHandler(imagesource.NewDirectFetcher(time.Second)),
	}
	r := mux.NewRouter()
	RegisterGestureRoutes(r, h)
	RegisterRoutes(r, h)
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, r http.Handler, path string, data []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="upload"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	part.Write(data)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func TestEditorFlow(t *testing.T) {
	r := newTestRouter(t, generation.Disabled{})

	t.Log("Step 1: create a 4:5 scene")
	rec := do(t, r, http.MethodPost, "/api/v1/scenes", map[string]string{"aspectRatio": "4:5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decode[canvas.SceneView](t, rec)
	base := "/api/v1/scenes/" + view.ID

	t.Log("Step 2: set the title")
	rec = do(t, r, http.MethodPut, base+"/text/title", map[string]string{"text": "Hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", decode[canvas.SceneView](t, rec).Items[0].Content)

	t.Log("Step 3: add and remove an overlay")
	rec = upload(t, r, base+"/overlays", pngBytes(t), "image/png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[struct {
		OverlayID string           `json:"overlayId"`
		Scene     canvas.SceneView `json:"scene"`
	}](t, rec)
	assert.Len(t, added.Scene.Items, 3)

	rec = do(t, r, http.MethodDelete, base+"/overlays/"+added.OverlayID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[canvas.SceneView](t, rec).Items, 2)

	t.Log("Step 4: select the title and restyle it")
	rec = do(t, r, http.MethodPost, base+"/selection", map[string]string{"layerId": "title"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPut, base+"/style", map[string]string{"property": "color", "value": "#123"})
	require.Equal(t, http.StatusOK, rec.Code)
	styled := decode[struct {
		Applied bool `json:"applied"`
		Panel   struct {
			Color string `json:"color"`
		} `json:"panel"`
	}](t, rec)
	assert.True(t, styled.Applied)
	assert.Equal(t, "#112233", styled.Panel.Color)

	t.Log("Step 5: export")
	rec = do(t, r, http.MethodGet, base+"/export?format=png", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "post.png")
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1080, 1350), img.Bounds().Size())

	t.Log("Step 6: generate with no provider configured")
	rec = do(t, r, http.MethodPost, base+"/generate", map[string]string{"prompt": "a peaceful walk in the forest"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[services.GenerationResult](t, rec)
	assert.Equal(t, "Into the Wild", res.Scene.Items[0].Content)
	assert.Len(t, res.Notices, 2)

	t.Log("Step 7: read the caption")
	rec = do(t, r, http.MethodGet, base+"/caption", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	caption := decode[services.Caption](t, rec)
	assert.True(t, strings.HasPrefix(caption.Clipboard, caption.Caption+"\n\n#"))

	t.Log("Step 8: delete the scene")
	rec = do(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSceneErrors(t *testing.T) {
	r := newTestRouter(t, generation.Disabled{})

	rec := do(t, r, http.MethodPost, "/api/v1/scenes", map[string]string{"aspectRatio": "3:2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/scenes", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/scenes/" + decode[canvas.SceneView](t, rec).ID

	rec = upload(t, r, base+"/overlays", []byte("hello"), "text/plain")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, base+"/overlays", strings.NewReader("--x\r\nnot a part"))
	req.Header.Set("Content-Type", "multipart/form-data")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid multipart form", decode[map[string]string](t, rec)["error"])

	rec = upload(t, r, base+"/background", make([]byte, 12<<20), "image/png")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large. Maximum size is 10MB.", decode[map[string]string](t, rec)["error"])

	rec = do(t, r, http.MethodPost, base+"/overlays/title/front", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, base+"/export?format=gif", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPut, base+"/style", map[string]string{"property": "fontSize", "value": "huge"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, base+"/regenerate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No prompt available. Please generate a post first.", decode[map[string]string](t, rec)["error"])

	rec = do(t, r, http.MethodPut, base+"/layers/nope/frame", map[string]float64{"left": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", decode[map[string]string](t, rec)["error"])
}

func TestDirectGenerationEndpoints(t *testing.T) {
	r := newTestRouter(t, stubProvider{image: generation.Image{URL: "https://img.example.com/1.png", RevisedPrompt: "rp"}})

	rec := do(t, r, http.MethodPost, "/api/generate-image", map[string]string{"prompt": "lake", "aspectRatio": "16:9"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://img.example.com/1.png", body["imageUrl"])

	rec = do(t, r, http.MethodPost, "/api/generate-image", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/generate-text", map[string]string{"prompt": "lake"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	failed := decode[map[string]string](t, rec)
	assert.Equal(t, "Failed to generate text content", failed["error"])
	assert.NotEmpty(t, failed["details"])

	rec = do(t, r, http.MethodPost, "/api/regenerate-image", map[string]string{"prompt": "lake"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, generation.Disabled{})
	rec := do(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "osonai", body["service"])
	_, err := time.Parse(time.RFC3339Nano, body["timestamp"])
	assert.NoError(t, err)
}

func TestProxyImage(t *testing.T) {
	data := pngBytes(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer upstream.Close()
	r := newTestRouter(t, generation.Disabled{})

	rec := do(t, r, http.MethodGet, "/api/proxy-image?url="+upstream.URL+"/a.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, data, rec.Body.Bytes())

	rec = do(t, r, http.MethodGet, "/api/proxy-image", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/proxy-image?url=file:///etc/passwd", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGestureStream(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, generation.Disabled{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/scenes", "application/json", strings.NewReader(`{"aspectRatio":"1:1"}`))
	require.NoError(t, err)
	var view canvas.SceneView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/scenes/"
	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"missing/gestures", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+view.ID+"/gestures", nil)
	require.NoError(t, err)
	defer conn.Close()

	title := view.Items[0]
	require.NoError(t, conn.WriteJSON(canvas.GestureEvent{Type: canvas.EventPointerDown, LayerID: "title", X: title.PosX + 1, Y: title.PosY + 1}))
	require.NoError(t, conn.WriteJSON(canvas.GestureEvent{Type: canvas.EventPointerMove, X: title.PosX + 10001, Y: title.PosY + 1}))
	require.NoError(t, conn.WriteJSON(canvas.GestureEvent{Type: canvas.EventPointerUp}))

	var replies []canvas.GestureReply
	for range 3 {
		var reply canvas.GestureReply
		require.NoError(t, conn.ReadJSON(&reply))
		replies = append(replies, reply)
	}
	require.NotNil(t, replies[1].Feedback.Frame)
	assert.Equal(t, view.Viewport.Width-title.Width, replies[1].Feedback.Frame.Left)
	assert.False(t, replies[2].Feedback.Active)

	resp, err = http.Get(srv.URL + "/api/v1/scenes/" + view.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, view.Viewport.Width-view.Items[0].Width, view.Items[0].PosX)
}
