package services

import (
	"context"
	"log"

	"osonaiAPI/internal/render"
	"osonaiAPI/internal/scene"
	"osonaiAPI/utils"
)

type ExportService struct {
	manager  *SceneManager
	renderer *render.Renderer
}

func NewExportService(manager *SceneManager, renderer *render.Renderer) *ExportService {
	return &ExportService{manager: manager, renderer: renderer}
}

// Export is one encoded raster.
type Export struct {
	Data     []byte
	Format   render.Format
	Warnings []render.Warning
}

// Export flattens a copy of the scene so edits can continue while the raster
// is being produced.
func (s *ExportService) Export(ctx context.Context, sceneID, format string) (*Export, error) {
	f, err := render.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	sess, err := s.manager.Get(sceneID)
	if err != nil {
		return nil, err
	}
	return s.ExportScene(ctx, sess.Snapshot(), f)
}

// ExportScene renders a scene that is not held by any session.
func (s *ExportService) ExportScene(ctx context.Context, sc *scene.Scene, f render.Format) (*Export, error) {
	data, warnings, err := s.renderer.Export(ctx, sc, f)
	if err != nil {
		exportsTotal.WithLabelValues(string(f), "error").Inc()
		log.Printf("[Render %s] export failed: %v", sc.ID, err)
		return nil, err
	}
	result := "ok"
	if len(warnings) > 0 {
		result = "degraded"
		exportSkippedImages.Add(float64(len(warnings)))
	}
	exportsTotal.WithLabelValues(string(f), result).Inc()
	return &Export{Data: data, Format: f, Warnings: warnings}, nil
}

// Caption is the caption preview and the text copied to the clipboard.
type Caption struct {
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	Clipboard string   `json:"clipboard"`
}

func (s *ExportService) Caption(sceneID string) (Caption, error) {
	sess, err := s.manager.Get(sceneID)
	if err != nil {
		return Caption{}, err
	}
	var c Caption
	sess.Do(func(sc *scene.Scene) error {
		c = Caption{
			Caption:   sc.Caption,
			Hashtags:  append([]string{}, sc.Hashtags...),
			Clipboard: utils.ClipboardText(sc.Caption, sc.Hashtags),
		}
		return nil
	})
	return c, nil
}
