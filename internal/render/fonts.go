package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"

	"osonaiAPI/internal/scene"
)

// fontData maps each template family onto a bundled Go font.
var fontData = map[scene.FontFamily][]byte{
	scene.FontModern:  goregular.TTF,
	scene.FontClassic: gosmallcaps.TTF,
	scene.FontBold:    gobold.TTF,
	scene.FontElegant: goitalic.TTF,
	scene.FontPlayful: gomediumitalic.TTF,
	scene.FontMono:    gomono.TTF,
}

// FontManager parses fonts once and hands out faces. Parsed fonts are shared;
// faces are not safe for concurrent use, so every call gets a fresh one.
type FontManager struct {
	mu     sync.Mutex
	parsed map[scene.FontFamily]*opentype.Font
}

func NewFontManager() *FontManager {
	return &FontManager{parsed: make(map[scene.FontFamily]*opentype.Font)}
}

// Face returns a face for family at size pixels. Unknown families use the
// modern font. The caller closes the face.
func (m *FontManager) Face(family scene.FontFamily, size float64) (font.Face, error) {
	f, err := m.font(family)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face: %w", family, err)
	}
	return face, nil
}

func (m *FontManager) font(family scene.FontFamily) (*opentype.Font, error) {
	if _, ok := fontData[family]; !ok {
		family = scene.FontModern
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.parsed[family]; ok {
		return f, nil
	}
	f, err := opentype.Parse(fontData[family])
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s font: %w", family, err)
	}
	m.parsed[family] = f
	return f, nil
}
