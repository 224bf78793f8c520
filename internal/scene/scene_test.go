package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/imagesource"
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	return New("scene-1", AspectSquare, &Viewport{Size: geometry.Size{Width: 500, Height: 500}})
}

func TestNewSceneDefaults(t *testing.T) {
	s := newTestScene(t)

	assert.Equal(t, DefaultTitle, s.Title.Text)
	assert.Equal(t, DefaultSubtitle, s.Subtitle.Text)
	assert.Empty(t, s.Overlays)
	assert.Nil(t, s.Background)
	assert.Equal(t, "", s.Selected())
	for _, l := range s.TextLayers() {
		assert.True(t, l.Frame.Inside(s.Canvas()), l.Role)
		assert.GreaterOrEqual(t, l.Frame.Width, 100.0)
		assert.GreaterOrEqual(t, l.Frame.Height, 40.0)
	}
}

func TestDefaultViewportPerAspect(t *testing.T) {
	assert.Equal(t, geometry.Size{Width: 500, Height: 500}, DefaultViewport(AspectSquare).Size)
	assert.Equal(t, geometry.Size{Width: 500, Height: 625}, DefaultViewport(AspectPortrait).Size)
	assert.Equal(t, geometry.Size{Width: 500, Height: 281}, DefaultViewport(AspectLandscape).Size)
}

func TestExportSizes(t *testing.T) {
	tests := map[AspectRatio][2]int{
		AspectSquare:    {1080, 1080},
		AspectPortrait:  {1080, 1350},
		AspectLandscape: {1080, 608},
	}
	for a, want := range tests {
		w, h := a.ExportSize()
		assert.Equal(t, want, [2]int{w, h}, a)
	}

	_, err := ParseAspectRatio("3:2")
	assert.ErrorIs(t, err, ErrInvalidAspectRatio)
}

func TestSetPositionClamps(t *testing.T) {
	s := newTestScene(t)

	frame, err := s.SetPosition("title", geometry.Position{Left: 10000, Top: -50})
	require.NoError(t, err)
	assert.Equal(t, s.Canvas().Width-frame.Width, frame.Left)
	assert.Equal(t, 0.0, frame.Top)
	assert.Equal(t, frame, s.Title.Frame)
}

func TestSetSizeEnforcesTextFloor(t *testing.T) {
	s := newTestScene(t)

	frame, err := s.SetSize("subtitle", geometry.Size{Width: 10, Height: 5})
	require.NoError(t, err)
	assert.Equal(t, 100.0, frame.Width)
	assert.Equal(t, 40.0, frame.Height)
}

func TestAddAndRemoveOverlay(t *testing.T) {
	s := newTestScene(t)

	o := s.AddImageOverlay(imagesource.Source{MimeType: "image/png", Data: []byte{1}})
	assert.Equal(t, geometry.NewRect(50, 50, 100, 100), o.Frame)
	assert.Greater(t, o.ZIndex, s.Title.ZIndex)
	assert.Greater(t, o.ZIndex, s.Subtitle.ZIndex)
	require.NoError(t, s.Select(o.ID))

	require.NoError(t, s.RemoveImageOverlay(o.ID))
	assert.Empty(t, s.Overlays)
	assert.Equal(t, "", s.Selected())

	err := s.RemoveImageOverlay(o.ID)
	assert.True(t, errors.Is(err, ErrLayerNotFound))
}

func TestOverlayLimits(t *testing.T) {
	s := newTestScene(t)
	o := s.AddImageOverlay(imagesource.Source{URL: "https://example.com/a.png"})

	frame, err := s.SetSize(o.ID, geometry.Size{Width: 900, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, 300.0, frame.Width)
	assert.Equal(t, 20.0, frame.Height)
}

func TestReorderToFront(t *testing.T) {
	s := newTestScene(t)
	a := s.AddImageOverlay(imagesource.Source{URL: "a"})
	b := s.AddImageOverlay(imagesource.Source{URL: "b"})
	require.Less(t, a.ZIndex, b.ZIndex)

	z, err := s.ReorderToFront(a.ID)
	require.NoError(t, err)
	assert.Greater(t, z, b.ZIndex)

	again, err := s.ReorderToFront(a.ID)
	require.NoError(t, err)
	assert.Equal(t, z, again)

	ordered := s.OverlaysByZ()
	assert.Equal(t, []string{b.ID, a.ID}, []string{ordered[0].ID, ordered[1].ID})

	_, err = s.ReorderToFront("nope")
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestSetStyle(t *testing.T) {
	s := newTestScene(t)

	require.NoError(t, s.SetStyle(RoleTitle, PropFontSize, "64px"))
	require.NoError(t, s.SetStyle(RoleTitle, PropColor, "#ABC"))
	require.NoError(t, s.SetStyle(RoleTitle, PropTextAlign, "right"))
	require.NoError(t, s.SetStyle(RoleTitle, PropTextShadow, "false"))
	assert.Equal(t, TextStyle{FontFamily: FontBold, FontSizePx: 64, Color: "#aabbcc", TextAlign: AlignRight}, s.Title.Style)

	before := s.Title.Style
	assert.ErrorIs(t, s.SetStyle(RoleTitle, PropColor, "rgb(1,2,3)"), ErrInvalidStyle)
	assert.ErrorIs(t, s.SetStyle(RoleTitle, PropFontSize, "2"), ErrInvalidStyle)
	assert.ErrorIs(t, s.SetStyle(RoleTitle, PropFontFamily, "comic"), ErrInvalidStyle)
	assert.ErrorIs(t, s.SetStyle(RoleTitle, PropTextAlign, "justify"), ErrInvalidStyle)
	assert.Equal(t, before, s.Title.Style)
}

func TestSetViewportReclampsLayers(t *testing.T) {
	s := newTestScene(t)
	_, err := s.SetPosition("title", geometry.Position{Left: 100, Top: 420})
	require.NoError(t, err)

	require.NoError(t, s.SetAspectRatio(AspectLandscape))
	assert.Equal(t, geometry.Size{Width: 500, Height: 281}, s.Canvas())
	assert.True(t, s.Title.Frame.Inside(s.Canvas()))
	assert.True(t, s.Subtitle.Frame.Inside(s.Canvas()))

	assert.ErrorIs(t, s.SetViewport(Viewport{}), ErrInvalidViewport)
	assert.ErrorIs(t, s.SetAspectRatio("2:1"), ErrInvalidAspectRatio)
}

func TestBackgroundSettings(t *testing.T) {
	s := newTestScene(t)
	assert.ErrorIs(t, s.UpdateBackground(BackgroundSettings{Fit: FitCover}), ErrInvalidBackground)

	s.SetBackground(imagesource.Source{URL: "https://example.com/bg.png"})
	assert.Equal(t, FitFill, s.Background.Fit)
	assert.Equal(t, 100.0, s.Background.Scale)

	require.NoError(t, s.UpdateBackground(BackgroundSettings{Fit: FitCover, Position: PositionTop, Scale: 150}))
	assert.Equal(t, Background{Source: s.Background.Source, Scale: 150, Position: PositionTop, Fit: FitCover}, *s.Background)

	assert.ErrorIs(t, s.UpdateBackground(BackgroundSettings{Fit: "stretch"}), ErrInvalidBackground)
	assert.Equal(t, FitCover, s.Background.Fit)
}

func TestResetKeepsIDAndViewport(t *testing.T) {
	s := newTestScene(t)
	s.AddImageOverlay(imagesource.Source{URL: "a"})
	s.SetContent("t", "s", "c", []string{"#a"})
	require.NoError(t, s.Select("title"))

	s.Reset()
	assert.Equal(t, "scene-1", s.ID)
	assert.Empty(t, s.Overlays)
	assert.Equal(t, DefaultTitle, s.Title.Text)
	assert.Empty(t, s.Hashtags)
	assert.Equal(t, "", s.Selected())
}

func TestCloneIsDeep(t *testing.T) {
	s := newTestScene(t)
	o := s.AddImageOverlay(imagesource.Source{URL: "a"})
	c := s.Clone()

	s.Title.Text = "changed"
	o.Hidden = true
	assert.Equal(t, DefaultTitle, c.Title.Text)
	assert.False(t, c.Overlays[0].Hidden)
}
