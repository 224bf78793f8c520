package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// FontFamily is one of the font templates offered in the style panel.
type FontFamily string

const (
	FontModern  FontFamily = "modern"
	FontClassic FontFamily = "classic"
	FontBold    FontFamily = "bold"
	FontElegant FontFamily = "elegant"
	FontPlayful FontFamily = "playful"
	FontMono    FontFamily = "mono"
)

var fontFamilies = []FontFamily{FontModern, FontClassic, FontBold, FontElegant, FontPlayful, FontMono}

// FontFamilies lists every template name.
func FontFamilies() []FontFamily {
	return append([]FontFamily(nil), fontFamilies...)
}

// TextAlign is the horizontal alignment of a text layer.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// StyleProperty names a style-panel control.
type StyleProperty string

const (
	PropFontFamily StyleProperty = "fontFamily"
	PropFontSize   StyleProperty = "fontSize"
	PropColor      StyleProperty = "color"
	PropTextAlign  StyleProperty = "textAlign"
	PropTextShadow StyleProperty = "textShadow"
)

const (
	MinFontSize = 8
	MaxFontSize = 200
)

// Shadow is the fixed drop-shadow recipe toggled from the panel.
type Shadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Opacity float64
}

// TextShadow is what the shadow toggle applies: 2px/2px offset, 4px blur, 50% black.
var TextShadow = Shadow{OffsetX: 2, OffsetY: 2, Blur: 4, Opacity: 0.5}

// TextStyle is the authoritative style of a text layer.
type TextStyle struct {
	FontFamily FontFamily `json:"fontFamily"`
	FontSizePx float64    `json:"fontSize"`
	Color      string     `json:"color"`
	TextAlign  TextAlign  `json:"textAlign"`
	Shadow     bool       `json:"shadow"`
}

// Apply sets one property from its panel representation. The style is left
// untouched when the value is invalid.
func (st *TextStyle) Apply(prop StyleProperty, value string) error {
	value = strings.TrimSpace(value)
	switch prop {
	case PropFontFamily:
		f, err := ParseFontFamily(value)
		if err != nil {
			return err
		}
		st.FontFamily = f
	case PropFontSize:
		size, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		if err != nil || size < MinFontSize || size > MaxFontSize {
			return fmt.Errorf("%w: font size %q must be between %d and %d", ErrInvalidStyle, value, MinFontSize, MaxFontSize)
		}
		st.FontSizePx = size
	case PropColor:
		c, err := NormalizeHexColor(value)
		if err != nil {
			return err
		}
		st.Color = c
	case PropTextAlign:
		switch TextAlign(value) {
		case AlignLeft, AlignCenter, AlignRight:
			st.TextAlign = TextAlign(value)
		default:
			return fmt.Errorf("%w: text align %q", ErrInvalidStyle, value)
		}
	case PropTextShadow:
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: text shadow %q", ErrInvalidStyle, value)
		}
		st.Shadow = on
	default:
		return fmt.Errorf("%w: unknown property %q", ErrInvalidStyle, prop)
	}
	return nil
}

// ParseFontFamily validates a template name.
func ParseFontFamily(s string) (FontFamily, error) {
	for _, f := range fontFamilies {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: font family %q", ErrInvalidStyle, s)
}

// NormalizeHexColor accepts #rgb or #rrggbb and returns lowercase #rrggbb.
func NormalizeHexColor(s string) (string, error) {
	hex := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", fmt.Errorf("%w: color %q", ErrInvalidStyle, s)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", fmt.Errorf("%w: color %q", ErrInvalidStyle, s)
	}
	return "#" + hex, nil
}
