package preview

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ColorTheme represents a predefined color scheme for intensity maps.
// Each theme is optimized for different visualization needs:
// - ClassicTheme: Traditional spectrum display (blue to red)
// - GrayscaleTheme: Monochrome visualization
// - JungleTheme: Nature-inspired colors for better contrast
// - ThermalTheme: Heat map visualization
// - MarineTheme: Water-depth inspired colors
type ColorTheme string

const (
	EnhancedTheme  ColorTheme = "enhanced"  // Black to blue to cyan to red
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256 // Default number of colors in the map
)

// ParseTheme validates a theme name; an empty name selects EnhancedTheme.
func ParseTheme(s string) (ColorTheme, error) {
	switch t := ColorTheme(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return EnhancedTheme, nil
	case EnhancedTheme, ClassicTheme, GrayscaleTheme, JungleTheme, ThermalTheme, MarineTheme:
		return t, nil
	default:
		return "", fmt.Errorf("preview: unknown color theme %q", s)
	}
}

var blankColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}

// ColorMapper maps intensity values to colors of a pre-computed gradient
type ColorMapper struct {
	colorMap []color.Color
	theme    ColorTheme
	min      float64 // Intensity mapped to the first color
	perIndex float64 // Intensity range per gradient step
}

// NewColorMapper creates a color mapper for the given intensity bounds
func NewColorMapper(theme ColorTheme, bounds Bounds) *ColorMapper {
	fn := themeFunc(theme)

	cm := &ColorMapper{
		colorMap: make([]color.Color, DefaultColorMapSize),
		theme:    theme,
		min:      bounds.Min,
		perIndex: (bounds.Max - bounds.Min) / float64(DefaultColorMapSize-1),
	}
	for i := range cm.colorMap {
		cm.colorMap[i] = fn(float64(i) / float64(DefaultColorMapSize-1))
	}
	return cm
}

// Color returns the color of an intensity value. Blanked values get a
// neutral dark gray.
func (cm *ColorMapper) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return blankColor
	}
	if cm.perIndex <= 0 {
		return cm.colorMap[0]
	}

	index := int((v - cm.min) / cm.perIndex)
	switch {
	case index < 0:
		return cm.colorMap[0]
	case index >= len(cm.colorMap):
		return cm.colorMap[len(cm.colorMap)-1]
	}
	return cm.colorMap[index]
}

// Theme returns the color theme
func (cm *ColorMapper) Theme() ColorTheme {
	return cm.theme
}

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.Color {
	v := clamp01(hsv.V)
	if hsv.S <= 0.0 {
		g := uint8(v * 255)
		return color.RGBA{R: g, G: g, B: g, A: 255}
	}
	s := clamp01(hsv.S)

	h := math.Mod(hsv.H, 360)
	if h < 0 {
		h += 360
	}
	h /= 60

	i := int(h)
	f := h - float64(i)

	vv := uint8(v * 255)
	p := uint8(v * (1 - s) * 255)
	q := uint8(v * (1 - s*f) * 255)
	t := uint8(v * (1 - s*(1-f)) * 255)

	switch i {
	case 0:
		return color.RGBA{R: vv, G: t, B: p, A: 255}
	case 1:
		return color.RGBA{R: q, G: vv, B: p, A: 255}
	case 2:
		return color.RGBA{R: p, G: vv, B: t, A: 255}
	case 3:
		return color.RGBA{R: p, G: q, B: vv, A: 255}
	case 4:
		return color.RGBA{R: t, G: p, B: vv, A: 255}
	default:
		return color.RGBA{R: vv, G: p, B: q, A: 255}
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// themeFunc returns the gradient of a theme over normalized intensity [0-1]
func themeFunc(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case ClassicTheme:
		return func(v float64) color.Color {
			return HSV{H: 240 - v*240, S: 0.9 + v*0.1, V: math.Pow(v, 0.7)}.RGB()
		}

	case GrayscaleTheme:
		return func(v float64) color.Color {
			g := uint8(math.Pow(v, 0.7) * 255)
			return color.RGBA{R: g, G: g, B: g, A: 255}
		}

	case JungleTheme:
		return func(v float64) color.Color {
			return HSV{H: 120 - v*60, S: 1.0, V: 0.3 + math.Pow(v, 0.6)*0.7}.RGB()
		}

	case ThermalTheme:
		return func(v float64) color.Color {
			switch {
			case v < 1.0/3:
				return color.RGBA{R: uint8(v * 3 * 255), A: 255}
			case v < 2.0/3:
				return color.RGBA{R: 255, G: uint8((v - 1.0/3) * 3 * 255), A: 255}
			default:
				return color.RGBA{R: 255, G: 255, B: uint8(clamp01((v-2.0/3)*3) * 255), A: 255}
			}
		}

	case MarineTheme:
		return func(v float64) color.Color {
			return HSV{H: 240 - v*60, S: 1.0 - v*0.8, V: 0.3 + math.Pow(v, 0.6)*0.7}.RGB()
		}

	default:
		return func(v float64) color.Color {
			v = clamp01(v)
			enhanced := math.Pow(v, 0.7)

			switch {
			case v < 0.25:
				return HSV{H: 240, S: 1.0, V: enhanced * 4}.RGB()
			case v < 0.5:
				return HSV{H: 240 - (v-0.25)*240, S: 1.0, V: enhanced * 1.5}.RGB()
			case v < 0.75:
				return HSV{H: 180 - (v-0.5)*4*120, S: 1.0, V: enhanced * 1.5}.RGB()
			default:
				return HSV{H: 60 - (v-0.75)*4*60, S: 1.0, V: 1.0}.RGB()
			}
		}
	}
}
