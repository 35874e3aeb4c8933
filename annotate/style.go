package annotate

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Paint is a CSS colour with opacity.
type Paint struct {
	Color colorful.Color
	Alpha float64
}

// CSS formats the paint as rgba(r, g, b, a), or rgb(r, g, b) when opaque.
func (p Paint) CSS() string {
	r, g, b := p.Color.Clamped().RGB255()
	if p.Alpha >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatNumber(p.Alpha))
}

// MarshalText encodes the paint as its CSS string.
func (p Paint) MarshalText() ([]byte, error) { return []byte(p.CSS()), nil }

// NRGBA converts the paint for drawing backends.
func (p Paint) NRGBA() color.NRGBA {
	r, g, b := p.Color.Clamped().RGB255()
	a := math.Max(0, math.Min(1, p.Alpha))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}
}

// ParsePaint reads "#rrggbb" with an explicit alpha.
func ParsePaint(hex string, alpha float64) (Paint, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Paint{}, fmt.Errorf("无法解析颜色 %s: %w", hex, err)
	}
	if alpha < 0 || alpha > 1 {
		return Paint{}, fmt.Errorf("透明度 %g 超出 [0,1]", alpha)
	}
	return Paint{Color: c, Alpha: alpha}, nil
}

func rgb(r, g, b uint8, alpha float64) Paint {
	return Paint{Color: colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, Alpha: alpha}
}

// Palette maps highlight categories to paints.
type Palette map[ColorKey]Paint

// DefaultPalette returns the highlight colours of the transcription input.
// F uses the LongS hue at low opacity.
func DefaultPalette() Palette {
	return Palette{
		Transparent: rgb(0, 0, 0, 0),
		LongS:       rgb(255, 0, 0, 0.5),
		F:           rgb(255, 0, 0, 0.1),
		Umlaut:      rgb(0, 128, 0, 0.5),
		Uncertainty: rgb(255, 255, 0, 0.5),
	}
}

// Paint returns the paint for key, falling back to the defaults.
func (p Palette) Paint(key ColorKey) Paint {
	if v, ok := p[key]; ok {
		return v
	}
	return DefaultPalette()[key]
}

// Gradient renders spans as a CSS background. The last transparent stop
// runs to 100% so the rest of the field stays clear.
func Gradient(spans []Span, palette Palette) string {
	stops := make([]string, 0, len(spans)+1)
	for i, s := range spans {
		if i == len(spans)-1 && s.Color == Transparent {
			stops = append(stops, fmt.Sprintf("%s %spx 100%%", palette.Paint(Transparent).CSS(), formatNumber(s.Start)))
			continue
		}
		stops = append(stops, fmt.Sprintf("%s %spx %spx", palette.Paint(s.Color).CSS(), formatNumber(s.Start), formatNumber(s.End)))
	}
	if len(spans) == 0 || spans[len(spans)-1].Color != Transparent {
		last := 0.0
		if len(spans) > 0 {
			last = spans[len(spans)-1].End
		}
		stops = append(stops, fmt.Sprintf("%s %spx 100%%", palette.Paint(Transparent).CSS(), formatNumber(last)))
	}
	return "linear-gradient(to right, " + strings.Join(stops, ", ") + ")"
}

// Warning messages shown when correctable characters are present.
const (
	LongSWarning  = `Im Text kommen Formen des kleinen "s" vor!`
	UmlautWarning = "Im Text kommen Umlaute vor!"
)

// Warning text colours: the long-s and umlaut hues at full opacity.
var (
	LongSWarningPaint  = rgb(255, 0, 0, 1)
	UmlautWarningPaint = rgb(0, 128, 0, 1)
)

// Warnings lists the messages for res, long-s first.
func Warnings(res Result) []Warning {
	var out []Warning
	if res.HasLongS {
		out = append(out, Warning{Color: LongSWarningPaint, Message: LongSWarning})
	}
	if res.HasUmlaut {
		out = append(out, Warning{Color: UmlautWarningPaint, Message: UmlautWarning})
	}
	return out
}

// Options configures Render.
type Options struct {
	Segmentation Segmentation
	Palette      Palette
}

// Render measures, classifies and formats text in one pass.
func Render(text string, font FontDescriptor, m Metrics, opts Options) *Annotation {
	palette := opts.Palette
	if palette == nil {
		palette = DefaultPalette()
	}
	cells := MeasureCells(text, font, m, opts.Segmentation)
	res := Classify(cells)
	return &Annotation{
		Text:       text,
		Font:       font,
		Cells:      cells,
		Result:     res,
		Background: Gradient(res.Spans, palette),
		Warnings:   Warnings(res),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
