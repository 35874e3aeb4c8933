package annotate

import (
	"fmt"
	"strings"
)

// 该文件定义测量、分类与展示共用的数据结构。

// FontDescriptor 描述输入框当前的字体，尺寸均为 CSS 像素。
type FontDescriptor struct {
	Family      string  `json:"family"`
	Weight      int     `json:"weight"`
	Italic      bool    `json:"italic,omitempty"`
	SizePx      float64 `json:"sizePx"`
	PaddingLeft float64 `json:"paddingLeft"`
}

// WithSize returns a copy of the descriptor at another font size.
func (f FontDescriptor) WithSize(px float64) FontDescriptor {
	f.SizePx = px
	return f
}

// Metrics measures rendered text widths. Implementations that cannot
// measure a string return 0.
type Metrics interface {
	TextWidth(text string, font FontDescriptor) float64
}

// Segmentation selects the unit one Cell covers.
type Segmentation int

const (
	// SegmentCodeUnit iterates UTF-16 code units, the way the host's input
	// field indexes its value. Both halves of a surrogate pair get half of
	// the pair's width.
	SegmentCodeUnit Segmentation = iota
	// SegmentRune iterates Unicode code points.
	SegmentRune
	// SegmentGrapheme iterates extended grapheme clusters.
	SegmentGrapheme
)

// ParseSegmentation maps "codeunit", "rune" and "grapheme" to a
// Segmentation. The empty string selects SegmentCodeUnit.
func ParseSegmentation(s string) (Segmentation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "codeunit", "utf16":
		return SegmentCodeUnit, nil
	case "rune", "codepoint":
		return SegmentRune, nil
	case "grapheme":
		return SegmentGrapheme, nil
	}
	return SegmentCodeUnit, fmt.Errorf("未知的切分方式 %q", s)
}

// Cell is one measured character box.
type Cell struct {
	Char   rune    `json:"char"` // 代码单元模式下可能是单独的代理项
	Text   string  `json:"text"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

// End returns the right edge of the cell.
func (c Cell) End() float64 { return c.Offset + c.Width }

// ColorKey identifies a highlight category.
type ColorKey int

const (
	Transparent ColorKey = iota
	LongS
	F
	Umlaut
	Uncertainty
)

func (k ColorKey) String() string {
	switch k {
	case LongS:
		return "long-s"
	case F:
		return "f"
	case Umlaut:
		return "umlaut"
	case Uncertainty:
		return "uncertainty"
	default:
		return "transparent"
	}
}

// MarshalText encodes the key by name.
func (k ColorKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Span is a contiguous highlighted (or transparent) range in pixels.
type Span struct {
	Color ColorKey `json:"color"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
}

// Result is the outcome of Classify.
type Result struct {
	Spans     []Span `json:"spans"`
	HasLongS  bool   `json:"hasLongS"`
	HasUmlaut bool   `json:"hasUmlaut"`
}

// Warning is a message shown below the input, with its CSS text colour.
type Warning struct {
	Color   Paint  `json:"color"`
	Message string `json:"message"`
}

// Annotation bundles everything the display sink needs for one text state.
type Annotation struct {
	Text       string         `json:"text"`
	Font       FontDescriptor `json:"font"`
	Cells      []Cell         `json:"cells"`
	Result     Result         `json:"result"`
	Background string         `json:"background"`
	Warnings   []Warning      `json:"warnings"`
}
