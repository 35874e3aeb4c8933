package annotate

import (
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MeasureCells splits text into cells according to seg and measures each
// cell with m. The running offset starts at font.PaddingLeft.
//
// A combining mark (category Mn) has no advance of its own: its cell reuses
// the offset and width of the preceding cell and the offset does not move.
func MeasureCells(text string, font FontDescriptor, m Metrics, seg Segmentation) []Cell {
	if text == "" {
		return nil
	}
	out := make([]Cell, 0, utf8.RuneCountInString(text))
	offset := font.PaddingLeft

	push := func(r rune, s string, width float64) {
		if len(out) > 0 && unicode.Is(unicode.Mn, r) {
			prev := out[len(out)-1]
			out = append(out, Cell{Char: r, Text: s, Offset: prev.Offset, Width: prev.Width})
			return
		}
		out = append(out, Cell{Char: r, Text: s, Offset: offset, Width: width})
		offset += width
	}

	switch seg {
	case SegmentGrapheme:
		g := uniseg.NewGraphemes(text)
		for g.Next() {
			s := g.Str()
			r, _ := utf8.DecodeRuneInString(s)
			push(r, s, measure(m, s, font))
		}
	case SegmentRune:
		for _, r := range text {
			s := string(r)
			push(r, s, measure(m, s, font))
		}
	default:
		for _, r := range text {
			s := string(r)
			w := measure(m, s, font)
			if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar {
				// 代理对拆成两个单元，各占一半宽度；第二个单元不携带文本
				push(r1, s, w/2)
				push(r2, "", w/2)
				continue
			}
			push(r, s, w)
		}
	}
	return out
}

// TotalWidth returns the right edge of the last cell, or 0 for no cells.
func TotalWidth(cells []Cell) float64 {
	total := 0.0
	for _, c := range cells {
		if e := c.End(); e > total {
			total = e
		}
	}
	return total
}

func measure(m Metrics, s string, font FontDescriptor) float64 {
	if m == nil {
		return 0
	}
	w := m.TextWidth(s, font)
	if w < 0 {
		return 0
	}
	return w
}
