package annotate

import "strings"

// Sentinel characters handled by the classifier.
const (
	CombiningE       = 'ͤ'
	UncertaintyOpen  = '⟅'
	UncertaintyClose = '⟆'
)

const umlauts = "äöüÄÖÜ"

// Classify assigns highlight categories to cells and groups them into
// spans covering [0, TotalWidth(cells)].
//
// An opening uncertainty bracket swallows every cell up to and including
// the matching closing bracket; without one the span runs to the last cell.
func Classify(cells []Cell) Result {
	var res Result
	b := spanBuilder{}

	for i := 0; i < len(cells); i++ {
		c := cells[i]
		key := cellKey(c)
		offset, width := c.Offset, c.Width
		switch key {
		case LongS:
			res.HasLongS = true
		case Umlaut:
			res.HasUmlaut = true
		}

		if c.Char == UncertaintyOpen {
			end := offset + width
			for i+1 < len(cells) && cells[i].Char != UncertaintyClose {
				i++
				// 组合字符与前一字符重叠，不会推远右边界
				if e := cells[i].End(); e > end {
					end = e
				}
			}
			width = end - offset
			key = Uncertainty
		}

		if key != Transparent {
			b.add(key, offset, offset+width)
		}
	}

	b.finish(TotalWidth(cells))
	res.Spans = b.spans
	return res
}

// cellKey classifies one cell. A grapheme cluster is judged by its base
// rune for long s and f, and by all of its runes for umlauts, so "uͤ" is
// an umlaut whether the combining e has its own cell or not.
func cellKey(c Cell) ColorKey {
	switch {
	case c.Char == 'ſ' || c.Char == 's':
		return LongS
	case c.Char == CombiningE || strings.ContainsRune(umlauts, c.Char):
		// MeasureCells 已让组合字符继承前一个字符的位置与宽度
		return Umlaut
	case strings.ContainsRune(c.Text, CombiningE) || strings.ContainsAny(c.Text, umlauts):
		return Umlaut
	case c.Char == 'f':
		return F
	}
	return Transparent
}

type spanBuilder struct {
	spans []Span
	last  float64
}

func (b *spanBuilder) add(key ColorKey, start, end float64) {
	if start < b.last {
		// 与前一段重叠时裁剪，保证各段有序且不相交
		start = b.last
	}
	if end <= start {
		return
	}
	if start > b.last {
		b.spans = append(b.spans, Span{Color: Transparent, Start: b.last, End: start})
	}
	if n := len(b.spans); n > 0 && b.spans[n-1].Color == key && b.spans[n-1].End == start {
		b.spans[n-1].End = end
	} else {
		b.spans = append(b.spans, Span{Color: key, Start: start, End: end})
	}
	b.last = end
}

func (b *spanBuilder) finish(total float64) {
	if total > b.last || len(b.spans) == 0 {
		end := total
		if end < b.last {
			end = b.last
		}
		b.spans = append(b.spans, Span{Color: Transparent, Start: b.last, End: end})
		b.last = end
	}
}
