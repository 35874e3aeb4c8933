package annotate

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for CSS lengths.

// Unit represents the original unit of a length value as found in a style string.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like font weights
	UnitPX               // CSS pixels
	UnitPT               // points
	UnitMM               // millimeters
	UnitEM               // relative to the current font size
)

// Conversion constants. A CSS pixel is 1/96 inch, a point 1/72 inch.
const (
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	MmToPx = 96.0 / 25.4
	PxToMm = 25.4 / 96.0
)

// String returns the CSS suffix of u.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitEM:
		return "em"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// String formats the length back into CSS notation.
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ToPx converts the length to CSS pixels. em lengths resolve against fontSizePx.
func (l Length) ToPx(fontSizePx float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitEM:
		return l.Value * fontSizePx
	default:
		// px 与无单位数值按像素处理
		return l.Value
	}
}

// ParseLength parses a CSS length like "12px", "9pt" or "1.5em".
// Unparseable input yields a zero length, the same as an unset property.
func ParseLength(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"em", UnitEM}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}
