package cssfont

import (
	"fmt"
	"strings"

	"github.com/ByLCY/transkribus/annotate"
)

// Fallbacks used when a computed style lacks a property.
const (
	DefaultWeight  = "400"
	DefaultSize    = "20px"
	DefaultFamily  = "monospace"
	DefaultPadding = "0px"
)

// ComputedStyle is a snapshot of getComputedStyle() property values.
type ComputedStyle map[string]string

func (cs ComputedStyle) get(key, fallback string) string {
	if v := strings.TrimSpace(cs[key]); v != "" {
		return v
	}
	return fallback
}

// Descriptor assembles a font descriptor from font-weight, font-size,
// font-family and padding-left, the same way a canvas font string is
// built from them. A "font" shorthand entry takes precedence over the
// longhands.
func (cs ComputedStyle) Descriptor() (annotate.FontDescriptor, error) {
	font := cs.get("font", "")
	if font == "" {
		font = fmt.Sprintf("%s %s %s",
			cs.get("font-weight", DefaultWeight),
			cs.get("font-size", DefaultSize),
			cs.get("font-family", DefaultFamily))
	}
	desc, err := ParseFont(font)
	if err != nil {
		return desc, err
	}
	desc.PaddingLeft = annotate.ParseLength(cs.get("padding-left", DefaultPadding)).ToPx(desc.SizePx)
	return desc, nil
}

// InnerWidth is the content box width: clientWidth minus horizontal padding.
func (cs ComputedStyle) InnerWidth(clientWidth float64) float64 {
	size := annotate.ParseLength(cs.get("font-size", DefaultSize)).ToPx(16)
	if desc, err := cs.Descriptor(); err == nil {
		size = desc.SizePx
	}
	left := annotate.ParseLength(cs.get("padding-left", DefaultPadding)).ToPx(size)
	right := annotate.ParseLength(cs.get("padding-right", DefaultPadding)).ToPx(size)
	return clientWidth - left - right
}
