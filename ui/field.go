package ui

import (
	"github.com/ByLCY/transkribus/annotate"
	"github.com/ByLCY/transkribus/cssfont"
)

// Field is the transcription textbox. SetValue must push the value into
// the host's own state, not only into the element.
type Field interface {
	Value() string
	SetValue(v string)
	Selection() annotate.Selection
	SetSelection(sel annotate.Selection)
	Font() annotate.FontDescriptor
	SetFontSize(px float64)
	InnerWidth() float64
}

// MemoryField is a Field kept in memory, used by the CLI and tests.
type MemoryField struct {
	value      string
	sel        annotate.Selection
	font       annotate.FontDescriptor
	innerWidth float64

	// Writes counts SetValue calls that reached the host state.
	Writes int
}

var _ Field = (*MemoryField)(nil)

// NewMemoryField builds a field from a computed-style snapshot and the
// element's client width.
func NewMemoryField(value string, style cssfont.ComputedStyle, clientWidth float64) (*MemoryField, error) {
	font, err := style.Descriptor()
	if err != nil {
		return nil, err
	}
	n := len([]rune(value))
	return &MemoryField{
		value:      value,
		sel:        annotate.Selection{Start: n, End: n},
		font:       font,
		innerWidth: style.InnerWidth(clientWidth),
	}, nil
}

func (f *MemoryField) Value() string { return f.value }

func (f *MemoryField) SetValue(v string) {
	f.value = v
	f.Writes++
}

func (f *MemoryField) Selection() annotate.Selection { return f.sel }

func (f *MemoryField) SetSelection(sel annotate.Selection) { f.sel = sel }

func (f *MemoryField) Font() annotate.FontDescriptor { return f.font }

func (f *MemoryField) SetFontSize(px float64) { f.font.SizePx = px }

func (f *MemoryField) InnerWidth() float64 { return f.innerWidth }
