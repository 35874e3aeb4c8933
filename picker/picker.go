package picker

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/runenames"
)

// DefaultCharacters are the graphemes offered when the host config has no
// "keyboard" list: historical letters, combining forms, typographic marks,
// fractions and Greek.
var DefaultCharacters = []string{
	"ſ", "ā", "ē", "ī", "ō", "ū", "n̄", "m̄", "p̄", "t̄", "q̄", "q̈",
	"Ā", "Ē", "Ī", "Ō", "Ū", "aͤ", "oͤ", "uͤ", "Aͤ", "Oͤ", "Uͤ",
	"ꝗ", "q́", "å", "ů", "ꝛ", "⁊", "Æ", "Œ", "æ", "œ", "ë", "ↄ", "ę",
	"｢", "｣", "⁰", "¹", "²", "³", "⁴", "⁵", "⁶", "⁷", "⁸", "⁹",
	"⸗", "—", "‹", "›", "»", "«", "„", "”", "’", "£", "§", "†",
	"½", "¼", "¾", "⅓", "⅔", "⅕", "⅖", "⅗", "⅘", "⅙", "⅐", "⅚", "⅛", "⅜", "⅝", "⅞", "⅑", "⅒",
	"Α", "Δ", "Κ", "Π", "Σ", "ά", "έ", "ή", "ί",
	"α", "β", "γ", "δ", "ε", "ζ", "η", "θ", "ι", "κ", "λ", "μ", "ν", "ξ", "ο", "π",
	"ρ", "ς", "σ", "τ", "υ", "φ", "χ", "ψ", "ω", "ό", "ύ", "ώ", "ϑ", "ϰ", "ϱ",
}

// Key is one picker button.
type Key struct {
	Char  string `json:"char"`
	Title string `json:"title"`
}

// Keyboard is the auxiliary character picker.
type Keyboard struct {
	Keys []Key `json:"keys"`
}

// New builds a keyboard for chars.
func New(chars []string) Keyboard {
	kb := Keyboard{Keys: make([]Key, 0, len(chars))}
	for _, c := range chars {
		if c == "" {
			continue
		}
		kb.Keys = append(kb.Keys, Key{Char: c, Title: Name(c)})
	}
	return kb
}

// FromConfig reads the "keyboard" array of a host config document and
// falls back to DefaultCharacters when it is absent or empty.
func FromConfig(config []byte) Keyboard {
	var chars []string
	if len(config) > 0 && gjson.ValidBytes(config) {
		for _, v := range gjson.GetBytes(config, "keyboard").Array() {
			if s := v.String(); s != "" {
				chars = append(chars, s)
			}
		}
	}
	if len(chars) == 0 {
		chars = DefaultCharacters
	}
	return New(chars)
}

// Name spells out every code point of a grapheme in title case, joined by
// " + ", e.g. "Latin Small Letter N + Combining Macron".
func Name(grapheme string) string {
	caser := cases.Title(language.Und)
	parts := make([]string, 0, len(grapheme))
	for _, r := range grapheme {
		name := runenames.Name(r)
		if name == "" {
			parts = append(parts, fmt.Sprintf("U+%04X", r))
			continue
		}
		parts = append(parts, caser.String(name))
	}
	return strings.Join(parts, " + ")
}

// Visibility tracks whether the picker panel is open.
type Visibility struct {
	Open bool
}

// Toggle flips the panel and returns the new state.
func (v *Visibility) Toggle() bool {
	v.Open = !v.Open
	return v.Open
}

// Display returns the CSS display value for the panel.
func (v Visibility) Display() string {
	if v.Open {
		return "grid"
	}
	return "none"
}
