package annotate

import (
	"regexp"
	"strings"
)

var (
	umlautDecomposer = strings.NewReplacer(
		"ä", "aͤ", "ö", "oͤ", "ü", "uͤ",
		"Ä", "Aͤ", "Ö", "Oͤ", "Ü", "Uͤ",
	)
	umlautComposer = strings.NewReplacer(
		"aͤ", "ä", "oͤ", "ö", "uͤ", "ü",
		"Aͤ", "Ä", "Oͤ", "Ö", "Uͤ", "Ü",
	)

	uncertaintyPattern = regexp.MustCompile(`🤔?⟅(.+?)⟆`)
)

// ApplyLongSSubstitution replaces every lowercase s with ſ.
func ApplyLongSSubstitution(text string) string {
	return strings.ReplaceAll(text, "s", "ſ")
}

// ApplyUmlautDecomposition writes umlauts as base vowel plus combining e.
func ApplyUmlautDecomposition(text string) string {
	return umlautDecomposer.Replace(text)
}

// RecomposeUmlauts is the inverse of ApplyUmlautDecomposition.
func RecomposeUmlauts(text string) string {
	return umlautComposer.Replace(text)
}

// NormalizeUncertainty prefixes every ⟅…⟆ span with the thinking-face emoji
// exactly once. The emoji is left out of the input field because its two
// code units break the background highlighting.
func NormalizeUncertainty(text string) string {
	return uncertaintyPattern.ReplaceAllString(text, "🤔⟅${1}⟆")
}

// Selection is a range of rune indices in a text, End exclusive.
type Selection struct {
	Start int
	End   int
}

// Collapsed reports whether the selection is a bare caret.
func (s Selection) Collapsed() bool { return s.Start == s.End }

func (s Selection) valid(n int) bool {
	return s.Start >= 0 && s.End >= s.Start && s.End <= n
}

// InsertGrapheme replaces the selection with g and returns the caret after
// the insertion. Out-of-range selections leave the text untouched.
func InsertGrapheme(text string, sel Selection, g string) (string, int, bool) {
	runes := []rune(text)
	if !sel.valid(len(runes)) {
		return text, sel.End, false
	}
	out := string(runes[:sel.Start]) + g + string(runes[sel.End:])
	return out, sel.Start + len([]rune(g)), true
}

// MarkUncertain wraps the selection in ⟅ ⟆. An empty selection is ignored.
func MarkUncertain(text string, sel Selection) (string, int, bool) {
	runes := []rune(text)
	if sel.Collapsed() || !sel.valid(len(runes)) {
		return text, sel.End, false
	}
	marked := string(UncertaintyOpen) + string(runes[sel.Start:sel.End]) + string(UncertaintyClose)
	return InsertGrapheme(text, sel, marked)
}
