package cssfont

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/transkribus/annotate"
)

var (
	fontLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Length", Pattern: `(?:\d+\.\d+|\.\d+|\d+)(?:px|pt|mm|em|rem|%)`},
		{Name: "Number", Pattern: `\d+\.\d+|\.\d+|\d+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'[^']*'`},
		{Name: "Ident", Pattern: `-?[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[,/]`},
	})

	shorthandParser = participle.MustBuild[Shorthand](
		participle.Lexer(fontLexer),
		participle.Elide("Whitespace"),
	)
)

// Shorthand is the AST of a CSS `font` shorthand such as
// `italic 700 20px/1.2 "Noto Serif", monospace`.
type Shorthand struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Modifiers  []*Modifier    `parser:"@@*"`
	Size       string         `parser:"@Length"`
	LineHeight *string        `parser:"( '/' @( Length | Number | Ident ) )?"`
	Families   []*Family      `parser:"@@ ( ',' @@ )*"`
}

// Modifier is a style/variant/weight keyword or a numeric weight.
type Modifier struct {
	Keyword *string `parser:"  @Ident"`
	Weight  *string `parser:"| @Number"`
}

// Family is either a quoted name or a run of identifiers.
type Family struct {
	Quoted *string  `parser:"  @String"`
	Words  []string `parser:"| @Ident+"`
}

// Name returns the family name without quotes.
func (f *Family) Name() string {
	if f == nil {
		return ""
	}
	if f.Quoted != nil {
		q := *f.Quoted
		if len(q) >= 2 {
			return q[1 : len(q)-1]
		}
		return q
	}
	return strings.Join(f.Words, " ")
}

// ParseShorthand parses a CSS font shorthand.
func ParseShorthand(input string) (*Shorthand, error) {
	return shorthandParser.ParseString("", input)
}

// Descriptor converts the shorthand into a font descriptor. Only the first
// family is kept; the measuring backend does its own fallback.
func (s *Shorthand) Descriptor() (annotate.FontDescriptor, error) {
	desc := annotate.FontDescriptor{Weight: 400}
	for _, m := range s.Modifiers {
		switch {
		case m.Weight != nil:
			w, err := strconv.Atoi(*m.Weight)
			if err != nil {
				return desc, fmt.Errorf("无效的字重 %s: %w", *m.Weight, err)
			}
			desc.Weight = w
		case m.Keyword != nil:
			if err := applyKeyword(&desc, *m.Keyword); err != nil {
				return desc, err
			}
		}
	}
	size := annotate.ParseLength(s.Size)
	desc.SizePx = size.ToPx(16)
	if len(s.Families) > 0 {
		desc.Family = s.Families[0].Name()
	}
	return desc, nil
}

func applyKeyword(desc *annotate.FontDescriptor, kw string) error {
	switch strings.ToLower(kw) {
	case "normal", "small-caps":
	case "italic", "oblique":
		desc.Italic = true
	case "bold", "bolder":
		desc.Weight = 700
	case "lighter":
		desc.Weight = 300
	default:
		return fmt.Errorf("未知的字体关键字 %q", kw)
	}
	return nil
}

// ParseFont parses a shorthand straight into a descriptor.
func ParseFont(input string) (annotate.FontDescriptor, error) {
	sh, err := ParseShorthand(input)
	if err != nil {
		return annotate.FontDescriptor{}, fmt.Errorf("解析字体 %q 失败: %w", input, err)
	}
	return sh.Descriptor()
}
