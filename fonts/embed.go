package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

var builtin = map[string][]byte{
	"Go-Regular":         goregular.TTF,
	"Go-Bold":            gobold.TTF,
	"Go-Italic":          goitalic.TTF,
	"Go-BoldItalic":      gobolditalic.TTF,
	"Go-Mono":            gomono.TTF,
	"Go-Mono-Bold":       gomonobold.TTF,
	"Go-Mono-Italic":     gomonoitalic.TTF,
	"Go-Mono-BoldItalic": gomonobolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Mono" 或直接 "Go-Mono"。
func Load(name string) ([]byte, error) {
	clean := strings.TrimPrefix(name, "embed:")
	data, ok := builtin[clean]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", clean)
	}
	return data, nil
}

// Select picks the built-in face closest to a CSS family, weight and style.
// Generic "monospace" (and anything containing "mono") maps to Go Mono,
// everything else to the proportional Go font.
func Select(family string, bold, italic bool) string {
	base := "Go"
	if strings.Contains(strings.ToLower(family), "mono") || strings.EqualFold(family, "courier") {
		base = "Go-Mono"
	}
	switch {
	case bold && italic:
		if base == "Go" {
			return "Go-BoldItalic"
		}
		return base + "-BoldItalic"
	case bold:
		return base + "-Bold"
	case italic:
		return base + "-Italic"
	case base == "Go":
		return "Go-Regular"
	default:
		return base
	}
}
