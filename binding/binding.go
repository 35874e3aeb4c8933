package binding

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var exprPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Interpolate 将文本中的 {{path.to.value}} 替换为 JSON 数据中的值。
// 路径使用 gjson 语法（数组下标写作 items.0）；若数据为空或路径不存在，则保留原占位符。
func Interpolate(text string, data []byte) string {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		val := gjson.GetBytes(data, path)
		if !val.Exists() {
			return match
		}
		return val.String()
	})
}

// Placeholders lists the distinct paths referenced by text, in order of appearance.
func Placeholders(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range exprPattern.FindAllStringSubmatch(text, -1) {
		p := strings.TrimSpace(m[1])
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
