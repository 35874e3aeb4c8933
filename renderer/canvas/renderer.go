package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/transkribus/annotate"
	"github.com/ByLCY/transkribus/fonts"
	"github.com/ByLCY/transkribus/renderer"
)

const (
	lineFactor   = 1.6 // 行高相对字号
	pagePadding  = 8.0 // px
	warningScale = 0.6
	warningLabel = "Achtung: "
)

// Renderer measures text and draws annotation previews via github.com/tdewolff/canvas.
type Renderer struct {
	// injected resources
	fontBlobs map[string][]byte // by family name

	palette annotate.Palette

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ annotate.Metrics  = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	Fonts   map[string]Resource // CSS family name → font file, overrides the built-in Go fonts
	Palette annotate.Palette
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer backed by the built-in fonts only.
func NewRenderer() *Renderer {
	r, _ := NewRendererWithOptions(Options{})
	return r
}

// NewRendererWithOptions creates a renderer with injected fonts and palette.
// A font Path that cannot be read is an error; unparsable font bytes still
// fall back to the built-in fonts when measuring.
func NewRendererWithOptions(opts Options) (*Renderer, error) {
	r := &Renderer{
		fontBlobs:    map[string][]byte{},
		palette:      opts.Palette,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.palette == nil {
		r.palette = annotate.DefaultPalette()
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[strings.ToLower(name)] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				return nil, fmt.Errorf("读取字体文件 %s 失败: %w", res.Path, err)
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("字体文件 %s 为空", res.Path)
			}
			r.fontBlobs[strings.ToLower(name)] = data
		}
	}
	return r, nil
}

// TextWidth 实现 annotate.Metrics：字号为 px，canvas 内部使用 pt 与 mm，在边界换算。
// 无法加载字体时按约定返回 0。
func (r *Renderer) TextWidth(text string, font annotate.FontDescriptor) float64 {
	if text == "" || font.SizePx <= 0 {
		return 0
	}
	face, err := r.fontFace(font, color.Black)
	if err != nil {
		return 0
	}
	return face.TextWidth(text) * annotate.MmToPx
}

// Render draws the annotated line as a one-page PDF: highlight spans
// behind the text, warnings below it.
func (r *Renderer) Render(ann *annotate.Annotation) ([]byte, error) {
	if ann == nil {
		return nil, fmt.Errorf("标注结果为空")
	}
	font := ann.Font
	if font.SizePx <= 0 {
		font.SizePx = 20
	}
	face, err := r.fontFace(font, color.Black)
	if err != nil {
		return nil, err
	}

	lineHeight := font.SizePx * lineFactor
	widthPx := annotate.TotalWidth(ann.Cells) + font.PaddingLeft + 2*pagePadding
	if tw := r.TextWidth(ann.Text, font) + font.PaddingLeft*2 + 2*pagePadding; tw > widthPx {
		widthPx = tw
	}
	warnHeight := lineHeight * warningScale
	for _, w := range ann.Warnings {
		if ww := r.TextWidth(warningLabel+w.Message, font.WithSize(font.SizePx*warningScale)) + 2*pagePadding; ww > widthPx {
			widthPx = ww
		}
	}
	heightPx := 2*pagePadding + lineHeight + float64(len(ann.Warnings))*warnHeight

	width, height := toMm(widthPx), toMm(heightPx)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo("Transkription", "", "", "", "transkribus")

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与输入框坐标一致

	top := toMm(pagePadding)
	left := toMm(pagePadding)
	r.drawSpans(ctx, ann.Result.Spans, left, top, toMm(lineHeight))

	// 文字垂直居中于行内
	metrics := face.Metrics()
	baseline := top + (toMm(lineHeight)-metrics.LineHeight)/2 + metrics.Ascent
	ctx.DrawText(left+toMm(font.PaddingLeft), baseline, canvas.NewTextLine(face, ann.Text, canvas.Left))

	cursor := top + toMm(lineHeight)
	for _, w := range ann.Warnings {
		wface, err := r.fontFace(font.WithSize(font.SizePx*warningScale), w.Color.NRGBA())
		if err != nil {
			return nil, err
		}
		cursor += toMm(warnHeight)
		ctx.DrawText(left, cursor, canvas.NewTextLine(wface, warningLabel+w.Message, canvas.Left))
	}

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSpans 绘制彩色背景段（透明段跳过）
func (r *Renderer) drawSpans(ctx *canvas.Context, spans []annotate.Span, x, y, h float64) {
	for _, s := range spans {
		if s.Color == annotate.Transparent || s.End <= s.Start {
			continue
		}
		ctx.SetFillColor(r.palette.Paint(s.Color).NRGBA())
		ctx.SetStrokeColor(color.NRGBA{})
		ctx.SetStrokeWidth(0)
		ctx.DrawPath(x+toMm(s.Start), y, canvas.Rectangle(toMm(s.End-s.Start), h))
	}
}

func (r *Renderer) fontFace(font annotate.FontDescriptor, col color.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(font.SizePx*annotate.PxToPt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font annotate.FontDescriptor) (*canvas.FontFamily, canvas.FontStyle, error) {
	style := fontStyle(font)
	key := fontCacheKey(font, style)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	familyName := font.Family
	if familyName == "" {
		familyName = "monospace"
	}
	family := canvas.NewFontFamily(familyName)
	if blob, ok := r.fontBlobs[strings.ToLower(familyName)]; ok {
		if err := family.LoadFont(blob, 0, style); err == nil {
			r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
			return family, style, nil
		}
	}

	// 自定义字体缺失或损坏时使用内置 Go 字体
	data, err := fonts.Load(fonts.Select(familyName, font.Weight >= 600, font.Italic))
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family = canvas.NewFontFamily(familyName)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", familyName, err)
	}
	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func fontStyle(font annotate.FontDescriptor) canvas.FontStyle {
	result := canvas.FontRegular
	switch {
	case font.Weight >= 900:
		result = canvas.FontBlack
	case font.Weight >= 800:
		result = canvas.FontExtraBold
	case font.Weight >= 700:
		result = canvas.FontBold
	case font.Weight >= 600:
		result = canvas.FontSemiBold
	case font.Weight >= 500:
		result = canvas.FontMedium
	case font.Weight > 0 && font.Weight <= 300:
		result = canvas.FontLight
	}
	if font.Italic {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font annotate.FontDescriptor, style canvas.FontStyle) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(font.Family), style)
}

func toMm(px float64) float64 { return px * annotate.PxToMm }
