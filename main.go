package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/ByLCY/transkribus/annotate"
	"github.com/ByLCY/transkribus/cssfont"
	"github.com/ByLCY/transkribus/picker"
	"github.com/ByLCY/transkribus/renderer"
	canvasrenderer "github.com/ByLCY/transkribus/renderer/canvas"
	"github.com/ByLCY/transkribus/session"
	"github.com/ByLCY/transkribus/task"
	"github.com/ByLCY/transkribus/ui"
)

// cliOptions 汇总命令行参数。
type cliOptions struct {
	Text         string
	Font         string
	FontFile     string
	Padding      string
	MaxWidth     float64
	Segmentation string
	Output       string
	JSON         bool
	Config       string
	State        string
	PageURL      string
	Tasks        string
	BeforeDB     string
	ContextDir   string
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.Text, "text", "", "要标注的转写文本")
	flag.StringVar(&opts.Font, "font", "400 20px monospace", "输入框字体（CSS font 简写）")
	flag.StringVar(&opts.FontFile, "font-file", "", "替代内置字体的字体文件路径")
	flag.StringVar(&opts.Padding, "padding", "0px", "输入框左右内边距")
	flag.Float64Var(&opts.MaxWidth, "max-width", 600, "输入框 clientWidth（px）")
	flag.StringVar(&opts.Segmentation, "segmentation", "codeunit", "字符切分方式：codeunit、rune 或 grapheme")
	flag.StringVar(&opts.Output, "out", "output/preview.pdf", "PDF 预览输出路径，留空则不输出")
	flag.BoolVar(&opts.JSON, "json", false, "把标注结果以 JSON 输出到标准输出")
	flag.StringVar(&opts.Config, "config", "", "宿主配置 JSON（keyboard、session）")
	flag.StringVar(&opts.State, "state", "", "保存会话偏好的本地存储文件")
	flag.StringVar(&opts.PageURL, "page-url", "http://localhost:8080/", "会话跳转使用的页面地址")
	flag.StringVar(&opts.Tasks, "tasks", "", "预处理任务 JSONL 并输出到标准输出")
	flag.StringVar(&opts.BeforeDB, "before-db", "", "入库前清理标注结果 JSONL 并输出到标准输出")
	flag.StringVar(&opts.ContextDir, "context-dir", "", "与 -tasks 一起使用：为每个任务写出上下文 SVG")
	flag.Parse()

	switch {
	case opts.Tasks != "":
		if err := streamFile(opts.Tasks, os.Stdout, task.Stream, writeContext(opts.ContextDir)); err != nil {
			log.Fatalf("预处理任务失败: %v", err)
		}
	case opts.BeforeDB != "":
		if err := streamFile(opts.BeforeDB, os.Stdout, task.Lines, task.BeforeDB); err != nil {
			log.Fatalf("清理标注结果失败: %v", err)
		}
	default:
		r, err := newRenderer(opts.Font, opts.FontFile)
		if err != nil {
			log.Fatalf("初始化渲染器失败: %v", err)
		}
		if err := run(opts, r, os.Stdout); err != nil {
			log.Fatalf("生成标注失败: %v", err)
		}
		if opts.Output != "" {
			fmt.Fprintf(os.Stderr, "已生成 PDF：%s\n", opts.Output)
		}
	}
}

func newRenderer(font, fontFile string) (*canvasrenderer.Renderer, error) {
	if fontFile == "" {
		return canvasrenderer.NewRenderer(), nil
	}
	desc, err := cssfont.ParseFont(font)
	if err != nil {
		return nil, err
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Fonts: map[string]canvasrenderer.Resource{desc.Family: {Path: fontFile}},
	})
}

// report 是 -json 的输出内容。
type report struct {
	View     ui.View                 `json:"view"`
	Cells    []annotate.Cell         `json:"cells"`
	Font     annotate.FontDescriptor `json:"font"`
	Keyboard picker.Keyboard         `json:"keyboard"`
	Session  *sessionReport          `json:"session,omitempty"`
}

type sessionReport struct {
	Redirect string            `json:"redirect,omitempty"`
	Prompt   *session.Decision `json:"prompt,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// sessionNav 记录会话守卫的决定，命令行下不做真正跳转。
type sessionNav struct {
	rep *sessionReport
}

func (n sessionNav) Navigate(url string) { n.rep.Redirect = url }
func (n sessionNav) Prompt(d session.Decision) { n.rep.Prompt = &d }

// run 串联字体解析、字号适配、标注与渲染。
func run(opts cliOptions, r *canvasrenderer.Renderer, w io.Writer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	seg, err := annotate.ParseSegmentation(opts.Segmentation)
	if err != nil {
		return err
	}

	var config []byte
	if opts.Config != "" {
		if config, err = os.ReadFile(opts.Config); err != nil {
			return fmt.Errorf("无法读取配置文件 %s: %w", opts.Config, err)
		}
		if !gjson.ValidBytes(config) {
			return fmt.Errorf("配置文件 %s 不是合法的 JSON", opts.Config)
		}
	}

	style := cssfont.ComputedStyle{
		"font":          opts.Font,
		"padding-left":  opts.Padding,
		"padding-right": opts.Padding,
	}
	field, err := ui.NewMemoryField(opts.Text, style, opts.MaxWidth)
	if err != nil {
		return fmt.Errorf("解析输入框样式失败: %w", err)
	}

	adapter := ui.NewAdapter(nil, field, r, nil, annotate.Options{Segmentation: seg})
	listeners := ui.Listeners{adapter}

	var sess *sessionReport
	var guard *ui.SessionGuard
	if allowed := session.AllowedFromEnv(os.Getenv); len(allowed) > 0 {
		sess = &sessionReport{}
		var store session.Store = session.MemoryStore{}
		if opts.State != "" {
			store = session.NewFileStore(opts.State)
		}
		guard = &ui.SessionGuard{Allowed: allowed, Store: store, PageURL: opts.PageURL, Nav: sessionNav{rep: sess}}
		listeners = append(ui.Listeners{guard}, listeners...)
	}

	payload := ui.Payload{Session: gjson.GetBytes(config, "session").String()}
	listeners.OnMount(payload)
	if guard != nil && guard.Err != nil {
		sess.Error = guard.Err.Error()
	}

	view := adapter.View()
	font := field.Font()
	ann := annotate.Render(field.Value(), font, r, annotate.Options{Segmentation: seg})

	if opts.Output != "" {
		if err := writePreview(r, ann, opts.Output); err != nil {
			return err
		}
	}
	if !opts.JSON {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report{
		View:     view,
		Cells:    ann.Cells,
		Font:     font,
		Keyboard: picker.FromConfig(config),
		Session:  sess,
	})
}

func writePreview(r renderer.Renderer, ann *annotate.Annotation, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(ann)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

// writeContext 按需为已预处理的任务写出上下文 SVG。
func writeContext(contextDir string) func([]byte) ([]byte, error) {
	return func(raw []byte) ([]byte, error) {
		if contextDir == "" {
			return raw, nil
		}
		if err := os.MkdirAll(contextDir, 0o755); err != nil {
			return nil, fmt.Errorf("创建上下文目录失败: %w", err)
		}
		name := strconv.FormatInt(gjson.GetBytes(raw, "_task_hash").Int(), 10) + ".svg"
		if err := os.WriteFile(filepath.Join(contextDir, name), []byte(task.RenderContext(raw)), 0o644); err != nil {
			return nil, fmt.Errorf("写入上下文 SVG 失败: %w", err)
		}
		return raw, nil
	}
}

// streamFile 逐行处理 JSONL 文件，结果逐行写到 w。
func streamFile(path string, w io.Writer, each func(io.Reader, func([]byte) error) error, fn func([]byte) ([]byte, error)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("无法打开 %s: %w", path, err)
	}
	defer file.Close()

	bw := bufio.NewWriter(w)
	err = each(file, func(raw []byte) error {
		out, err := fn(raw)
		if err != nil {
			return err
		}
		if _, err := bw.Write(out); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
