// Package task models the line-verification tasks exchanged with the host
// annotation app. Tasks travel as raw JSON so that fields this package does
// not know about survive untouched; gjson reads them and sjson edits them.
package task

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/spaolacci/murmur3"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ByLCY/transkribus/annotate"
	"github.com/ByLCY/transkribus/binding"
)

// Area is a pixel rectangle. line_area is relative to context_area.
type Area struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Task is the typed view of one task.
type Task struct {
	VolumeID        string `json:"volume_id"`
	PageNum         int    `json:"page_num"`
	ContextArea     Area   `json:"context_area"`
	LineArea        Area   `json:"line_area"`
	ContextImageURL string `json:"context_image_url"`
	LineImageURL    string `json:"line_image_url"`
	ViewerURL       string `json:"viewer_url"`
	Transcription   string `json:"transcription"`
	LineHash        string `json:"line_hash,omitempty"`
	InputHash       int64  `json:"_input_hash,omitempty"`
	TaskHash        int64  `json:"_task_hash,omitempty"`
}

// Parse reads the typed view of a raw task.
func Parse(raw []byte) (Task, error) {
	if !gjson.ValidBytes(raw) {
		return Task{}, fmt.Errorf("任务不是合法的 JSON")
	}
	doc := gjson.ParseBytes(raw)
	return Task{
		VolumeID:        doc.Get("volume_id").String(),
		PageNum:         int(doc.Get("page_num").Int()),
		ContextArea:     parseArea(doc.Get("context_area")),
		LineArea:        parseArea(doc.Get("line_area")),
		ContextImageURL: doc.Get("context_image_url").String(),
		LineImageURL:    doc.Get("line_image_url").String(),
		ViewerURL:       doc.Get("viewer_url").String(),
		Transcription:   doc.Get("transcription").String(),
		LineHash:        doc.Get("line_hash").String(),
		InputHash:       doc.Get("_input_hash").Int(),
		TaskHash:        doc.Get("_task_hash").Int(),
	}, nil
}

func parseArea(v gjson.Result) Area {
	return Area{
		X:      int(v.Get("x").Int()),
		Y:      int(v.Get("y").Int()),
		Width:  int(v.Get("width").Int()),
		Height: int(v.Get("height").Int()),
	}
}

// ComputeLineHash identifies a line by volume, page and absolute line box:
// <volume>-<page:05d>-<x>-<y>-<width>-<height>.
func (t Task) ComputeLineHash() string {
	return fmt.Sprintf("%s-%05d-%d-%d-%d-%d",
		t.VolumeID, t.PageNum,
		t.ContextArea.X+t.LineArea.X,
		t.ContextArea.Y+t.LineArea.Y,
		t.LineArea.Width, t.LineArea.Height)
}

// Hash maps a key to a signed 32-bit MurmurHash3 (seed 0), the hash family
// and integer range the host uses for _input_hash and _task_hash.
func Hash(key string) int64 {
	return int64(int32(murmur3.Sum32([]byte(key))))
}

var requiredFields = []string{"volume_id", "page_num", "context_area", "line_area"}

// Enrich prepares a raw task for the host: it adds a blank html field,
// line_hash and the input/task hashes derived from line_hash.
func Enrich(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("任务不是合法的 JSON")
	}
	for _, f := range requiredFields {
		if !gjson.GetBytes(raw, f).Exists() {
			return nil, fmt.Errorf("任务缺少字段 %s", f)
		}
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	lineHash := t.ComputeLineHash()
	inputHash := Hash(lineHash)
	taskHash := Hash(strconv.FormatInt(inputHash, 10) + "|" + lineHash)

	out := raw
	for _, kv := range []struct {
		path string
		val  any
	}{
		{"html", " "},
		{"line_hash", lineHash},
		{"_input_hash", inputHash},
		{"_task_hash", taskHash},
	} {
		if out, err = sjson.SetBytes(out, kv.path, kv.val); err != nil {
			return nil, fmt.Errorf("写入字段 %s 失败: %w", kv.path, err)
		}
	}
	return out, nil
}

// Stream reads JSONL tasks from r, enriches each and passes it to fn.
// Blank lines are skipped; the first failing line aborts with its number.
func Stream(r io.Reader, fn func(raw []byte) error) error {
	return Lines(r, func(line []byte) error {
		enriched, err := Enrich(line)
		if err != nil {
			return err
		}
		return fn(enriched)
	})
}

// Lines calls fn for every non-blank JSONL line of r. Errors returned by fn
// are prefixed with the line number.
func Lines(r io.Reader, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(r)
	// 任务行可能包含较长的 URL 与转写文本
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("第 %d 行: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("读取任务失败: %w", err)
	}
	return nil
}

// BeforeDB prepares an answered task for storage: the placeholder html is
// dropped and uncertainty markers in the transcription get their emoji.
func BeforeDB(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("任务不是合法的 JSON")
	}
	out, err := sjson.DeleteBytes(raw, "html")
	if err != nil {
		return nil, fmt.Errorf("删除 html 失败: %w", err)
	}
	tr := gjson.GetBytes(out, "transcription")
	if !tr.Exists() {
		return out, nil
	}
	out, err = sjson.SetBytes(out, "transcription", annotate.NormalizeUncertainty(tr.String()))
	if err != nil {
		return nil, fmt.Errorf("写入 transcription 失败: %w", err)
	}
	return out, nil
}

// ContextTemplate shows the page region around a line with everything but
// the line dimmed. Clicking the image opens the full-screen line viewer.
const ContextTemplate = `<div class="context-container">
    <p class="viewer-link"><a id="viewer-anchor" href="{{viewer_url}}" target="_blank">Seite im Viewer öffnen</a></p>
    <svg viewBox="0 0 {{context_area.width}} {{context_area.height}}" style="width: min(100%, {{context_area.width}}px)">
        <defs>
            <mask id="highlight-mask">
                <rect x="0" y="0" width="{{context_area.width}}" height="{{context_area.height}}" fill="white" />
                <rect x="{{line_area.x}}" y="{{line_area.y}}" width="{{line_area.width}}" height="{{line_area.height}}" fill="black" />
            </mask>
        </defs>
        <a onclick="showFullScreenLineModal()" style="cursor: pointer;">
            <image xlink:href="{{context_image_url}}" />
            <rect x="0" y="0" width="{{context_area.width}}" height="{{context_area.height}}" mask="url(#highlight-mask)" fill="black" opacity="0.5" />
        </a>
    </svg>
</div>`

// RenderContext fills ContextTemplate from a raw task.
func RenderContext(raw []byte) string {
	return binding.Interpolate(ContextTemplate, raw)
}
