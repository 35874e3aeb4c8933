package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	canvasrenderer "github.com/ByLCY/transkribus/renderer/canvas"
	"github.com/ByLCY/transkribus/session"
	"github.com/ByLCY/transkribus/task"
)

func testOptions(dir string) cliOptions {
	return cliOptions{
		Text:         "ſie baß für",
		Font:         "400 20px monospace",
		Padding:      "4px",
		MaxWidth:     600,
		Segmentation: "codeunit",
		Output:       filepath.Join(dir, "out", "preview.pdf"),
		JSON:         true,
		PageURL:      "http://localhost:8080/",
	}
}

func TestRunWritesPreviewAndReport(t *testing.T) {
	t.Setenv(session.EnvAllowedSessions, "")
	dir := t.TempDir()
	opts := testOptions(dir)
	config := filepath.Join(dir, "config.json")
	if err := os.WriteFile(config, []byte(`{"keyboard":["ſ","ꝛ"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	opts.Config = config

	var out bytes.Buffer
	if err := run(opts, canvasrenderer.NewRenderer(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	pdf, err := os.ReadFile(opts.Output)
	if err != nil {
		t.Fatalf("preview missing: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("preview is not a PDF")
	}

	rep := out.Bytes()
	if !gjson.GetBytes(rep, "view.fixLongSEnabled").Bool() || !gjson.GetBytes(rep, "view.fixUmlautsEnabled").Bool() {
		t.Fatalf("expected both fixes enabled: %s", rep)
	}
	if got := gjson.GetBytes(rep, "view.warnings.#").Int(); got != 2 {
		t.Fatalf("expected two warnings, got %d", got)
	}
	if got := gjson.GetBytes(rep, "keyboard.keys.#").Int(); got != 2 {
		t.Fatalf("keyboard override ignored, got %d keys", got)
	}
	if gjson.GetBytes(rep, "session").Exists() {
		t.Fatalf("no session report expected without allowed sessions")
	}
	if got := gjson.GetBytes(rep, "cells.0.offset").Float(); got != 4 {
		t.Fatalf("first cell must start at the padding, got %v", got)
	}
}

func TestRunSessionPrompt(t *testing.T) {
	t.Setenv(session.EnvAllowedSessions, "anna,ben")
	opts := testOptions(t.TempDir())
	opts.Output = ""
	opts.State = filepath.Join(t.TempDir(), "state.json")

	var out bytes.Buffer
	if err := run(opts, canvasrenderer.NewRenderer(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	prompt := gjson.GetBytes(out.Bytes(), "session.prompt")
	if prompt.Get("session").String() != "anna" || prompt.Get("action").String() != "prompt" {
		t.Fatalf("expected prompt preselecting anna: %s", out.String())
	}
	if prompt.Get("options.#").Int() != 2 || !prompt.Get("remember").Bool() {
		t.Fatalf("unexpected prompt %s", prompt.Raw)
	}

	if err := session.NewFileStore(opts.State).Set(session.PreferenceKey, "ben"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := run(opts, canvasrenderer.NewRenderer(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := gjson.GetBytes(out.Bytes(), "session.redirect").String(); got != "http://localhost:8080/?session=ben" {
		t.Fatalf("expected redirect, got %q", got)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Setenv(session.EnvAllowedSessions, "")
	opts := testOptions(t.TempDir())
	opts.Segmentation = "word"
	if err := run(opts, canvasrenderer.NewRenderer(), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown segmentation")
	}
	opts = testOptions(t.TempDir())
	opts.Font = "20px"
	if err := run(opts, canvasrenderer.NewRenderer(), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for font without family")
	}
	if err := run(testOptions(t.TempDir()), nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestNewRendererFontFile(t *testing.T) {
	if _, err := newRenderer("400 20px Fraktur", filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Fatalf("expected error for unreadable font file")
	}
	r, err := newRenderer("400 20px monospace", "")
	if err != nil || r == nil {
		t.Fatalf("built-in fonts must not fail: %v", err)
	}
}

func TestStreamFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tasks.jsonl")
	line := `{"volume_id":"v","page_num":1,"context_area":{"x":0,"y":0,"width":10,"height":10},"line_area":{"x":1,"y":2,"width":3,"height":4},"context_image_url":"c.jpg"}`
	if err := os.WriteFile(in, []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ctxDir := filepath.Join(dir, "ctx")
	if err := streamFile(in, &out, task.Stream, writeContext(ctxDir)); err != nil {
		t.Fatalf("streamFile: %v", err)
	}
	hash := gjson.GetBytes(out.Bytes(), "_task_hash")
	if !hash.Exists() || gjson.GetBytes(out.Bytes(), "line_hash").String() != "v-00001-1-2-3-4" {
		t.Fatalf("unexpected enriched task %s", out.String())
	}
	svg, err := os.ReadFile(filepath.Join(ctxDir, hash.Raw+".svg"))
	if err != nil {
		t.Fatalf("context svg missing: %v", err)
	}
	if !strings.Contains(string(svg), `xlink:href="c.jpg"`) {
		t.Fatalf("context svg not filled: %s", svg)
	}

	answered := filepath.Join(dir, "answers.jsonl")
	if err := os.WriteFile(answered, []byte(`{"html":" ","transcription":"⟅x⟆"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := streamFile(answered, &out, task.Lines, task.BeforeDB); err != nil {
		t.Fatalf("streamFile: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != `{"transcription":"🤔⟅x⟆"}` {
		t.Fatalf("unexpected cleaned task %s", got)
	}
}
