package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/transkribus/annotate"
	"github.com/ByLCY/transkribus/cssfont"
	"github.com/ByLCY/transkribus/session"
)

// stubMetrics 每个码点宽 10px（20px 字号时），按字号线性缩放。
type stubMetrics struct{}

func (stubMetrics) TextWidth(text string, font annotate.FontDescriptor) float64 {
	return float64(utf8.RuneCountInString(text)) * 10 * font.SizePx / 20
}

type recordingSink struct {
	views []View
}

func (s *recordingSink) Render(v View) { s.views = append(s.views, v) }

func newTestAdapter(t *testing.T, text string) (*Adapter, *MemoryField, *recordingSink) {
	t.Helper()
	style := cssfont.ComputedStyle{"font-size": "20px", "font-family": "monospace", "padding-left": "0px"}
	field, err := NewMemoryField(text, style, 100)
	if err != nil {
		t.Fatalf("NewMemoryField: %v", err)
	}
	sink := &recordingSink{}
	return NewAdapter(nil, field, stubMetrics{}, sink, annotate.Options{}), field, sink
}

func TestParsePayload(t *testing.T) {
	mount := `{"content":{"_task_hash":-42,"line_image_url":"l.png","viewer_url":"v","context_image_url":"c"},"config":{"session":"anna"}}`
	p, err := ParsePayload([]byte(mount))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if p.TaskHash != -42 || p.Session != "anna" || p.LineImageURL != "l.png" || p.ViewerURL != "v" || p.ContextImageURL != "c" {
		t.Fatalf("unexpected payload %+v", p)
	}

	p, err = ParsePayload([]byte(`{"task":{"_task_hash":7}}`))
	if err != nil || p.TaskHash != 7 {
		t.Fatalf("update shape: %+v %v", p, err)
	}
	p, err = ParsePayload([]byte(`{"_task_hash":8}`))
	if err != nil || p.TaskHash != 8 {
		t.Fatalf("bare shape: %+v %v", p, err)
	}
	if _, err := ParsePayload([]byte(`{`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestMountRendersHighlighting(t *testing.T) {
	a, _, sink := newTestAdapter(t, "ſie baß")
	a.OnMount(Payload{TaskHash: 1, ViewerURL: "https://viewer"})

	if !a.Context().HasTask || a.Context().CurrentTask != 1 || a.Context().InitialFontSize != 20 {
		t.Fatalf("unexpected context %+v", a.Context())
	}
	if len(sink.views) != 1 {
		t.Fatalf("expected one render, got %d", len(sink.views))
	}
	v := sink.views[0]
	if !v.FixLongSEnabled || v.FixUmlautsEnabled {
		t.Fatalf("unexpected button state %+v", v)
	}
	if len(v.Warnings) != 1 || v.Warnings[0].Message != annotate.LongSWarning {
		t.Fatalf("unexpected warnings %+v", v.Warnings)
	}
	if !strings.HasPrefix(v.Background, "linear-gradient(to right, ") || v.ViewerURL != "https://viewer" {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Picker != "none" || v.FontSize != 20 {
		t.Fatalf("unexpected picker/font state %+v", v)
	}
}

func TestTaskChangeIgnoresSameTask(t *testing.T) {
	a, _, sink := newTestAdapter(t, "abc")
	a.OnMount(Payload{TaskHash: 1})
	a.OnTaskChanged(Payload{TaskHash: 1})
	if len(sink.views) != 1 {
		t.Fatalf("same task must not re-render, got %d renders", len(sink.views))
	}
	a.OnTaskChanged(Payload{TaskHash: 2})
	if len(sink.views) != 2 || a.Context().CurrentTask != 2 {
		t.Fatalf("new task must re-render")
	}
}

func TestFontShrinksAndRecovers(t *testing.T) {
	a, field, _ := newTestAdapter(t, strings.Repeat("x", 20))
	a.OnMount(Payload{TaskHash: 1})
	size := a.View().FontSize
	if size > 10 || size < 9.8 {
		t.Fatalf("expected font near 10px, got %v", size)
	}
	if field.Font().SizePx != size {
		t.Fatalf("field font not updated: %v", field.Font().SizePx)
	}

	field.SetValue("xx")
	a.OnInput()
	if got := a.View().FontSize; got != 20 {
		t.Fatalf("short text must return to the initial size, got %v", got)
	}
}

func TestInsertGraphemeAndMarkUncertain(t *testing.T) {
	a, field, _ := newTestAdapter(t, "ab")
	a.OnMount(Payload{TaskHash: 1})

	field.SetSelection(annotate.Selection{Start: 1, End: 1})
	a.InsertGrapheme("ſ")
	if field.Value() != "aſb" || field.Selection() != (annotate.Selection{Start: 2, End: 2}) {
		t.Fatalf("got %q %+v", field.Value(), field.Selection())
	}
	if field.Writes != 1 {
		t.Fatalf("value must be pushed to the host state once, got %d", field.Writes)
	}

	a.MarkUncertain()
	if field.Value() != "aſb" || field.Writes != 1 {
		t.Fatalf("collapsed selection must be ignored")
	}

	field.SetSelection(annotate.Selection{Start: 0, End: 2})
	a.MarkUncertain()
	if field.Value() != "⟅aſ⟆b" {
		t.Fatalf("got %q", field.Value())
	}
	spans := a.View().Spans
	if len(spans) == 0 || spans[0].Color != annotate.Uncertainty {
		t.Fatalf("expected uncertainty span first, got %+v", spans)
	}

	field.SetSelection(annotate.Selection{Start: 3, End: 99})
	a.InsertGrapheme("x")
	if field.Value() != "⟅aſ⟆b" {
		t.Fatalf("out-of-range selection must be ignored")
	}
}

func TestFixActions(t *testing.T) {
	a, field, _ := newTestAdapter(t, "für das")
	a.OnMount(Payload{TaskHash: 1})
	if v := a.View(); !v.FixLongSEnabled || !v.FixUmlautsEnabled {
		t.Fatalf("both fixes must be enabled: %+v", v)
	}
	if !strings.HasPrefix(a.View().WarningHTML, `<p style="color: rgb(0, 128, 0)"`) {
		t.Fatalf("umlaut warning must be shown first: %s", a.View().WarningHTML)
	}

	a.FixUmlauts()
	if field.Value() != "fuͤr das" {
		t.Fatalf("got %q", field.Value())
	}
	a.FixLongS()
	if field.Value() != "fuͤr daſ" {
		t.Fatalf("got %q", field.Value())
	}

	writes := field.Writes
	a.FixLongS()
	if field.Writes != writes {
		t.Fatalf("idempotent fix must not write again")
	}
}

func TestPickerAndModal(t *testing.T) {
	a, _, sink := newTestAdapter(t, "abc")
	a.OnMount(Payload{TaskHash: 1, LineImageURL: "line.png"})

	a.TogglePicker()
	if a.View().Picker != "grid" {
		t.Fatalf("picker must be open")
	}
	a.OnTaskChanged(Payload{TaskHash: 2, LineImageURL: "line2.png"})
	if a.View().Picker != "grid" {
		t.Fatalf("picker state must survive task changes")
	}

	a.ShowLineModal()
	if m := a.View().Modal; m == nil || m.ImageURL != "line2.png" {
		t.Fatalf("unexpected modal %+v", m)
	}
	a.CloseLineModal()
	n := len(sink.views)
	a.CloseLineModal()
	if a.View().Modal != nil || len(sink.views) != n {
		t.Fatalf("closing twice must be a no-op")
	}
}

func TestListenersFanOut(t *testing.T) {
	a1, _, s1 := newTestAdapter(t, "a")
	a2, _, s2 := newTestAdapter(t, "b")
	ls := Listeners{a1, a2}
	ls.OnMount(Payload{TaskHash: 1})
	ls.OnTaskChanged(Payload{TaskHash: 2})
	if len(s1.views) != 2 || len(s2.views) != 2 {
		t.Fatalf("both listeners must see both notifications")
	}
}

type recordingNav struct {
	urls    []string
	prompts []session.Decision
}

func (n *recordingNav) Navigate(url string) { n.urls = append(n.urls, url) }
func (n *recordingNav) Prompt(d session.Decision) { n.prompts = append(n.prompts, d) }

func TestSessionGuard(t *testing.T) {
	nav := &recordingNav{}
	store := session.MemoryStore{}
	g := &SessionGuard{Allowed: []string{"anna", "ben"}, Store: store, PageURL: "http://localhost:8080/", Nav: nav}

	g.OnMount(Payload{Session: "ben"})
	if len(nav.urls) != 0 || len(nav.prompts) != 0 {
		t.Fatalf("allowed session must stay")
	}

	g.OnMount(Payload{})
	if len(nav.prompts) != 1 || nav.prompts[0].Session != "anna" {
		t.Fatalf("expected prompt, got %+v", nav.prompts)
	}
	g.Choose("ben", true)
	if len(nav.urls) != 1 || nav.urls[0] != "http://localhost:8080/?session=ben" {
		t.Fatalf("unexpected redirect %v", nav.urls)
	}

	g.OnMount(Payload{Session: "mallory"})
	if len(nav.urls) != 2 || nav.urls[1] != "http://localhost:8080/?session=ben" {
		t.Fatalf("remembered session must redirect, got %v", nav.urls)
	}
	if g.Err != nil {
		t.Fatalf("unexpected error %v", g.Err)
	}
}
