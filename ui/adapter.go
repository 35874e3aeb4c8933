// Package ui connects the annotation core to an annotation host: it keeps
// the per-page Context, reacts to mount and task-change notifications, runs
// the textbox actions and hands a View to the display sink.
package ui

import (
	"github.com/ByLCY/transkribus/annotate"
)

// Adapter drives one transcription field.
type Adapter struct {
	ctx     *Context
	field   Field
	metrics annotate.Metrics
	sink    Sink
	opts    annotate.Options

	payload Payload
	view    View
}

var _ HostListener = (*Adapter)(nil)

// NewAdapter wires field, metrics and sink together. A nil ctx starts a
// fresh page state.
func NewAdapter(ctx *Context, field Field, m annotate.Metrics, sink Sink, opts annotate.Options) *Adapter {
	if ctx == nil {
		ctx = &Context{}
	}
	return &Adapter{ctx: ctx, field: field, metrics: m, sink: sink, opts: opts}
}

// Context returns the page state shared across tasks.
func (a *Adapter) Context() *Context { return a.ctx }

// View returns the last rendered view.
func (a *Adapter) View() View { return a.view }

// OnMount records the first task and the field's initial font size.
func (a *Adapter) OnMount(p Payload) {
	a.ctx.CurrentTask = p.TaskHash
	a.ctx.HasTask = true
	a.ctx.InitialFontSize = a.field.Font().SizePx
	a.payload = p
	a.hook()
}

// OnTaskChanged re-runs the setup for a new task. Repeated notifications for
// the current task are ignored.
func (a *Adapter) OnTaskChanged(p Payload) {
	if a.ctx.HasTask && p.TaskHash == a.ctx.CurrentTask {
		return
	}
	a.ctx.CurrentTask = p.TaskHash
	a.ctx.HasTask = true
	a.payload = p
	a.hook()
}

func (a *Adapter) hook() {
	a.view.ViewerURL = a.payload.ViewerURL
	a.view.Modal = nil
	a.refresh()
}

// OnInput handles an edit of the field.
func (a *Adapter) OnInput() { a.refresh() }

// TogglePicker opens or closes the character picker.
func (a *Adapter) TogglePicker() {
	a.ctx.Picker.Toggle()
	a.publish()
}

// InsertGrapheme replaces the field selection with g and moves the caret
// behind it.
func (a *Adapter) InsertGrapheme(g string) {
	text, caret, ok := annotate.InsertGrapheme(a.field.Value(), a.field.Selection(), g)
	if !ok {
		return
	}
	a.write(text, caret)
}

// MarkUncertain wraps the selected text in uncertainty brackets.
func (a *Adapter) MarkUncertain() {
	text, caret, ok := annotate.MarkUncertain(a.field.Value(), a.field.Selection())
	if !ok {
		return
	}
	a.write(text, caret)
}

// FixLongS replaces every s with ſ.
func (a *Adapter) FixLongS() {
	a.replace(annotate.ApplyLongSSubstitution(a.field.Value()))
}

// FixUmlauts decomposes precomposed umlauts.
func (a *Adapter) FixUmlauts() {
	a.replace(annotate.ApplyUmlautDecomposition(a.field.Value()))
}

// ShowLineModal opens the line image overlay.
func (a *Adapter) ShowLineModal() {
	if a.payload.LineImageURL == "" {
		return
	}
	a.view.Modal = &Modal{ImageURL: a.payload.LineImageURL}
	a.publish()
}

// CloseLineModal closes the overlay.
func (a *Adapter) CloseLineModal() {
	if a.view.Modal == nil {
		return
	}
	a.view.Modal = nil
	a.publish()
}

func (a *Adapter) replace(text string) {
	if text == a.field.Value() {
		return
	}
	n := len([]rune(text))
	a.write(text, n)
}

func (a *Adapter) write(text string, caret int) {
	a.field.SetValue(text)
	a.field.SetSelection(annotate.Selection{Start: caret, End: caret})
	a.refresh()
}

// refresh fits the font size and recomputes the highlighting.
func (a *Adapter) refresh() {
	text := a.field.Value()
	font := a.field.Font()
	initial := a.ctx.InitialFontSize
	if initial <= 0 {
		initial = font.SizePx
	}
	size := annotate.FitFontSize(text, font, a.field.InnerWidth(), initial, a.metrics)
	a.field.SetFontSize(size)

	ann := annotate.Render(text, font.WithSize(size), a.metrics, a.opts)
	a.view.Text = text
	a.view.Background = ann.Background
	a.view.Spans = ann.Result.Spans
	a.view.Warnings = ann.Warnings
	a.view.WarningHTML = WarningsHTML(ann.Warnings)
	a.view.FontSize = size
	a.view.FixLongSEnabled = ann.Result.HasLongS
	a.view.FixUmlautsEnabled = ann.Result.HasUmlaut
	a.publish()
}

func (a *Adapter) publish() {
	a.view.Picker = a.ctx.Picker.Display()
	if a.sink != nil {
		a.sink.Render(a.view)
	}
}
