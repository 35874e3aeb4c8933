package ui

import (
	"fmt"
	"strings"

	"github.com/ByLCY/transkribus/annotate"
)

// WarningPrefix precedes every warning line.
const WarningPrefix = "⚠️ Achtung:"

// Modal is the full-screen line image overlay.
type Modal struct {
	ImageURL string `json:"imageUrl"`
}

// View is everything the display sink draws for the current field state.
type View struct {
	Text        string             `json:"text"`
	Background  string             `json:"background"`
	Spans       []annotate.Span    `json:"spans"`
	Warnings    []annotate.Warning `json:"warnings"`
	WarningHTML string             `json:"warningHtml"`
	FontSize    float64            `json:"fontSize"`
	ViewerURL   string             `json:"viewerUrl"`
	Picker      string             `json:"pickerDisplay"`
	Modal       *Modal             `json:"modal,omitempty"`

	FixLongSEnabled   bool `json:"fixLongSEnabled"`
	FixUmlautsEnabled bool `json:"fixUmlautsEnabled"`
}

// Sink receives a fresh View after every change.
type Sink interface {
	Render(v View)
}

// WarningsHTML renders warnings the way the page container shows them:
// each one is inserted at the top, so the last warning comes first.
func WarningsHTML(ws []annotate.Warning) string {
	var b strings.Builder
	for i := len(ws) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, `<p style="color: %s" class="transcription-warning"><strong>%s</strong> %s</p>`,
			ws[i].Color.CSS(), WarningPrefix, ws[i].Message)
	}
	return b.String()
}
