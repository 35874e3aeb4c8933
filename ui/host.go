package ui

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ByLCY/transkribus/picker"
)

// Payload is what the host hands over on mount and on task changes.
type Payload struct {
	TaskHash        int64  `json:"_task_hash"`
	Session         string `json:"session,omitempty"`
	ContextImageURL string `json:"context_image_url"`
	LineImageURL    string `json:"line_image_url"`
	ViewerURL       string `json:"viewer_url"`
}

// ParsePayload reads a host notification. It accepts the mount shape
// {"content": {...}, "config": {...}}, the update shape {"task": {...}} and
// a bare task object.
func ParsePayload(raw []byte) (Payload, error) {
	if !gjson.ValidBytes(raw) {
		return Payload{}, fmt.Errorf("宿主消息不是合法的 JSON")
	}
	doc := gjson.ParseBytes(raw)
	content := doc
	switch {
	case doc.Get("content").IsObject():
		content = doc.Get("content")
	case doc.Get("task").IsObject():
		content = doc.Get("task")
	case doc.Get("detail.task").IsObject():
		content = doc.Get("detail.task")
	}
	return Payload{
		TaskHash:        content.Get("_task_hash").Int(),
		Session:         doc.Get("config.session").String(),
		ContextImageURL: content.Get("context_image_url").String(),
		LineImageURL:    content.Get("line_image_url").String(),
		ViewerURL:       content.Get("viewer_url").String(),
	}, nil
}

// HostListener receives the host's lifecycle notifications.
type HostListener interface {
	OnMount(p Payload)
	OnTaskChanged(p Payload)
}

// Listeners fans notifications out in order.
type Listeners []HostListener

func (ls Listeners) OnMount(p Payload) {
	for _, l := range ls {
		l.OnMount(p)
	}
}

func (ls Listeners) OnTaskChanged(p Payload) {
	for _, l := range ls {
		l.OnTaskChanged(p)
	}
}

// Context is the state kept across tasks of one page. It is only touched
// from the host's event loop.
type Context struct {
	CurrentTask     int64
	HasTask         bool
	Picker          picker.Visibility
	InitialFontSize float64
}
