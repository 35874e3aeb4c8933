package ui

import (
	"github.com/ByLCY/transkribus/session"
)

// Navigator performs what the session guard decides.
type Navigator interface {
	Navigate(url string)
	Prompt(d session.Decision)
}

// SessionGuard makes sure the page runs under an allowed named session.
type SessionGuard struct {
	Allowed []string
	Store   session.Store
	PageURL string
	Nav     Navigator

	// Err holds the last failure; the page keeps working without a guard.
	Err error
}

var _ HostListener = (*SessionGuard)(nil)

// OnMount resolves the session once per page load.
func (g *SessionGuard) OnMount(p Payload) {
	d, err := session.Resolve(session.Config{Allowed: g.Allowed, Current: p.Session}, g.Store)
	if err != nil {
		g.Err = err
		return
	}
	g.apply(d)
}

// OnTaskChanged does nothing; the session is fixed for the page.
func (g *SessionGuard) OnTaskChanged(Payload) {}

// Choose completes a prompt with the user's answer.
func (g *SessionGuard) Choose(choice string, remember bool) {
	d, err := session.Choose(g.Store, choice, remember)
	if err != nil {
		g.Err = err
		return
	}
	g.apply(d)
}

func (g *SessionGuard) apply(d session.Decision) {
	if g.Nav == nil {
		return
	}
	switch d.Action {
	case session.Redirect:
		target, err := session.RedirectURL(g.PageURL, d.Session)
		if err != nil {
			g.Err = err
			return
		}
		g.Nav.Navigate(target)
	case session.Prompt:
		g.Nav.Prompt(d)
	}
}
