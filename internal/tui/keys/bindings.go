// Package keys maps key events to browser actions per page.
package keys

import (
	"slices"

	"github.com/gdamore/tcell/v2"
)

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings per page, in registration order.
type Registry struct {
	global []*Action
	pages  map[string][]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string][]*Action)}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(a *Action) {
	r.global = append(r.global, a)
}

// AddPage registers a binding active on one page. Page bindings win over
// global ones for the same key.
func (r *Registry) AddPage(page string, a *Action) {
	r.pages[page] = append(r.pages[page], a)
}

// Hints returns the descriptions shown for page, page bindings first.
// Actions with an empty description are hidden.
func (r *Registry) Hints(page string) []string {
	var hints []string
	for _, a := range slices.Concat(r.pages[page], r.global) {
		if a.Description != "" {
			hints = append(hints, a.Description)
		}
	}
	return hints
}

// HandleEvent runs the first action matching ev on page and reports
// whether one did.
func (r *Registry) HandleEvent(page string, ev *tcell.EventKey) bool {
	for _, a := range r.pages[page] {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}
