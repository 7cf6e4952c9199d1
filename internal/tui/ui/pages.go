package ui

import "github.com/rivo/tview"

// Pages is a stack of named pages over tview.Pages. Each entry remembers
// the primitive that takes focus when it is on top.
type Pages struct {
	*tview.Pages
	stack    []entry
	onChange func(top string)
}

type entry struct {
	name  string
	focus tview.Primitive
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange sets the callback fired with the new top page.
func (p *Pages) SetOnChange(fn func(top string)) {
	p.onChange = fn
}

// Push shows name above the current page and returns focus.
func (p *Pages) Push(name string, focus tview.Primitive) tview.Primitive {
	if top, ok := p.top(); ok && top.name == name {
		return top.focus
	}
	p.stack = append(p.stack, entry{name: name, focus: focus})
	p.SwitchToPage(name)
	p.notify()
	return focus
}

// Pop drops the top page and returns the focus of the page now on top,
// or nil when only the root page remains.
func (p *Pages) Pop() tview.Primitive {
	if len(p.stack) <= 1 {
		return nil
	}
	p.stack = p.stack[:len(p.stack)-1]
	top, _ := p.top()
	p.SwitchToPage(top.name)
	p.notify()
	return top.focus
}

// Reset makes name the only page on the stack.
func (p *Pages) Reset(name string, focus tview.Primitive) tview.Primitive {
	p.stack = []entry{{name: name, focus: focus}}
	p.SwitchToPage(name)
	p.notify()
	return focus
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	top, _ := p.top()
	return top.name
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

func (p *Pages) top() (entry, bool) {
	if len(p.stack) == 0 {
		return entry{}, false
	}
	return p.stack[len(p.stack)-1], true
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Current())
	}
}
