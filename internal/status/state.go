// Package status tracks the lifecycle state of wxbakd for the health endpoint.
package status

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// State represents a daemon runtime state.
type State string

const (
	Booting  State = "BOOTING"
	Serving  State = "SERVING"
	Stopping State = "STOPPING"
	Stopped  State = "STOPPED"
	Error    State = "ERROR"
)

var validTransitions = map[State][]State{
	Booting:  {Serving, Error},
	Serving:  {Stopping, Error},
	Stopping: {Stopped, Error},
	Error:    {Stopping, Booting},
	Stopped:  {},
}

// Change describes one transition.
type Change struct {
	From State
	To   State
	At   time.Time
}

// Machine tracks and enforces daemon runtime state transitions.
type Machine struct {
	mu       sync.RWMutex
	current  State
	since    time.Time
	onChange []func(Change)
}

// NewMachine creates a state machine starting in Booting.
func NewMachine() *Machine {
	return &Machine{current: Booting, since: time.Now()}
}

// Current returns the current state and when it was entered.
func (m *Machine) Current() (State, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.since
}

// OnChange registers fn to run after every successful transition.
func (m *Machine) OnChange(fn func(Change)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		from := m.current
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	c := Change{From: m.current, To: to, At: time.Now()}
	m.current, m.since = to, c.At
	listeners := slices.Clone(m.onChange)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return nil
}
