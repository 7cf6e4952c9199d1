package status

import "testing"

func TestInitialState(t *testing.T) {
	m := NewMachine()
	if s, _ := m.Current(); s != Booting {
		t.Errorf("initial state = %s, want BOOTING", s)
	}
}

func TestLifecycle(t *testing.T) {
	m := NewMachine()
	var seen []Change
	m.OnChange(func(c Change) { seen = append(seen, c) })

	for _, to := range []State{Serving, Stopping, Stopped} {
		if err := m.Transition(to); err != nil {
			t.Fatalf("Transition(%s) error = %v", to, err)
		}
	}
	if s, _ := m.Current(); s != Stopped {
		t.Errorf("state = %s, want STOPPED", s)
	}
	if len(seen) != 3 || seen[0].From != Booting || seen[2].To != Stopped {
		t.Errorf("changes = %+v", seen)
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		walk []State
		to   State
	}{
		{nil, Stopped},
		{nil, Stopping},
		{[]State{Serving}, Booting},
		{[]State{Serving, Stopping, Stopped}, Serving},
	}
	for _, tt := range tests {
		m := NewMachine()
		for _, s := range tt.walk {
			if err := m.Transition(s); err != nil {
				t.Fatal(err)
			}
		}
		if err := m.Transition(tt.to); err == nil {
			t.Errorf("Transition(%v -> %s) should fail", tt.walk, tt.to)
		}
	}
}

func TestErrorRecovery(t *testing.T) {
	m := NewMachine()
	if err := m.Transition(Error); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(Booting); err != nil {
		t.Errorf("Error -> Booting should be allowed: %v", err)
	}
}
