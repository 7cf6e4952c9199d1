package model

import (
	"sync"
	"time"
)

// Level grades a flash message.
type Level int

const (
	Info Level = iota
	Warn
	Err
)

// Flash holds a transient notification for the status bar.
type Flash struct {
	mu      sync.RWMutex
	message string
	level   Level
	expires time.Time
}

// Set stores msg until d has passed.
func (f *Flash) Set(level Level, msg string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message, f.level = msg, level
	f.expires = time.Now().Add(d)
}

// Get returns the current message, or empty once expired.
func (f *Flash) Get() (string, Level) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return "", Info
	}
	return f.message, f.level
}
