// Package lock keeps a single wxbakd running per state directory.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside the state directory.
const FileName = "wxbakd.lock"

// HeldError is returned when another process holds the lock.
type HeldError struct {
	PID    int
	Listen string
	Path   string
}

func (e *HeldError) Error() string {
	if e.Listen != "" {
		return fmt.Sprintf("wxbakd already running as PID %d on %s (%s)", e.PID, e.Listen, e.Path)
	}
	return fmt.Sprintf("wxbakd already running as PID %d (%s)", e.PID, e.Path)
}

// Lock is an acquired lock file.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes an exclusive flock on <dir>/wxbakd.lock and records the PID
// and listen address in it. Returns *HeldError if another process has it.
func Acquire(dir, listen string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		data, _ := os.ReadFile(path)
		held := parse(string(data))
		held.Path = path
		return nil, held
	}

	content := fmt.Sprintf("pid=%d\nlisten=%s\ntime=%s\n", os.Getpid(), listen, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		_ = fl.Unlock()
		return nil, err
	}

	return &Lock{fl: fl}, nil
}

// Release removes and unlocks the file. Safe to call on nil receiver and
// more than once.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	_ = os.Remove(l.fl.Path())
	err := l.fl.Unlock()
	l.fl = nil
	return err
}

func parse(content string) *HeldError {
	var h HeldError
	for _, line := range strings.Split(content, "\n") {
		key, value, _ := strings.Cut(line, "=")
		switch key {
		case "pid":
			h.PID, _ = strconv.Atoi(value)
		case "listen":
			h.Listen = value
		}
	}
	return &h
}
