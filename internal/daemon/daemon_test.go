package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/wxbak/internal/api"
	"github.com/matheus3301/wxbak/internal/config"
	"github.com/matheus3301/wxbak/internal/fixture"
	"github.com/matheus3301/wxbak/internal/lock"
	"github.com/matheus3301/wxbak/internal/remark"
	"github.com/matheus3301/wxbak/internal/status"
)

func testParams(t *testing.T) Params {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "backup")
	if _, err := fixture.WriteDemo(root, time.Now()); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.LogFile = filepath.Join(dir, "logs", "wxbakd.log")
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Timezone = "UTC"
	path := filepath.Join(dir, "config.toml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	return Params{
		ConfigPath: path,
		BackupRoot: root,
		StateDir:   filepath.Join(dir, "state"),
		Quiet:      true,
	}
}

func TestDaemonLifecycle(t *testing.T) {
	p := testParams(t)

	var (
		srv     *api.Server
		machine *status.Machine
	)
	app := fx.New(Module(p), fx.NopLogger, fx.Populate(&srv, &machine))
	if err := app.Err(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got, _ := machine.Current(); got != status.Serving {
		t.Errorf("state = %s, want SERVING", got)
	}

	// A second instance must not start while the lock is held.
	if _, err := lock.Acquire(p.StateDir, "other"); err == nil {
		t.Error("expected lock to be held")
	} else {
		var held *lock.HeldError
		if !errors.As(err, &held) {
			t.Errorf("error = %v, want *lock.HeldError", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/chats?userMd5="+remark.Hash(fixture.DemoOwner), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/chats = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Weekend Hikers") {
		t.Errorf("chat list missing group: %s", rec.Body.String())
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got, _ := machine.Current(); got != status.Stopped {
		t.Errorf("state = %s, want STOPPED", got)
	}

	lk, err := lock.Acquire(p.StateDir, "after")
	if err != nil {
		t.Fatalf("lock not released: %v", err)
	}
	_ = lk.Release()
}

func TestDaemonRefusesSecondInstance(t *testing.T) {
	p := testParams(t)

	lk, err := lock.Acquire(p.StateDir, "127.0.0.1:1")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	app := fx.New(Module(p), fx.NopLogger)
	var held *lock.HeldError
	if err := app.Err(); !errors.As(err, &held) {
		t.Fatalf("Err() = %v, want *lock.HeldError", err)
	}
	if held.Listen != "127.0.0.1:1" {
		t.Errorf("held listen = %q", held.Listen)
	}
}

func TestDaemonRequiresBackupRoot(t *testing.T) {
	p := testParams(t)
	p.BackupRoot = ""
	t.Setenv("WXBAK_BACKUP_ROOT", "")

	app := fx.New(Module(p), fx.NopLogger)
	var verr *config.ValidationError
	if err := app.Err(); !errors.As(err, &verr) {
		t.Fatalf("Err() = %v, want *config.ValidationError", err)
	}
}

func TestServeFailureEndsInError(t *testing.T) {
	machine := status.NewMachine()
	srv := api.NewServer(nil, api.Options{}, machine, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	// A closed listener makes Serve fail on the first Accept.
	_ = ln.Close()

	if err := startServing(srv, ln, machine, zap.NewNop()); err != nil {
		t.Fatalf("startServing: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		state, _ := machine.Current()
		if state == status.Error {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want %s", state, status.Error)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartServingRejectsStoppedMachine(t *testing.T) {
	machine := status.NewMachine()
	for _, s := range []status.State{status.Serving, status.Stopping, status.Stopped} {
		if err := machine.Transition(s); err != nil {
			t.Fatal(err)
		}
	}
	srv := api.NewServer(nil, api.Options{}, machine, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := startServing(srv, ln, machine, zap.NewNop()); err == nil {
		t.Fatal("startServing from Stopped succeeded")
	}
	// The listener is closed on failure.
	if _, err := ln.Accept(); err == nil {
		t.Error("listener still open")
	}
}
