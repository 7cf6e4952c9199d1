// Package daemon wires wxbakd: configuration, logging, the single-instance
// lock, the conversation indexer and the HTTP API.
package daemon

import (
	"context"
	"fmt"
	"net"

	"github.com/okzk/sdnotify"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/matheus3301/wxbak/internal/api"
	"github.com/matheus3301/wxbak/internal/config"
	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/lock"
	"github.com/matheus3301/wxbak/internal/logging"
	"github.com/matheus3301/wxbak/internal/status"
)

// Params holds the command-line inputs passed to the fx module.
type Params struct {
	ConfigPath string
	// BackupRoot and ListenAddr override the loaded configuration when set.
	BackupRoot string
	ListenAddr string
	// StateDir holds the lock file; empty = config.BaseDir().
	StateDir string
	// Quiet drops stderr logging.
	Quiet bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideStateMachine,
			provideLock,
			provideIndexer,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

// Logger routes fx's own events through the daemon logger.
func Logger() fx.Option {
	return fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	})
}

func provideConfig(p Params) (*config.Config, error) {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, err
	}
	if p.BackupRoot != "" {
		cfg.BackupRoot = p.BackupRoot
	}
	if p.ListenAddr != "" {
		cfg.ListenAddr = p.ListenAddr
	}
	if cfg.BackupRoot == "" {
		return nil, &config.ValidationError{Field: "backup_root", Message: "is required"}
	}
	return cfg, nil
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Path:      cfg.LogFile,
		Level:     cfg.LogLevel,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Component: "wxbakd",
		Quiet:     p.Quiet,
	})
}

func provideStateMachine(logger *zap.Logger) *status.Machine {
	m := status.NewMachine()
	m.OnChange(func(c status.Change) {
		logger.Info("state changed", zap.String("from", string(c.From)), zap.String("to", string(c.To)))
	})
	return m
}

func provideLock(p Params, cfg *config.Config, logger *zap.Logger) (*lock.Lock, error) {
	dir := p.StateDir
	if dir == "" {
		dir = config.BaseDir()
	}
	logger.Info("acquiring instance lock", zap.String("dir", dir))
	l, err := lock.Acquire(dir, cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	logger.Info("instance lock acquired")
	return l, nil
}

func provideIndexer(cfg *config.Config, logger *zap.Logger) (*conversation.Indexer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return conversation.New(logger.Named("index"),
		conversation.WithLocation(loc),
		conversation.WithWindow(conversation.WindowPolicy(cfg.DefaultWindow)),
		conversation.WithLimit(cfg.PageSize),
	), nil
}

func provideServer(cfg *config.Config, ix *conversation.Indexer, m *status.Machine, logger *zap.Logger) *api.Server {
	return api.NewServer(ix, api.Options{
		Root:            cfg.BackupRoot,
		ListenAddr:      cfg.ListenAddr,
		MinMessageCount: cfg.MinMessageCount,
		ExportLimit:     cfg.ExportLimit,
	}, m, logger.Named("http"))
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, srv *api.Server, lk *lock.Lock, machine *status.Machine, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := srv.Listen()
			if err != nil {
				_ = machine.Transition(status.Error)
				return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
			}
			logger.Info("serving backup",
				zap.String("root", cfg.BackupRoot),
				zap.String("addr", ln.Addr().String()),
			)

			if err := startServing(srv, ln, machine, logger); err != nil {
				return err
			}
			// No-op unless started by systemd with Type=notify.
			_ = sdnotify.Ready()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = sdnotify.Stopping()
			_ = machine.Transition(status.Stopping)
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			_ = machine.Transition(status.Stopped)
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

// startServing moves the machine to Serving and only then starts the accept
// loop, so a serve failure always lands on Error.
func startServing(srv *api.Server, ln net.Listener, machine *status.Machine, logger *zap.Logger) error {
	if err := machine.Transition(status.Serving); err != nil {
		_ = ln.Close()
		return err
	}
	go serve(srv, ln, machine, logger)
	return nil
}

func serve(srv *api.Server, ln net.Listener, machine *status.Machine, logger *zap.Logger) {
	if err := srv.Serve(ln); err != nil {
		logger.Error("http server error", zap.Error(err))
		_ = machine.Transition(status.Error)
	}
}
