package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/matheus3301/wxbak/internal/config"
	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/logging"
	"github.com/matheus3301/wxbak/internal/mcptools"
)

var version = "dev"

func main() {
	configFlag := flag.String("config", "", "config file (overrides WXBAK_CONFIG)")
	rootFlag := flag.String("root", "", "backup root directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(config.ResolvePath(*configFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *rootFlag != "" {
		cfg.BackupRoot = *rootFlag
	}
	if cfg.BackupRoot == "" {
		fmt.Fprintln(os.Stderr, "error: no backup root: pass --root or set backup_root")
		os.Exit(1)
	}

	// stdout carries the protocol, so log to the file only.
	logger, err := logging.New(logging.Options{
		Path:      cfg.LogFile,
		Level:     cfg.LogLevel,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Component: "wxbakmcp",
		Quiet:     true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	ix := conversation.New(logger,
		conversation.WithLocation(loc),
		conversation.WithWindow(conversation.WindowPolicy(cfg.DefaultWindow)),
		conversation.WithLimit(cfg.PageSize),
	)

	s := mcptools.NewMCPServer("wxbak", version, mcptools.New(cfg.BackupRoot, ix, cfg.MinMessageCount))
	logger.Info("mcp server starting", zap.String("root", cfg.BackupRoot))
	if err := mcptools.Serve(s); err != nil {
		logger.Error("mcp server stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
