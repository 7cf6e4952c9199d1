package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/wxbak/internal/config"
	"github.com/matheus3301/wxbak/internal/tui"
	"github.com/matheus3301/wxbak/internal/tui/client"
)

func main() {
	configFlag := flag.String("config", "", "config file (overrides WXBAK_CONFIG)")
	rootFlag := flag.String("root", "", "backup root passed to wxbakd when it has to be started")
	flag.Parse()

	configPath := config.ResolvePath(*configFlag)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c := client.New(cfg.ListenAddr)

	// Probe daemon health; auto-start if needed.
	if !probeDaemon(c) {
		fmt.Fprintf(os.Stderr, "wxbakd not running on %s, starting...\n", cfg.ListenAddr)
		if err := startDaemon(configPath, *rootFlag); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(c, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready\n")
			os.Exit(1)
		}
	}

	app := tui.NewApp(c, loc)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probeDaemon reports whether wxbakd answers /healthz.
func probeDaemon(c *client.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Health(ctx)
	return err == nil
}

func startDaemon(configPath, root string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	wxbakd := filepath.Join(filepath.Dir(executable), "wxbakd")

	if _, err := os.Stat(wxbakd); err != nil {
		wxbakd = "wxbakd"
	}

	args := []string{"--config", configPath}
	if root != "" {
		args = append(args, "--root", root)
	}
	cmd := exec.Command(wxbakd, args...)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func waitForDaemon(c *client.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeDaemon(c) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
