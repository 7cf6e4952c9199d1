package main

import (
	"flag"

	"go.uber.org/fx"

	"github.com/matheus3301/wxbak/internal/config"
	"github.com/matheus3301/wxbak/internal/daemon"
)

func main() {
	configFlag := flag.String("config", "", "config file (overrides WXBAK_CONFIG)")
	rootFlag := flag.String("root", "", "backup root directory (overrides config)")
	listenFlag := flag.String("listen", "", "HTTP listen address (overrides config)")
	flag.Parse()

	app := fx.New(
		daemon.Module(daemon.Params{
			ConfigPath: config.ResolvePath(*configFlag),
			BackupRoot: *rootFlag,
			ListenAddr: *listenFlag,
		}),
		daemon.Logger(),
	)

	app.Run()
}
