package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/fsrmon/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/fsrmon/config.toml)")
	host := flag.String("host", "", "controller host:port (optional, defaults to localhost:5000)")
	history := flag.Int("history", 0, "readings kept per sensor (optional, defaults to 1000)")
	fps := flag.Float64("fps", 0, "render rate limit (optional, defaults to 60.1)")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address (optional)")
	logFile := flag.String("log", "", "log file path (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		Host:        *host,
		HistorySize: *history,
		FPS:         *fps,
		MetricsAddr: *metricsAddr,
		LogFile:     *logFile,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "fsrmon: %v\n", err)
		return 1
	}
	return 0
}
