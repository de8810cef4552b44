package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/five82/fsrmon/internal/config"
	"github.com/five82/fsrmon/internal/fsr"
	"github.com/five82/fsrmon/internal/logging"
	"github.com/five82/fsrmon/internal/metrics"
	"github.com/five82/fsrmon/internal/prefs"
	"github.com/five82/fsrmon/internal/session"
	"github.com/five82/fsrmon/internal/ui"
)

// Options configure the fsrmon application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/fsrmon/prefs.toml
	Host        string
	HistorySize int
	FPS         float64
	MetricsAddr string
	LogFile     string
}

// Run boots the fsrmon TUI until the user quits or the context is cancelled.
// An unreachable controller is not an error; the session keeps retrying.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)

	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	m := metrics.New()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	sess, err := NewSession(cfg, logger, m)
	if err != nil {
		return err
	}
	logger.Info().
		Str("host", cfg.Host).
		Int("history", cfg.HistorySize).
		Float64("fps", cfg.FPS).
		Msg("fsrmon starting")
	sess.Start(ctx)
	defer sess.Close()

	return ui.Run(ui.Options{
		Context:   ctx,
		Backend:   sess,
		Logger:    logger,
		Metrics:   m,
		FPS:       cfg.FPS,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogFile,
	})
}

// NewSession builds the synchronized session for the configured controller.
// Nothing connects until Start.
func NewSession(cfg config.Config, logger zerolog.Logger, m *metrics.Metrics) (*session.Session, error) {
	client, err := fsr.NewClient(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("init pad client: %w", err)
	}
	header := http.Header{}
	header.Set("User-Agent", client.UserAgent())

	return session.New(session.Options{
		Fetcher:     client,
		URL:         client.WebsocketURL(),
		Header:      header,
		HistorySize: cfg.HistorySize,
		RetryDelay:  cfg.RetryDelay,
		Logger:      logger,
		Metrics:     m,
	}), nil
}

func applyOverrides(cfg config.Config, opts Options) config.Config {
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.HistorySize > 0 {
		cfg.HistorySize = opts.HistorySize
	}
	if opts.FPS > 0 {
		cfg.FPS = opts.FPS
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	if opts.LogFile != "" {
		if path, err := config.ExpandPath(opts.LogFile); err == nil {
			cfg.LogFile = path
		}
	}
	return cfg
}
