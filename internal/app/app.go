// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/law-makers/datalayer/internal/capture"
	"github.com/law-makers/datalayer/internal/config"
	"github.com/law-makers/datalayer/internal/datalayer"
	"github.com/law-makers/datalayer/internal/engine"
	"github.com/law-makers/datalayer/internal/engine/dynamic"
	"github.com/law-makers/datalayer/internal/engine/static"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Use Close() to release the log
// file and idle connections.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	HTTPClient *http.Client
	logFile    *lumberjack.Logger
	startTime  time.Time
}

// New creates and initializes a new Application from cfg. It installs the
// configured logger as the global zerolog logger.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger, logFile, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	log.Logger = logger

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	a := &Application{
		Config:     cfg,
		Logger:     &logger,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout, Transport: transport},
		logFile:    logFile,
		startTime:  time.Now(),
	}

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("log_file", cfg.LogFile).
		Str("mode", string(cfg.Mode)).
		Msg("Application initialized")
	return a, nil
}

// setupLogging builds the logger: console or JSON on stderr, plus a rotating
// JSON file when configured.
func setupLogging(cfg *config.Config, stderr io.Writer) (zerolog.Logger, *lumberjack.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	if cfg.JSONLog {
		out = stderr
	}

	var logFile *lumberjack.Logger
	if cfg.LogFile != "" {
		logFile = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   cfg.LogCompress,
		}
		out = zerolog.MultiLevelWriter(out, logFile)
	}

	return zerolog.New(out).With().Timestamp().Logger(), logFile, nil
}

// NewDriver creates the page driver selected by the configured mode.
// progress, when non-nil, receives the link activation progress bar.
func (a *Application) NewDriver(headers map[string]string, progress io.Writer) (engine.PageDriver, error) {
	cfg := a.Config
	switch cfg.Mode {
	case config.ModeStatic:
		ua := cfg.UserAgent
		if ua == "" {
			ua = config.DefaultStaticUserAgent
		}
		return static.New(static.Options{
			Client:    a.HTTPClient,
			UserAgent: ua,
			Headers:   headers,
			QueueName: cfg.QueueName,
		}), nil
	case config.ModeBrowser:
		d, err := dynamic.New(dynamic.Options{
			Headless:          cfg.BrowserHeadless,
			ChromePath:        cfg.ChromePath,
			UserAgent:         cfg.UserAgent,
			Proxy:             cfg.Proxy,
			Headers:           headers,
			ViewportWidth:     cfg.ViewportWidth,
			ViewportHeight:    cfg.ViewportHeight,
			ScrollStep:        cfg.ScrollStep,
			ScrollInterval:    cfg.ScrollInterval,
			LinkPause:         cfg.LinkPause,
			SettleMode:        engine.SettleMode(cfg.SettleMode),
			NavigationTimeout: cfg.NavigationTimeout,
			QueueName:         cfg.QueueName,
			Progress:          progress,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, engine.NewEngineError(engine.ErrCodeConfig, "unknown mode", engine.ErrUnsupported).
		WithDetail("mode", cfg.Mode)
}

// CaptureOptions maps the configuration onto pipeline options.
func (a *Application) CaptureOptions() capture.Options {
	cfg := a.Config
	return capture.Options{
		ScrollSettle:      cfg.ScrollSettle,
		InteractionSettle: cfg.InteractionSettle,
		RawOutput:         cfg.RawOutput,
		Collect: datalayer.Options{
			PayloadKey:       cfg.PayloadKey,
			Keywords:         cfg.Keywords,
			InteractionEvent: cfg.InteractionEvent,
		},
	}
}

// Close releases idle connections and the log file.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
