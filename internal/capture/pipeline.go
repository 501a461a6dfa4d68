// Package capture runs one dataLayer capture: drive the page, read the event
// queue once, and turn the selected events into a uniform table.
package capture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/datalayer/internal/datalayer"
	"github.com/law-makers/datalayer/internal/engine"
	"github.com/law-makers/datalayer/internal/reqctx"
	"github.com/law-makers/datalayer/internal/schema"
)

// Exporter persists the reconciled table.
type Exporter interface {
	Export(table *schema.Table) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(table *schema.Table) error

func (f ExporterFunc) Export(table *schema.Table) error { return f(table) }

// Options configures a Pipeline.
type Options struct {
	// ScrollSettle is waited after scrolling, before links are activated.
	ScrollSettle time.Duration
	// InteractionSettle is waited after link activation, before the snapshot.
	InteractionSettle time.Duration

	Collect datalayer.Options

	// RawOutput, when set, receives the snapshot exactly as read.
	RawOutput string
}

// Timings records how long each stage took.
type Timings struct {
	Navigate time.Duration
	Scroll   time.Duration
	Interact time.Duration
	Snapshot time.Duration
	Export   time.Duration
	Total    time.Duration
}

// Result summarizes a finished run.
type Result struct {
	RunID string
	URL   string
	// Events is the number of entries in the snapshot; -1 when no queue was found.
	Events  int
	Records int
	Table   *schema.Table
	Timings Timings
}

// Pipeline sequences a PageDriver, the collector, the reconciler and an
// Exporter. It is single-use per run but may be reused across runs.
type Pipeline struct {
	driver   engine.PageDriver
	exporter Exporter
	opts     Options
}

// New creates a Pipeline. A nil exporter skips the export stage.
func New(driver engine.PageDriver, exporter Exporter, opts Options) *Pipeline {
	return &Pipeline{driver: driver, exporter: exporter, opts: opts}
}

// Run performs one capture of url. Every stage completes before the next
// begins; the first failure aborts the run and nothing is exported.
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	ctx = reqctx.WithRunContext(ctx)
	rc := reqctx.GetRunContext(ctx)
	logger := log.With().Str("run_id", rc.RunID).Str("driver", p.driver.Name()).Logger()

	if strings.TrimSpace(url) == "" {
		return nil, reqctx.NewRunError(ctx,
			engine.NewEngineError(engine.ErrCodeValidation, "no URL given", engine.ErrMissingURL))
	}

	res := &Result{RunID: rc.RunID, URL: url, Events: -1}
	logger.Info().Str("url", url).Msg("Starting capture")

	raw, err := p.drive(ctx, logger, url, &res.Timings)
	if err != nil {
		return nil, reqctx.NewRunError(ctx, err)
	}

	if p.opts.RawOutput != "" {
		if err := os.WriteFile(p.opts.RawOutput, raw, 0o644); err != nil {
			return nil, reqctx.NewRunError(ctx, engine.NewEngineError(engine.ErrCodeExport,
				"failed to write raw snapshot", fmt.Errorf("%w: %w", engine.ErrExport, err)))
		}
		logger.Debug().Str("path", p.opts.RawOutput).Int("bytes", len(raw)).Msg("Raw snapshot written")
	}

	snapshot, err := datalayer.Decode(raw)
	if err != nil {
		return nil, reqctx.NewRunError(ctx, engine.NewEngineError(engine.ErrCodeSnapshot,
			"event queue is not valid JSON", fmt.Errorf("%w: %w", engine.ErrSnapshot, err)))
	}
	if snapshot.Kind() == datalayer.KindArray {
		res.Events = snapshot.Len()
	}

	records := datalayer.Collect(snapshot, p.opts.Collect)
	res.Records = len(records)
	res.Table = schema.Reconcile(records)

	logger.Info().
		Int("events", res.Events).
		Int("records", res.Records).
		Int("columns", len(res.Table.Header)).
		Msg("Events collected")

	if p.exporter != nil {
		start := time.Now()
		if err := p.exporter.Export(res.Table); err != nil {
			return nil, reqctx.NewRunError(ctx, engine.NewEngineError(engine.ErrCodeExport,
				"failed to export table", fmt.Errorf("%w: %w", engine.ErrExport, err)))
		}
		res.Timings.Export = time.Since(start)
	}

	res.Timings.Total = time.Since(rc.StartTime)
	logger.Info().Dur("elapsed", res.Timings.Total).Msg("Capture complete")
	return res, nil
}

// drive runs the page stages and returns the raw snapshot.
func (p *Pipeline) drive(ctx context.Context, logger zerolog.Logger, url string, t *Timings) ([]byte, error) {
	stage := func(name string, d *time.Duration, fn func() error) error {
		start := time.Now()
		err := fn()
		*d = time.Since(start)
		if err != nil {
			logger.Error().Err(err).Str("stage", name).Msg("Stage failed")
			return err
		}
		logger.Debug().Str("stage", name).Dur("elapsed", *d).Msg("Stage done")
		return nil
	}

	if err := stage("navigate", &t.Navigate, func() error {
		return p.driver.Navigate(ctx, url)
	}); err != nil {
		return nil, err
	}

	if err := stage("scroll", &t.Scroll, func() error {
		if err := p.driver.ScrollToBottom(ctx); err != nil {
			return err
		}
		return p.driver.Settle(ctx, p.opts.ScrollSettle)
	}); err != nil {
		return nil, err
	}

	if err := stage("interact", &t.Interact, func() error {
		if err := p.driver.ActivateAllLinks(ctx); err != nil {
			return err
		}
		return p.driver.Settle(ctx, p.opts.InteractionSettle)
	}); err != nil {
		return nil, err
	}

	var raw []byte
	if err := stage("snapshot", &t.Snapshot, func() error {
		var err error
		raw, err = p.driver.Snapshot(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return raw, nil
}
