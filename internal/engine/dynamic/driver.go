// internal/engine/dynamic/driver.go
package dynamic

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/law-makers/datalayer/internal/engine"
)

// stablePollInterval is how often the queue length is sampled in stable mode.
const stablePollInterval = 250 * time.Millisecond

// stableRounds is how many unchanged samples count as settled.
const stableRounds = 4

// Options configures a Driver.
type Options struct {
	Headless       bool
	ChromePath     string
	UserAgent      string
	Proxy          string
	Headers        map[string]string
	ViewportWidth  int
	ViewportHeight int

	// ScrollStep is the distance in pixels advanced per scroll tick.
	ScrollStep int
	// ScrollInterval is the delay between scroll ticks.
	ScrollInterval time.Duration
	// LinkPause is the pause after each link activation.
	LinkPause time.Duration

	SettleMode        engine.SettleMode
	NavigationTimeout time.Duration

	// QueueName is the window property holding the event queue.
	QueueName string

	// Progress receives a progress bar during link activation; nil disables it.
	Progress io.Writer
}

// Driver implements engine.PageDriver with headless Chrome via chromedp.
type Driver struct {
	opts        Options
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	targetURL   string
	mu          sync.Mutex
	closed      bool
}

// New launches a browser and opens one tab for the capture.
func New(opts Options) (*Driver, error) {
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = 1920, 1080
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = 100
	}
	if opts.QueueName == "" {
		opts.QueueName = engine.DefaultQueueName
	}
	if opts.SettleMode == "" {
		opts.SettleMode = engine.SettleFixed
	}

	start := time.Now()
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	d := &Driver{
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}

	// Running with no actions starts the browser so launch failures surface here.
	if err := chromedp.Run(ctx); err != nil {
		d.Close()
		return nil, engine.NewEngineError(engine.ErrCodeBrowserCrash, "failed to start browser",
			fmt.Errorf("%w: %w", engine.ErrBrowserNotFound, err))
	}

	chromedp.ListenTarget(ctx, d.onEvent)

	log.Debug().
		Bool("headless", opts.Headless).
		Int("viewport_width", opts.ViewportWidth).
		Int("viewport_height", opts.ViewportHeight).
		Dur("elapsed", time.Since(start)).
		Msg("Browser started")
	return d, nil
}

// Name returns the name of this driver
func (d *Driver) Name() string {
	return "ChromeDriver"
}

// onEvent forwards page console output and the document response to the log.
func (d *Driver) onEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		parts := make([]string, 0, len(ev.Args))
		for _, arg := range ev.Args {
			if len(arg.Value) > 0 {
				parts = append(parts, string(arg.Value))
			} else {
				parts = append(parts, arg.Description)
			}
		}
		log.Debug().Str("type", string(ev.Type)).Str("message", strings.Join(parts, " ")).Msg("Page console")
	case *runtime.EventExceptionThrown:
		if ev.ExceptionDetails != nil {
			log.Debug().Str("exception", ev.ExceptionDetails.Text).Msg("Page exception")
		}
	case *network.EventResponseReceived:
		if ev.Type == network.ResourceTypeDocument && ev.Response != nil && ev.Response.URL == d.target() {
			log.Debug().Str("url", ev.Response.URL).Int64("status", ev.Response.Status).Msg("Document response")
		}
	}
}

func (d *Driver) target() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targetURL
}

// run executes actions on the tab, aborting them when ctx is done without
// closing the tab itself.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return engine.NewEngineError(engine.ErrCodeBrowserCrash, "driver is closed", engine.ErrBrowserCrash)
	}

	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads url with the configured viewport and request headers.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	d.targetURL = url
	d.mu.Unlock()

	if d.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.NavigationTimeout)
		defer cancel()
	}

	tasks := []chromedp.Action{
		network.Enable(),
		runtime.Enable(),
		chromedp.EmulateViewport(int64(d.opts.ViewportWidth), int64(d.opts.ViewportHeight)),
	}
	if len(d.opts.Headers) > 0 {
		headers := make(network.Headers, len(d.opts.Headers))
		for k, v := range d.opts.Headers {
			headers[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}
	tasks = append(tasks, chromedp.Navigate(url))

	start := time.Now()
	if err := d.run(ctx, tasks...); err != nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "failed to load page",
			fmt.Errorf("%w: %w", engine.ErrNavigation, err)).WithDetail("url", url)
	}

	log.Debug().Str("url", url).Dur("elapsed", time.Since(start)).Msg("Page loaded")
	return nil
}

// ScrollToBottom advances the page in fixed steps until no further height
// remains to reveal.
func (d *Driver) ScrollToBottom(ctx context.Context) error {
	var scrolled int64
	script := scrollScript(d.opts.ScrollStep, d.opts.ScrollInterval.Milliseconds())
	err := d.run(ctx, chromedp.Evaluate(script, &scrolled, awaitPromise))
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeInteraction, "scroll failed", err)
	}

	log.Debug().Int64("scrolled_px", scrolled).Msg("Scrolled to bottom")
	return nil
}

// ActivateAllLinks clicks each link found at call time, pausing LinkPause
// after every click so click handlers can enqueue their events.
func (d *Driver) ActivateAllLinks(ctx context.Context) error {
	var count int
	if err := d.run(ctx, chromedp.Evaluate(collectLinksScript(), &count)); err != nil {
		return engine.NewEngineError(engine.ErrCodeInteraction, "failed to enumerate links", err)
	}

	log.Debug().Int("links", count).Dur("pause", d.opts.LinkPause).Msg("Activating links")
	if count == 0 {
		return nil
	}

	bar := d.progressBar(count)
	defer bar.Finish()

	clicked := 0
	for i := 0; i < count; i++ {
		var ok bool
		if err := d.run(ctx, chromedp.Evaluate(activateLinkScript(i), &ok)); err != nil {
			return engine.NewEngineError(engine.ErrCodeInteraction, "link activation failed", err).
				WithDetail("link", i)
		}
		if ok {
			clicked++
		}
		_ = bar.Add(1)

		if err := engine.Sleep(ctx, d.opts.LinkPause); err != nil {
			return err
		}
	}

	log.Debug().Int("clicked", clicked).Int("links", count).Msg("Links activated")
	return nil
}

func (d *Driver) progressBar(n int) *progressbar.ProgressBar {
	if d.opts.Progress == nil {
		return progressbar.DefaultSilent(int64(n))
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(d.opts.Progress),
		progressbar.OptionSetDescription("activating links"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Settle waits up to max for the queue to stop changing. In fixed mode it
// always waits the full duration.
func (d *Driver) Settle(ctx context.Context, max time.Duration) error {
	if d.opts.SettleMode != engine.SettleStable {
		return engine.Sleep(ctx, max)
	}

	pollCtx, cancel := context.WithTimeout(ctx, max)
	defer cancel()
	poll := rate.NewLimiter(rate.Every(stablePollInterval), 1)

	last, unchanged := int64(-2), 0
	for {
		// Wait fails once the next poll would land past the settle window.
		if err := poll.Wait(pollCtx); err != nil {
			return ctx.Err()
		}
		var length int64
		if err := d.run(ctx, chromedp.Evaluate(queueLengthScript(d.opts.QueueName), &length)); err != nil {
			return engine.NewEngineError(engine.ErrCodeSnapshot, "failed to poll event queue", err)
		}
		if length == last {
			unchanged++
			if unchanged >= stableRounds {
				log.Debug().Int64("queue_length", length).Msg("Event queue stable")
				return nil
			}
		} else {
			last, unchanged = length, 0
		}
	}
}

// Snapshot serializes the event queue inside the page.
func (d *Driver) Snapshot(ctx context.Context) ([]byte, error) {
	var raw string
	if err := d.run(ctx, chromedp.Evaluate(engine.SnapshotScript(d.opts.QueueName), &raw)); err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeSnapshot, "failed to read event queue",
			fmt.Errorf("%w: %w", engine.ErrSnapshot, err))
	}
	if raw == "null" {
		log.Debug().Str("queue", d.opts.QueueName).Msg("Event queue is not defined or not an array")
	}
	return []byte(raw), nil
}

// Close shuts down the tab and the browser process.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.cancel()
	d.allocCancel()
	log.Debug().Msg("Browser closed")
	return nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}
