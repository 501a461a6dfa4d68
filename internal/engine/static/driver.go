// internal/engine/static/driver.go
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/datalayer/internal/engine"
)

// DefaultMaxBodyBytes caps how much of the page is read.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Options configures a Driver.
type Options struct {
	Client       *http.Client
	UserAgent    string
	Headers      map[string]string
	QueueName    string
	MaxBodyBytes int64
}

// Driver implements engine.PageDriver without a browser: it fetches the page
// over HTTP and runs its inline scripts in an embedded JavaScript runtime.
// Only instrumentation that fires during script execution or from timers is
// captured; there is no layout to scroll and no DOM to click.
type Driver struct {
	opts Options
	page *pageVM
}

// New creates a static Driver with dependency injection
func New(opts Options) *Driver {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.QueueName == "" {
		opts.QueueName = engine.DefaultQueueName
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Driver{opts: opts}
}

// Name returns the name of this driver
func (s *Driver) Name() string {
	return "StaticDriver"
}

// Navigate fetches url and executes its inline scripts in document order.
func (s *Driver) Navigate(ctx context.Context, url string) error {
	start := time.Now()

	doc, status, err := s.fetch(ctx, url)
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "failed to load page",
			fmt.Errorf("%w: %w", engine.ErrNavigation, err)).WithDetail("url", url)
	}

	page, err := newPageVM(url, s.opts.UserAgent)
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeBrowserCrash, "failed to create script runtime", err)
	}
	s.page = page

	total, ok := 0, 0
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		typ, _ := sel.Attr("type")
		if !isClassicScript(typ) {
			return
		}
		src := sel.Text()
		if strings.TrimSpace(src) == "" {
			return
		}
		total++
		if page.run(fmt.Sprintf("inline#%d", i), src) {
			ok++
		}
	})

	log.Debug().
		Str("url", url).
		Int("status", status).
		Int("scripts", total).
		Int("scripts_ok", ok).
		Dur("elapsed", time.Since(start)).
		Msg("Page loaded")
	return nil
}

func (s *Driver) fetch(ctx context.Context, url string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range s.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, resp.StatusCode, nil
}

// ScrollToBottom is a no-op: there is no layout to scroll.
func (s *Driver) ScrollToBottom(ctx context.Context) error {
	if err := s.loaded(); err != nil {
		return err
	}
	log.Debug().Str("driver", s.Name()).Msg("Scroll skipped, no layout")
	return ctx.Err()
}

// ActivateAllLinks is a no-op: there are no live elements to click.
func (s *Driver) ActivateAllLinks(ctx context.Context) error {
	if err := s.loaded(); err != nil {
		return err
	}
	log.Debug().Str("driver", s.Name()).Msg("Link activation skipped, no DOM")
	return ctx.Err()
}

// Settle advances the runtime's virtual clock by d, firing pending timers.
func (s *Driver) Settle(ctx context.Context, d time.Duration) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	runs := s.page.settle(d)
	log.Debug().Dur("window", d).Int("timers_fired", runs).Msg("Settled")
	return nil
}

// Snapshot serializes the event queue from the runtime.
func (s *Driver) Snapshot(ctx context.Context) ([]byte, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	raw, err := s.page.snapshot(engine.SnapshotScript(s.opts.QueueName))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeSnapshot, "failed to read event queue",
			fmt.Errorf("%w: %w", engine.ErrSnapshot, err))
	}
	if raw == "null" {
		log.Debug().Str("queue", s.opts.QueueName).Msg("Event queue is not defined or not an array")
	}
	return []byte(raw), nil
}

// Close drops the runtime.
func (s *Driver) Close() error {
	s.page = nil
	return nil
}

func (s *Driver) loaded() error {
	if s.page == nil {
		return engine.NewEngineError(engine.ErrCodeValidation, "no page loaded", engine.ErrUnsupported)
	}
	return nil
}

func isClassicScript(typ string) bool {
	typ = strings.ToLower(strings.TrimSpace(typ))
	return typ == "" || strings.Contains(typ, "javascript") || strings.Contains(typ, "ecmascript")
}
