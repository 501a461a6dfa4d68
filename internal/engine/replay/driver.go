// Package replay serves a previously dumped event queue as if it were a live
// page, so a capture can be re-collected and re-exported offline.
package replay

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/datalayer/internal/engine"
)

// Driver implements engine.PageDriver over a snapshot file.
type Driver struct {
	path string
	data []byte
}

// New returns a driver that will read path on Navigate.
func New(path string) *Driver {
	return &Driver{path: path}
}

// Name returns the name of this driver
func (d *Driver) Name() string {
	return "ReplayDriver"
}

// Navigate loads the snapshot. The url is only logged.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return engine.NewEngineError(engine.ErrCodeNavigation, "failed to read snapshot",
			fmt.Errorf("%w: %w", engine.ErrNavigation, err)).WithDetail("path", d.path)
	}
	d.data = data
	log.Debug().Str("path", d.path).Str("url", url).Int("bytes", len(data)).Msg("Snapshot loaded")
	return nil
}

func (d *Driver) ScrollToBottom(ctx context.Context) error { return ctx.Err() }

func (d *Driver) ActivateAllLinks(ctx context.Context) error { return ctx.Err() }

// Settle returns immediately; a recorded queue never changes.
func (d *Driver) Settle(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// Snapshot returns the file contents verbatim.
func (d *Driver) Snapshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.data == nil {
		return nil, engine.NewEngineError(engine.ErrCodeSnapshot, "no snapshot loaded", engine.ErrSnapshot)
	}
	return d.data, nil
}

func (d *Driver) Close() error {
	d.data = nil
	return nil
}
