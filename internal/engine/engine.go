package engine

import (
	"context"
	"time"
)

// PageDriver is the interface that all page automation backends must implement.
// It owns every side effect on the page; callers only await completion.
type PageDriver interface {
	// Navigate loads the target URL.
	Navigate(ctx context.Context, url string) error

	// ScrollToBottom scrolls in fixed steps until the whole document height
	// has been revealed.
	ScrollToBottom(ctx context.Context) error

	// ActivateAllLinks clicks every link present when called, suppressing
	// navigation and pausing between clicks.
	ActivateAllLinks(ctx context.Context) error

	// Settle waits for instrumentation to catch up, at most d.
	Settle(ctx context.Context, d time.Duration) error

	// Snapshot reads the event queue once and returns it as JSON.
	// An absent queue is reported as "null", not as an error.
	Snapshot(ctx context.Context) ([]byte, error)

	// Close releases the page and any browser resources.
	Close() error

	// Name returns the name of the driver implementation
	Name() string
}

// SettleMode selects how Settle decides that the page is done.
type SettleMode string

const (
	// SettleFixed always sleeps for the full duration.
	SettleFixed SettleMode = "fixed"
	// SettleStable returns early once the queue stops growing.
	SettleStable SettleMode = "stable"
)

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
