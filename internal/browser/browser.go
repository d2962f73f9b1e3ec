// Package browser defines the browser-automation capability the crawl engine depends on
// and a playwright-backed implementation of it.
package browser

import (
	"context"
	"time"
)

// Session is a running browser. NewTab is the only call shared across pool workers and
// must be safe for concurrent use.
type Session interface {
	NewTab(ctx context.Context) (Tab, error)
	Close() error
}

// Tab is one browser page. A Tab is not safe for concurrent use: exactly one goroutine
// may drive it at a time.
type Tab interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector is attached or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Evaluate(ctx context.Context, script string) (any, error)
	// Content returns the current rendered markup.
	Content(ctx context.Context) (string, error)
	Close() error
}

// ScrollToBottom is the script used by infinite-scroll listings to request the next batch.
const ScrollToBottom = "window.scrollTo(0, document.body.scrollHeight)"

// Pause sleeps for d or until ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
