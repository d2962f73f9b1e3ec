// Package browsertest provides a scripted in-memory browser for engine tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-jd-crawler/internal/browser"
)

// RenderFunc returns the markup a tab shows at url after scrolls scroll-evaluations.
type RenderFunc func(url string, scrolls int) (string, error)

// Session is a fake browser.Session. Zero values are usable; set the hooks before use.
type Session struct {
	Render RenderFunc
	// NavigateErr, when set, is consulted before every navigation.
	NavigateErr func(url string) error
	// WaitErr, when set, is consulted before every selector wait.
	WaitErr func(url, selector string) error
	// NewTabErr makes every NewTab call fail.
	NewTabErr error
	// Latency is added to every tab call to widen race windows.
	Latency time.Duration

	mu         sync.Mutex
	tabs       []*Tab
	violations atomic.Int32
}

var _ browser.Session = (*Session)(nil)

// Pages builds a RenderFunc from a url -> markup map. Unknown urls render an empty body.
func Pages(pages map[string]string) RenderFunc {
	return func(url string, _ int) (string, error) {
		return pages[url], nil
	}
}

// Scrolls builds a RenderFunc returning snapshots[i] after i scrolls, repeating the last
// snapshot once the list is exhausted.
func Scrolls(snapshots ...string) RenderFunc {
	return func(_ string, scrolls int) (string, error) {
		if len(snapshots) == 0 {
			return "", nil
		}
		if scrolls >= len(snapshots) {
			scrolls = len(snapshots) - 1
		}
		return snapshots[scrolls], nil
	}
}

func (s *Session) NewTab(ctx context.Context) (browser.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.NewTabErr != nil {
		return nil, s.NewTabErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Tab{id: len(s.tabs), session: s}
	s.tabs = append(s.tabs, t)
	return t, nil
}

func (s *Session) Close() error { return nil }

// TabsCreated returns how many tabs were opened.
func (s *Session) TabsCreated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// Tabs returns the tabs opened so far.
func (s *Session) Tabs() []*Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Tab(nil), s.tabs...)
}

// Violations counts calls that found their tab already in use by another goroutine.
func (s *Session) Violations() int {
	return int(s.violations.Load())
}

// Tab is a fake browser.Tab recording what was done to it.
type Tab struct {
	id      int
	session *Session
	busy    atomic.Int32

	mu          sync.Mutex
	url         string
	scrolls     int
	navigations []string
	steps       int
	closed      bool
}

var _ browser.Tab = (*Tab)(nil)

func (t *Tab) ID() int { return t.id }

// enter marks the tab busy for the duration of a call and records overlapping use.
func (t *Tab) enter() func() {
	if !t.busy.CompareAndSwap(0, 1) {
		t.session.violations.Add(1)
		return func() {}
	}
	if t.session.Latency > 0 {
		time.Sleep(t.session.Latency)
	}
	return func() { t.busy.Store(0) }
}

func (t *Tab) Navigate(ctx context.Context, url string) error {
	defer t.enter()()
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	t.navigations = append(t.navigations, url)
	t.steps++
	t.mu.Unlock()
	if t.session.NavigateErr != nil {
		if err := t.session.NavigateErr(url); err != nil {
			return fmt.Errorf("navigate %s: %w", url, err)
		}
	}
	t.mu.Lock()
	t.url = url
	t.scrolls = 0
	t.mu.Unlock()
	return nil
}

func (t *Tab) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	defer t.enter()()
	if timeout <= 0 {
		return errors.New("wait without timeout")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.session.WaitErr != nil {
		return t.session.WaitErr(t.URL(), selector)
	}
	return nil
}

func (t *Tab) Evaluate(ctx context.Context, script string) (any, error) {
	defer t.enter()()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(script, "scroll") {
		t.mu.Lock()
		t.scrolls++
		t.steps++
		t.mu.Unlock()
	}
	return nil, nil
}

func (t *Tab) Content(ctx context.Context) (string, error) {
	defer t.enter()()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.session.Render == nil {
		return "", nil
	}
	t.mu.Lock()
	url, scrolls := t.url, t.scrolls
	t.mu.Unlock()
	return t.session.Render(url, scrolls)
}

func (t *Tab) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// URL returns the last successfully navigated url.
func (t *Tab) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// Navigations returns every url navigation was attempted for, in order.
func (t *Tab) Navigations() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.navigations...)
}

// Steps counts navigations plus scroll evaluations.
func (t *Tab) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps
}

func (t *Tab) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
