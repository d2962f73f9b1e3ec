package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-jd-crawler/internal/logger"
)

// LaunchOptions configures the browser process and its context.
type LaunchOptions struct {
	Headless  bool
	UserAgent string
	// HideAutomation suppresses the navigator.webdriver automation flag.
	HideAutomation    bool
	NavigationTimeout time.Duration
	CookiesPath       string
	ScreenshotDir     string
}

// PlaywrightSession is a Session backed by one Chromium instance and one browser context.
type PlaywrightSession struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	opts       LaunchOptions
	debugger   *ScreenshotDebugger
	log        *logger.Logger

	// page creation is serialized; playwright's connection is shared by every tab
	mu sync.Mutex
}

// NewPlaywright starts playwright, launches Chromium and prepares a browser context with
// the configured user agent and cookies.
func NewPlaywright(opts LaunchOptions) (*PlaywrightSession, error) {
	log := logger.New("Browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	args := []string{"--no-sandbox", "--disable-dev-shm-usage"}
	if opts.HideAutomation {
		args = append(args, "--disable-blink-features=AutomationControlled")
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	browserCtx, err := b.NewContext(ctxOpts)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if opts.CookiesPath != "" {
		cookies, err := LoadCookies(opts.CookiesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", opts.CookiesPath).Msg("⚠️ Could not load cookies. Continuing.")
		} else if err := browserCtx.AddCookies(cookies); err != nil {
			log.Warn().Err(err).Msg("⚠️ Could not add cookies. Continuing.")
		} else {
			log.Info().Int("count", len(cookies)).Msg("🍪 Cookies loaded")
		}
	}

	s := &PlaywrightSession{
		pw:         pw,
		browser:    b,
		browserCtx: browserCtx,
		opts:       opts,
		log:        log,
	}
	if opts.ScreenshotDir != "" {
		s.debugger = NewScreenshotDebugger(opts.ScreenshotDir, log)
	}
	log.Info().Bool("headless", opts.Headless).Msg("✅ Browser initialized")
	return s, nil
}

func (s *PlaywrightSession) NewTab(ctx context.Context) (Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &playwrightTab{page: page, navTimeout: s.opts.NavigationTimeout, debugger: s.debugger}, nil
}

func (s *PlaywrightSession) Close() error {
	var errs []error
	if err := s.browserCtx.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type playwrightTab struct {
	page       playwright.Page
	navTimeout time.Duration
	debugger   *ScreenshotDebugger
}

func (t *playwrightTab) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(millis(ctx, t.navTimeout)),
	}); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (t *playwrightTab) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := t.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(millis(ctx, timeout)),
	})
	if err != nil {
		if t.debugger != nil {
			_ = t.debugger.Capture(t.page, "wait-timeout")
		}
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (t *playwrightTab) Evaluate(ctx context.Context, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := t.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return v, nil
}

func (t *playwrightTab) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := t.page.Content()
	if err != nil {
		return "", fmt.Errorf("content: %w", err)
	}
	return html, nil
}

func (t *playwrightTab) Close() error {
	return t.page.Close()
}

const fallbackTimeout = 30 * time.Second

// millis converts a timeout to playwright milliseconds. A zero timeout means "no limit"
// to playwright, so it is replaced, and a nearer ctx deadline wins.
func millis(ctx context.Context, d time.Duration) float64 {
	if d <= 0 {
		d = fallbackTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = max(left, time.Millisecond)
		}
	}
	return float64(d.Milliseconds())
}
