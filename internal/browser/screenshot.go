package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-jd-crawler/internal/logger"
)

// ScreenshotDebugger saves full-page screenshots when a wait gives up.
type ScreenshotDebugger struct {
	outputDir string
	log       *logger.Logger
}

func NewScreenshotDebugger(dir string, log *logger.Logger) *ScreenshotDebugger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to create screenshot directory")
	}
	return &ScreenshotDebugger{outputDir: dir, log: log}
}

// Capture writes <name>_<timestamp>.png for the page.
func (s *ScreenshotDebugger) Capture(page playwright.Page, name string) error {
	filename := fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05.000"))
	path := filepath.Join(s.outputDir, filename)

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.log.Warn().Err(err).Msg("⚠️ Failed to capture screenshot")
		return err
	}
	s.log.Info().Str("path", path).Str("url", page.URL()).Msg("📸 Screenshot saved")
	return nil
}
