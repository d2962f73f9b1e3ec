package crawler

import (
	"context"
	"fmt"
	"time"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
)

// emptyStepsToStop is how many consecutive snapshots without a previously-unseen url end
// a collection. It covers both running out of real pages and a site that silently keeps
// serving the same content. A source that returns clustered duplicates for two steps and
// then resumes is under-collected; that is accepted.
const emptyStepsToStop = 2

// Snapshot is one rendered state of a result list.
type Snapshot struct {
	Index  int
	Markup string
}

// PageCollector moves a tab through the snapshots of one listing endpoint.
type PageCollector interface {
	// Load performs the first navigation and returns snapshot 1.
	Load(ctx context.Context, tab browser.Tab) (Snapshot, error)
	// Advance moves to snapshot next and returns it.
	Advance(ctx context.Context, tab browser.Tab, next int) (Snapshot, error)
}

// Collect drives pc through up to budget snapshots (0 = unbounded) and returns the
// deduplicated union of the valid records extracted from them, in first-seen order.
//
// Steps run strictly in sequence on one tab. On an error after the first snapshot the
// records collected so far are returned with an *AdvanceError.
func Collect(ctx context.Context, tab browser.Tab, pc PageCollector, extract ExtractFunc, budget int, log *logger.Logger) ([]models.Job, error) {
	snap, err := pc.Load(ctx, tab)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialLoad, err)
	}

	seen := make(map[string]struct{})
	var all []models.Job
	empty := 0

	for page := 1; ; page++ {
		candidates, err := extract(snap.Markup)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%w: %w", ErrInitialLoad, err)
			}
			return all, &AdvanceError{Page: page, Err: err}
		}

		fresh := 0
		for _, job := range candidates {
			if !job.Valid() {
				continue
			}
			if _, dup := seen[job.URL]; dup {
				continue
			}
			seen[job.URL] = struct{}{}
			all = append(all, job)
			fresh++
		}
		log.Info().Int("page", page).Int("new", fresh).Int("total", len(all)).Msg("📄 Page collected")

		if fresh == 0 {
			empty++
		} else {
			empty = 0
		}
		if empty >= emptyStepsToStop {
			log.Info().Int("page", page).Msgf("⏹️ No new records for %d consecutive pages", empty)
			return all, nil
		}
		if budget > 0 && page >= budget {
			return all, nil
		}

		snap, err = pc.Advance(ctx, tab, page+1)
		if err != nil {
			return all, &AdvanceError{Page: page + 1, Err: err}
		}
	}
}

// InfiniteScrollCollector loads one url and scrolls to the bottom to reveal more results.
type InfiniteScrollCollector struct {
	URL          string
	WaitSelector string
	WaitTimeout  time.Duration
	// Settle is how long to let the page render after each step.
	Settle time.Duration
	// Script overrides browser.ScrollToBottom.
	Script string
}

func (c *InfiniteScrollCollector) Load(ctx context.Context, tab browser.Tab) (Snapshot, error) {
	if err := tab.Navigate(ctx, c.URL); err != nil {
		return Snapshot{}, err
	}
	if err := tab.WaitFor(ctx, c.WaitSelector, c.WaitTimeout); err != nil {
		return Snapshot{}, err
	}
	return snapshot(ctx, tab, 1, c.Settle)
}

func (c *InfiniteScrollCollector) Advance(ctx context.Context, tab browser.Tab, next int) (Snapshot, error) {
	script := c.Script
	if script == "" {
		script = browser.ScrollToBottom
	}
	if _, err := tab.Evaluate(ctx, script); err != nil {
		return Snapshot{}, err
	}
	return snapshot(ctx, tab, next, c.Settle)
}

// PaginatedCollector navigates to numbered result pages.
type PaginatedCollector struct {
	PageURL      func(page int) string
	WaitSelector string
	WaitTimeout  time.Duration
	Settle       time.Duration
}

func (c *PaginatedCollector) Load(ctx context.Context, tab browser.Tab) (Snapshot, error) {
	return c.Advance(ctx, tab, 1)
}

func (c *PaginatedCollector) Advance(ctx context.Context, tab browser.Tab, next int) (Snapshot, error) {
	if err := tab.Navigate(ctx, c.PageURL(next)); err != nil {
		return Snapshot{}, err
	}
	if err := tab.WaitFor(ctx, c.WaitSelector, c.WaitTimeout); err != nil {
		return Snapshot{}, err
	}
	return snapshot(ctx, tab, next, c.Settle)
}

func snapshot(ctx context.Context, tab browser.Tab, index int, settle time.Duration) (Snapshot, error) {
	if err := browser.Pause(ctx, settle); err != nil {
		return Snapshot{}, err
	}
	markup, err := tab.Content(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Index: index, Markup: markup}, nil
}
