// Package enricher attaches company ratings from an unrelated review site to records that
// were already collected.
package enricher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"

	"go-jd-crawler/internal/browser"
	"go-jd-crawler/internal/crawler"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/models"
)

// Rating is what a profile page publishes. Empty Value and nil ReviewCount both mean "not
// published" and are not errors.
type Rating struct {
	Value       string `json:"value,omitempty"`
	ReviewCount *int   `json:"review_count,omitempty"`
}

// Enricher resolves a company name to a profile page and reads its rating.
type Enricher interface {
	Name() string
	// Normalize must be idempotent.
	Normalize(company string) string
	// ProfileURL builds the profile address for a normalized name without network access.
	ProfileURL(normalized string) string
	// FetchRating returns an error only for transport failures.
	FetchRating(ctx context.Context, tab browser.Tab, url string) (Rating, error)
}

var (
	parenthetical = regexp.MustCompile(`\s*[(（][^)）]*[)）]\s*`)
	legalMarkers  = strings.NewReplacer("㈜", " ")
)

// NormalizeCompany strips parenthetical groups such as "(주)" or "(서울)" and the ㈜ marker,
// then collapses whitespace.
func NormalizeCompany(name string) string {
	name = parenthetical.ReplaceAllString(name, " ")
	name = legalMarkers.Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// Run enriches jobs on the pool's tabs. Records whose company normalizes to nothing pass
// through untouched. Lookups go through cache when it is non-nil, and concurrent misses for
// the same company share a single fetch.
func Run(ctx context.Context, pool *crawler.TabPool, e Enricher, cache Cache, jobs []models.Job, log *logger.Logger) crawler.Batch {
	var group singleflight.Group

	cached := func(ctx context.Context, name string) (Rating, bool) {
		if cache == nil {
			return Rating{}, false
		}
		r, ok, err := cache.Get(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("company", name).Msg("⚠️ Rating cache read failed")
			return Rating{}, false
		}
		return r, ok
	}

	lookup := func(ctx context.Context, tab browser.Tab, name string) (Rating, error) {
		if r, ok := cached(ctx, name); ok {
			return r, nil
		}

		v, err, shared := group.Do(name, func() (any, error) {
			// a flight for name may have finished between the read above and Do
			if r, ok := cached(ctx, name); ok {
				return r, nil
			}
			r, err := e.FetchRating(ctx, tab, e.ProfileURL(name))
			if err != nil {
				return Rating{}, err
			}
			if cache != nil {
				if err := cache.Set(ctx, name, r); err != nil {
					log.Warn().Err(err).Str("company", name).Msg("⚠️ Rating cache write failed")
				}
			}
			return r, nil
		})
		if err != nil {
			return Rating{}, err
		}
		if shared {
			log.Debug().Str("company", name).Msg("🔁 Shared rating lookup")
		}
		return v.(Rating), nil
	}

	fetch := func(ctx context.Context, tab browser.Tab, job models.Job) (models.Job, error) {
		name := e.Normalize(job.Company)
		if name == "" {
			return job, nil
		}
		r, err := lookup(ctx, tab, name)
		if err != nil {
			return job, fmt.Errorf("%s rating for %q: %w", e.Name(), name, err)
		}
		log.Debug().Str("company", name).Str("rating", r.Value).Msg("⭐ Rating resolved")
		return job.WithRating(r.Value, r.ReviewCount), nil
	}

	return pool.Run(ctx, jobs, fetch)
}
