package filter

import (
	"go-jd-crawler/internal/models"
)

// Rules is the listing filter for one source.
type Rules struct {
	ExcludeKeywords []string
	MinYears        int
	MaxYears        int
}

// Keep builds the predicate passed to card extraction. A zero MaxYears disables the
// experience check.
func Keep(r Rules) func(models.Job) bool {
	excluder := NewTitleExcluder(r.ExcludeKeywords)
	return func(job models.Job) bool {
		if excluder.Excluded(job.Title) {
			return false
		}
		if r.MaxYears > 0 && !ExperienceInRange(job.ExperienceYears, r.MinYears, r.MaxYears) {
			return false
		}
		return true
	}
}
