package filter

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rangeRegex   = regexp.MustCompile(`(\d+)\s*[~\-]\s*(\d+)\s*년`)
	atLeastRegex = regexp.MustCompile(`(\d+)\s*년\s*(↑|이상)`)
	singleRegex  = regexp.MustCompile(`(\d+)\s*년`)
)

// ExperienceInRange reports whether the experience text posted on a card overlaps
// [minYears, maxYears]. Text that cannot be read is kept.
func ExperienceInRange(text string, minYears, maxYears int) bool {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return true
	case strings.Contains(text, "무관"):
		return true
	}

	lo, hi, ok := parseYears(text)
	if strings.Contains(text, "신입") {
		// "신입·경력 N년" postings accept 0 years too
		if !ok {
			hi = 0
		}
		lo, ok = 0, true
	}
	if !ok {
		return true
	}
	if hi < 0 {
		return lo <= maxYears
	}
	return lo <= maxYears && hi >= minYears
}

// parseYears returns the posted range. hi is -1 when the range is open-ended.
func parseYears(text string) (lo, hi int, ok bool) {
	if m := rangeRegex.FindStringSubmatch(text); m != nil {
		lo, _ = strconv.Atoi(m[1])
		hi, _ = strconv.Atoi(m[2])
		return lo, hi, true
	}
	if m := atLeastRegex.FindStringSubmatch(text); m != nil {
		lo, _ = strconv.Atoi(m[1])
		return lo, -1, true
	}
	if m := singleRegex.FindStringSubmatch(text); m != nil {
		lo, _ = strconv.Atoi(m[1])
		return lo, lo, true
	}
	return 0, -1, false
}
