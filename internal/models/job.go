package models

// Job is one normalized job posting. URL identifies a record within one crawl session.
//
// A Job is a value: stages never modify a record they were handed, they build a new one
// with the With* helpers and replace it wholesale.
type Job struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	ExperienceYears string `json:"experience_years"`
	Location        string `json:"location,omitempty"`
	Deadline        string `json:"deadline,omitempty"`
	URL             string `json:"url"`
	Rating          string `json:"rating,omitempty"`
	ReviewCount     *int   `json:"review_count,omitempty"`
}

// Valid reports whether the mandatory fields are present.
// Candidates that are not valid never enter the engine.
func (j Job) Valid() bool {
	return j.Title != "" && j.Company != "" && j.URL != ""
}

// Detail holds fields gathered from a record's detail page.
// Empty values mean "not found" and leave the original field untouched.
type Detail struct {
	Deadline string
	Location string
}

// WithDetail returns a copy of j with the non-empty detail fields merged in.
func (j Job) WithDetail(d Detail) Job {
	out := j
	if d.Deadline != "" {
		out.Deadline = d.Deadline
	}
	if d.Location != "" {
		out.Location = d.Location
	}
	return out
}

// WithRating returns a copy of j carrying the given rating data.
// Absent values clear nothing: a record that already had a rating keeps it.
func (j Job) WithRating(rating string, reviewCount *int) Job {
	out := j
	if rating != "" {
		out.Rating = rating
	}
	if reviewCount != nil {
		n := *reviewCount
		out.ReviewCount = &n
	}
	return out
}

// Equal compares two records field by field, following the ReviewCount pointer.
func (j Job) Equal(o Job) bool {
	if j.ReviewCount == nil || o.ReviewCount == nil {
		if j.ReviewCount != o.ReviewCount {
			return false
		}
	} else if *j.ReviewCount != *o.ReviewCount {
		return false
	}
	a, b := j, o
	a.ReviewCount, b.ReviewCount = nil, nil
	return a == b
}

// URLs returns the url of every record, in order.
func URLs(jobs []Job) []string {
	urls := make([]string, 0, len(jobs))
	for _, j := range jobs {
		urls = append(urls, j.URL)
	}
	return urls
}
