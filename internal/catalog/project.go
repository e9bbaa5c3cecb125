// Package catalog loads the portfolio's project list from a published CSV
// spreadsheet and derives the filtered and detail views the site renders.
package catalog

import "errors"

// Project is one portfolio item after normalization.
type Project struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	Technologies     []string `json:"technologies"`
	Category         string   `json:"category"`
	GithubURL        *string  `json:"github_url,omitempty"`
	LiveURL          *string  `json:"live_url,omitempty"`
	ImageURL         *string  `json:"image_url,omitempty"`
	Featured         bool     `json:"featured"`
	Status           string   `json:"status"`
	CompletionDate   *string  `json:"completion_date,omitempty"`
	Client           *string  `json:"client,omitempty"`
	Role             *string  `json:"role,omitempty"`
	Challenges       *string  `json:"challenges,omitempty"`
	Solution         *string  `json:"solution,omitempty"`
	Results          *string  `json:"results,omitempty"`
	Impact           *string  `json:"impact,omitempty"`
	Learnings        *string  `json:"learnings,omitempty"`
	Features         []string `json:"features"`
	Images           []string `json:"images"`
	PriorityOrder    int      `json:"priority_order"`
}

// Defaults applied by Normalize when the source leaves a field empty.
const (
	DefaultTitle       = "Untitled Project"
	DefaultDescription = "No description available."
	DefaultCategory    = "web-app"
	DefaultStatus      = "completed"
)

var (
	// ErrSourceUnreachable means the CSV could not be fetched.
	ErrSourceUnreachable = errors.New("project source unreachable")

	// ErrMalformedSource means the CSV was fetched but yielded no projects.
	ErrMalformedSource = errors.New("project source malformed")

	// ErrNoData is returned by Parse when there is no data row below the header.
	ErrNoData = &noDataError{}
)

type noDataError struct{}

func (*noDataError) Error() string { return "csv has no data rows" }

func (*noDataError) Unwrap() error { return ErrMalformedSource }

// clone returns a deep copy so callers cannot mutate store-owned slices.
func (p Project) clone() Project {
	p.Technologies = append([]string{}, p.Technologies...)
	p.Features = append([]string{}, p.Features...)
	p.Images = append([]string{}, p.Images...)
	return p
}

func cloneAll(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.clone()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
