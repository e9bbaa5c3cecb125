package catalog

import (
	"strings"
	"unicode"
)

// AllCategories selects every project in FilterBy.
const AllCategories = "all"

var categoryLabels = map[string]string{
	AllCategories:      "All Projects",
	"ai-ml":            "AI/ML",
	"web-app":          "Web Apps",
	"data-engineering": "Data Engineering",
	"iot":              "IoT",
}

// CategoryCount is a filter tab with its badge count.
type CategoryCount struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// View derives filtered subsets of a catalog. It never modifies the
// projects it was built from.
type View struct {
	projects []Project
}

// NewView wraps a catalog in store order.
func NewView(projects []Project) View {
	return View{projects: projects}
}

// Len is the size of the whole catalog.
func (v View) Len() int {
	return len(v.projects)
}

// FilterBy returns projects in category, or all of them for "all" or "".
func (v View) FilterBy(category string) []Project {
	if category == "" || category == AllCategories {
		return v.where(func(Project) bool { return true })
	}
	return v.where(func(p Project) bool { return p.Category == category })
}

// FeaturedOnly returns the featured projects.
func (v View) FeaturedOnly() []Project {
	return v.where(func(p Project) bool { return p.Featured })
}

// NonFeaturedOnly returns the projects that are not featured.
func (v View) NonFeaturedOnly() []Project {
	return v.where(func(p Project) bool { return !p.Featured })
}

// Count returns how many projects satisfy pred.
func (v View) Count(pred func(Project) bool) int {
	n := 0
	for _, p := range v.projects {
		if pred(p) {
			n++
		}
	}
	return n
}

// Categories lists "all" followed by each category in order of first
// appearance, with counts.
func (v View) Categories() []CategoryCount {
	out := []CategoryCount{{ID: AllCategories, Label: CategoryLabel(AllCategories), Count: v.Len()}}
	seen := map[string]bool{}
	for _, p := range v.projects {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		category := p.Category
		out = append(out, CategoryCount{
			ID:    category,
			Label: CategoryLabel(category),
			Count: v.Count(func(q Project) bool { return q.Category == category }),
		})
	}
	return out
}

// Lookup finds a project by id.
func (v View) Lookup(id string) (Project, bool) {
	for _, p := range v.projects {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Project{}, false
}

func (v View) where(pred func(Project) bool) []Project {
	out := make([]Project, 0, len(v.projects))
	for _, p := range v.projects {
		if pred(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

// CategoryLabel returns the display label for a category id.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	words := strings.FieldsFunc(category, func(r rune) bool { return r == '-' || r == '_' || unicode.IsSpace(r) })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
