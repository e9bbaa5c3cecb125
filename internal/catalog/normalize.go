package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// knownFields are the recognized CSV headers, already lower-cased.
var knownFields = []string{
	"id", "title", "description", "short_description", "long_description",
	"technologies", "category", "github_url", "live_url", "image_url",
	"featured", "status", "completion_date", "client", "role", "challenges",
	"solution", "results", "impact", "learnings", "features", "images",
	"priority_order",
}

// headerAliases maps column names used by older versions of the sheet.
var headerAliases = map[string]string{
	"name":         "title",
	"descriptions": "description",
	"tech":         "technologies",
	"type":         "category",
	"link":         "live_url",
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	"01/02/2006",
	"January 2006",
	"Jan 2006",
}

// Normalize maps a header row and its data rows to projects, applying
// defaults, and returns them in display order.
func Normalize(header []string, rows [][]string) []Project {
	columns := columnIndex(header)
	seen := make(map[string]bool, len(rows))

	projects := make([]Project, 0, len(rows))
	for i, row := range rows {
		r := record{columns: columns, row: row}
		p := buildProject(r)
		p.ID = uniqueID(r.get("id"), i, seen)
		seen[p.ID] = true
		projects = append(projects, p)
	}

	slices.SortStableFunc(projects, compareProjects)
	return projects
}

// columnIndex resolves header names to column positions. A canonical
// header takes precedence over an alias for the same field.
func columnIndex(header []string) map[string]int {
	known := make(map[string]bool, len(knownFields))
	for _, f := range knownFields {
		known[f] = true
	}

	columns := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if known[name] {
			if _, ok := columns[name]; !ok {
				columns[name] = i
			}
		}
	}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		field, ok := headerAliases[name]
		if !ok {
			continue
		}
		if _, taken := columns[field]; !taken {
			columns[field] = i
		}
	}
	return columns
}

type record struct {
	columns map[string]int
	row     []string
}

func (r record) get(field string) string {
	i, ok := r.columns[field]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r record) optional(field string) *string {
	v := r.get(field)
	if v == "" {
		return nil
	}
	return &v
}

func (r record) or(field, fallback string) string {
	if v := r.get(field); v != "" {
		return v
	}
	return fallback
}

func buildProject(r record) Project {
	description := r.or("description", DefaultDescription)

	p := Project{
		Title:            r.or("title", DefaultTitle),
		Description:      description,
		ShortDescription: r.or("short_description", FirstSentence(description)),
		LongDescription:  r.or("long_description", description),
		Technologies:     SplitList(r.get("technologies")),
		Category:         r.or("category", DefaultCategory),
		GithubURL:        r.optional("github_url"),
		LiveURL:          r.optional("live_url"),
		ImageURL:         r.optional("image_url"),
		Featured:         parseFeatured(r.get("featured")),
		Status:           r.or("status", DefaultStatus),
		CompletionDate:   r.optional("completion_date"),
		Client:           r.optional("client"),
		Role:             r.optional("role"),
		Challenges:       r.optional("challenges"),
		Solution:         r.optional("solution"),
		Results:          r.optional("results"),
		Impact:           r.optional("impact"),
		Learnings:        r.optional("learnings"),
		Features:         SplitList(r.get("features")),
		Images:           SplitList(r.get("images")),
		PriorityOrder:    parsePriority(r.get("priority_order")),
	}
	if len(p.Images) == 0 && p.ImageURL != nil {
		p.Images = []string{*p.ImageURL}
	}
	return p
}

// uniqueID keeps a source id when it is present and unused, otherwise
// falls back to project-<row>.
func uniqueID(sourceID string, row int, seen map[string]bool) string {
	if sourceID != "" && !seen[sourceID] {
		return sourceID
	}
	id := fmt.Sprintf("project-%d", row)
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("project-%d-%d", row, n)
	}
	return id
}

// SplitList splits a comma-delimited value and trims each element. An
// empty value yields an empty, non-nil slice.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// FirstSentence returns s up to and including the first sentence
// terminator that is followed by whitespace or the end of the text.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i == len(runes)-1 || unicode.IsSpace(runes[i+1]) {
			return string(runes[:i+1])
		}
	}
	return s
}

func parseFeatured(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

func parsePriority(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// compareProjects orders by priority when both sides set one, then by
// completion date (newest first) when both sides have one. Anything else
// compares equal so the stable sort keeps source order.
func compareProjects(a, b Project) int {
	if a.PriorityOrder != 0 && b.PriorityOrder != 0 && a.PriorityOrder != b.PriorityOrder {
		return cmp.Compare(a.PriorityOrder, b.PriorityOrder)
	}
	if a.CompletionDate != nil && b.CompletionDate != nil {
		return compareDates(*b.CompletionDate, *a.CompletionDate)
	}
	return 0
}

func compareDates(x, y string) int {
	tx, okx := parseDate(x)
	ty, oky := parseDate(y)
	if okx && oky {
		return tx.Compare(ty)
	}
	return strings.Compare(x, y)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
