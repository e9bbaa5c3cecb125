package catalog

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// Section is a titled long-form field of a project.
type Section struct {
	Title string
	HTML  template.HTML
}

// Sections renders the case-study fields that are set, in display order.
// goldmark's default renderer drops raw HTML from the sheet.
func Sections(p Project) []Section {
	fields := []struct {
		title string
		value *string
	}{
		{"Overview", &p.LongDescription},
		{"Challenges", p.Challenges},
		{"Solution", p.Solution},
		{"Results", p.Results},
		{"Impact", p.Impact},
		{"Learnings", p.Learnings},
	}

	var out []Section
	for _, f := range fields {
		text := deref(f.value)
		if text == "" {
			continue
		}
		out = append(out, Section{Title: f.title, HTML: RenderMarkdown(text)})
	}
	return out
}

// RenderMarkdown converts markdown to HTML, falling back to escaped text.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
