package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(projects []Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.Title
	}
	return out
}

func TestNormalize_DefaultShape(t *testing.T) {
	header := []string{"title", "description", "technologies", "featured", "unknown_column"}
	projects := Normalize(header, [][]string{{"", "", "", "", "ignored"}})
	require.Len(t, projects, 1)

	assert.Equal(t, Project{
		ID:               "project-0",
		Title:            DefaultTitle,
		Description:      DefaultDescription,
		ShortDescription: DefaultDescription,
		LongDescription:  DefaultDescription,
		Technologies:     []string{},
		Category:         DefaultCategory,
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	}, projects[0])
}

func TestNormalize_ShortRowsReadAsEmpty(t *testing.T) {
	projects := Normalize([]string{"title", "category", "status"}, [][]string{{"Only title"}})
	require.Len(t, projects, 1)
	assert.Equal(t, "Only title", projects[0].Title)
	assert.Equal(t, DefaultCategory, projects[0].Category)
	assert.Equal(t, DefaultStatus, projects[0].Status)
}

func TestNormalize_FullRow(t *testing.T) {
	raw := strings.Join([]string{
		"Title,Description,Technologies,Category,GitHub_URL,Live_URL,Image_URL,Featured,Status,Completion_Date,Client,Features,Images,Priority_Order",
		`Site,"Fast site. Built with Go.","Go, HTMX ,Tailwind",tools,https://github.com/x,https://x.dev,https://x.dev/a.png,TRUE,in-progress,2024-05-01,Acme,"Search, Filters",,3`,
	}, "\n")

	projects, err := FromCSV(raw)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	p := projects[0]

	assert.Equal(t, "Site", p.Title)
	assert.Equal(t, "Fast site. Built with Go.", p.Description)
	assert.Equal(t, "Fast site.", p.ShortDescription)
	assert.Equal(t, p.Description, p.LongDescription)
	assert.Equal(t, []string{"Go", "HTMX", "Tailwind"}, p.Technologies)
	assert.Equal(t, "tools", p.Category)
	assert.Equal(t, "https://github.com/x", deref(p.GithubURL))
	assert.Equal(t, "https://x.dev", deref(p.LiveURL))
	assert.True(t, p.Featured)
	assert.Equal(t, "in-progress", p.Status)
	assert.Equal(t, "2024-05-01", deref(p.CompletionDate))
	assert.Equal(t, "Acme", deref(p.Client))
	assert.Nil(t, p.Role)
	assert.Equal(t, []string{"Search", "Filters"}, p.Features)
	assert.Equal(t, []string{"https://x.dev/a.png"}, p.Images, "images fall back to image_url")
	assert.Equal(t, 3, p.PriorityOrder)
}

func TestNormalize_HeaderAliases(t *testing.T) {
	header := []string{"name", "Type", "Descriptions", "Tech", "Link"}
	projects := Normalize(header, [][]string{{"Old", "iot", "From the old sheet", "C, MQTT", "https://old.dev"}})
	require.Len(t, projects, 1)
	p := projects[0]
	assert.Equal(t, "Old", p.Title)
	assert.Equal(t, "iot", p.Category)
	assert.Equal(t, "From the old sheet", p.Description)
	assert.Equal(t, []string{"C", "MQTT"}, p.Technologies)
	assert.Equal(t, "https://old.dev", deref(p.LiveURL))
}

func TestNormalize_CanonicalHeaderWinsOverAlias(t *testing.T) {
	projects := Normalize([]string{"name", "title"}, [][]string{{"alias", "canonical"}})
	assert.Equal(t, "canonical", projects[0].Title)
}

func TestNormalize_FeaturedCoercion(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"1", true},
		{"yes", false},
		{"0", false},
		{"false", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			projects := Normalize([]string{"featured"}, [][]string{{tt.value}})
			assert.Equal(t, tt.want, projects[0].Featured)
		})
	}
}

func TestNormalize_PriorityCoercion(t *testing.T) {
	projects := Normalize([]string{"title", "priority_order"}, [][]string{{"a", "high"}, {"b", "2.5"}, {"c", "-1"}})
	byTitle := map[string]int{}
	for _, p := range projects {
		byTitle[p.Title] = p.PriorityOrder
	}
	assert.Equal(t, map[string]int{"a": 0, "b": 0, "c": -1}, byTitle)
}

func TestNormalize_IDs(t *testing.T) {
	header := []string{"id", "title"}
	rows := [][]string{
		{"alpha", "A"},
		{"", "B"},
		{"alpha", "C"},
		{"project-1", "D"},
	}
	projects := Normalize(header, rows)

	ids := map[string]string{}
	for _, p := range projects {
		ids[p.Title] = p.ID
	}
	assert.Equal(t, "alpha", ids["A"])
	assert.Equal(t, "project-1", ids["B"])
	assert.Equal(t, "project-2", ids["C"])
	assert.Equal(t, "project-3", ids["D"], "a source id that is already taken is replaced")

	seen := map[string]bool{}
	for _, p := range projects {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestNormalize_SortByPriority(t *testing.T) {
	header := []string{"title", "priority_order"}
	rows := [][]string{{"third", "3"}, {"first", "1"}, {"second", "2"}}
	assert.Equal(t, []string{"first", "second", "third"}, titles(Normalize(header, rows)))
}

func TestNormalize_SortByCompletionDate(t *testing.T) {
	header := []string{"title", "completion_date"}
	rows := [][]string{
		{"old", "2021-03-01"},
		{"new", "2024-01-15"},
		{"mid", "2023-07"},
	}
	assert.Equal(t, []string{"new", "mid", "old"}, titles(Normalize(header, rows)))
}

func TestNormalize_SortStableWithoutKeys(t *testing.T) {
	header := []string{"title", "priority_order", "completion_date"}
	rows := [][]string{
		{"a", "0", ""},
		{"b", "", ""},
		{"c", "0", ""},
		{"d", "", ""},
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(Normalize(header, rows)))
}

func TestNormalize_ZeroPriorityFallsThroughToDate(t *testing.T) {
	header := []string{"title", "priority_order", "completion_date"}
	rows := [][]string{
		{"older", "0", "2020-01-01"},
		{"newer", "0", "2022-01-01"},
	}
	assert.Equal(t, []string{"newer", "older"}, titles(Normalize(header, rows)))
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"a", []string{"a"}},
		{"a, b,c", []string{"a", "b", "c"}},
		{" Go ,  Rust ", []string{"Go", "Rust"}},
		{"a,,b", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitList(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
			if strings.TrimSpace(tt.in) != "" {
				assert.Len(t, got, len(strings.Split(tt.in, ",")))
			}
		})
	}
}

func TestFirstSentence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"One. Two.", "One."},
		{"Is it? Yes.", "Is it?"},
		{"Version 1.2 is out. Next.", "Version 1.2 is out."},
		{"No terminator", "No terminator"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstSentence(tt.in))
		})
	}
}
