package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections(t *testing.T) {
	challenges := "Scaling **writes**"
	p := Project{LongDescription: "Overview text", Challenges: &challenges}

	sections := Sections(p)
	require.Len(t, sections, 2)
	assert.Equal(t, "Overview", sections[0].Title)
	assert.Equal(t, "Challenges", sections[1].Title)
	assert.Contains(t, string(sections[1].HTML), "<strong>writes</strong>")
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
}
