package webingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_ExtractsArticleAndTitle(t *testing.T) {
	html := `<html><head><title>Widget Guide</title></head><body>
<nav>skip me</nav>
<article><h1>Widget Guide</h1><p>Call <code>widgetize()</code> to start.</p></article>
</body></html>`

	c := New()
	result, err := c.Convert(html, "https://example.com/docs/widget")
	require.NoError(t, err)
	assert.Contains(t, result.Markdown, "widgetize")
	assert.NotEmpty(t, result.Title)
}

func TestCleanMarkdown_CollapsesExcessiveBlankLines(t *testing.T) {
	input := "one\n\n\n\n\ntwo"
	got := cleanMarkdown(input)
	assert.Equal(t, "one\n\n\ntwo", got)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Hello", firstHeading("intro\n# Hello\nbody"))
	assert.Equal(t, "", firstHeading("no heading here"))
}
