// Package webingest prepares raw HTML (source_type = crawler) for the
// document extractor: go-readability strips boilerplate down to the
// readable article, then html-to-markdown renders that article to Markdown
// so the heading-tree/concept/code-reference extractor (§4.2) runs over
// clean prose instead of markup. Grounded on the teacher's
// processor/web-ingester/converter.go (NewConverter/Convert shape,
// GitHubFlavored plugin) and on go-shiori/go-readability's FromReader entry
// point for the boilerplate-stripping half the teacher package lacked.
package webingest

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
)

// Result is a readable-article rendered to Markdown, ready to hand to
// extract/doc.Extract.
type Result struct {
	Title    string
	Markdown string
}

// Converter turns raw HTML into clean, extractor-ready Markdown.
type Converter struct {
	converter *md.Converter
}

// New builds a Converter with GitHub-flavored Markdown output, matching the
// teacher's NewConverter.
func New() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// Convert extracts the readable article from htmlContent (fetched from
// pageURL, used by go-readability to resolve relative links and pick
// heuristics) and renders it to Markdown.
func (c *Converter) Convert(htmlContent string, pageURL string) (Result, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), parsedURL)
	if err != nil {
		return Result{}, fmt.Errorf("extract readable article: %w", err)
	}

	markdown, err := c.converter.ConvertString(article.Content)
	if err != nil {
		return Result{}, fmt.Errorf("convert article to markdown: %w", err)
	}

	title := article.Title
	if title == "" {
		title = firstHeading(markdown)
	}

	return Result{Title: title, Markdown: cleanMarkdown(markdown)}, nil
}

// firstHeading returns the first H1 line of markdown, used when
// go-readability couldn't determine a title.
func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}

// cleanMarkdown collapses runs of more than two blank lines and trims
// trailing whitespace per line, matching the teacher's cleanMarkdown.
func cleanMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	blankRun := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			blankRun++
			if blankRun > 2 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
