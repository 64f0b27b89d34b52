// Package doc implements the document entity/relationship extractor: a
// heading-tree builder plus regex families for code references, concepts,
// and API mentions. Pure and deterministic over the input text, mirroring
// the code extractor's contract.
package doc

import (
	"regexp"
	"strings"

	"github.com/kogsector/kgfusion/model"
)

var (
	headingPattern    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	codeRefPattern    = regexp.MustCompile("`([^`]+)`")
	conceptPattern    = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)+)\b`)
	apiMentionPattern = regexp.MustCompile(`(?i)endpoint:\s*(/[\w/\-{}:]*)`)
)

var codeRefStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
}

var conceptBlacklistPrefixes = []string{"The Next", "This Is", "You Can"}

const (
	confSection    = 0.95
	confParentOf   = 1.0
	confCodeRef    = 0.85
	confConcept    = 0.7
	confAPIMention = 0.9
	confReferences = 0.8
)

type headingNode struct {
	level    int
	title    string
	line     int
	children []*headingNode
}

// buildHeadingTree folds the flat list of matched headings into a forest by
// stack: while the top of the stack has level >= current, pop and attach to
// the new top; push the new node.
func buildHeadingTree(text string) []*headingNode {
	var roots []*headingNode
	var stack []*headingNode

	for _, loc := range headingPattern.FindAllStringSubmatchIndex(text, -1) {
		level := loc[3] - loc[2]
		title := strings.TrimSpace(text[loc[4]:loc[5]])
		line := lineOf(text, loc[0])
		node := &headingNode{level: level, title: title, line: line}

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// addHeadingEntities recurses over the forest, emitting a section entity per
// node and a PARENT_OF edge per parent->child pair.
func addHeadingEntities(nodes []*headingNode, parentName string, result *model.ExtractionResult) {
	for _, n := range nodes {
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeSection,
			Name:       n.title,
			Confidence: confSection,
			StartLine:  n.line,
		})
		if parentName != "" {
			result.Relationships = append(result.Relationships, model.NamedRelationship{
				FromName:         parentName,
				ToName:           n.title,
				RelationshipType: model.RelParentOf,
				Confidence:       confParentOf,
			})
		}
		addHeadingEntities(n.children, n.title, result)
	}
}

// Extract turns document text into named entities and relationships.
func Extract(text string) model.ExtractionResult {
	var result model.ExtractionResult

	roots := buildHeadingTree(text)
	addHeadingEntities(roots, "", &result)

	var rootName string
	if len(roots) > 0 {
		rootName = roots[0].title
	}

	codeRefNames := extractCodeReferences(text)
	for _, name := range codeRefNames {
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeCodeEntity,
			Name:       name,
			Confidence: confCodeRef,
		})
		if rootName != "" {
			result.Relationships = append(result.Relationships, model.NamedRelationship{
				FromName:         rootName,
				ToName:           name,
				RelationshipType: model.RelReferences,
				Confidence:       confReferences,
			})
		}
	}

	for _, name := range extractConcepts(text) {
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeConcept,
			Name:       name,
			Confidence: confConcept,
		})
	}

	for _, loc := range apiMentionPattern.FindAllStringSubmatchIndex(text, -1) {
		path := text[loc[2]:loc[3]]
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeCodeEntity,
			Name:       path,
			Confidence: confAPIMention,
			StartLine:  lineOf(text, loc[0]),
		})
		if rootName != "" {
			result.Relationships = append(result.Relationships, model.NamedRelationship{
				FromName:         rootName,
				ToName:           path,
				RelationshipType: model.RelReferences,
				Confidence:       confReferences,
			})
		}
	}

	return result
}

// extractCodeReferences returns backtick-wrapped identifiers, trimmed of a
// trailing "()", excluding the stop-word list, deduplicated in order.
func extractCodeReferences(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range codeRefPattern.FindAllStringSubmatch(text, -1) {
		ident := strings.TrimSuffix(m[1], "()")
		lower := strings.ToLower(ident)
		if codeRefStopWords[lower] || ident == "" || seen[ident] {
			continue
		}
		seen[ident] = true
		out = append(out, ident)
	}
	return out
}

// extractConcepts returns two-or-more Capitalized Word sequences, length
// >= 5, deduplicated, excluding the blacklist prefixes.
func extractConcepts(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range conceptPattern.FindAllString(text, -1) {
		if len(m) < 5 || seen[m] {
			continue
		}
		blacklisted := false
		for _, prefix := range conceptBlacklistPrefixes {
			if strings.HasPrefix(m, prefix) {
				blacklisted = true
				break
			}
		}
		if blacklisted {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func lineOf(text string, pos int) int {
	return strings.Count(text[:pos], "\n") + 1
}
