// Package code implements the code entity/relationship extractor: a pure,
// deterministic, regex-based pass over chunk text. It intentionally does not
// parse an AST — the entities and relationships it produces are named, not
// id-resolved; resolution to persisted ids is the caller's job (see
// model.NamedEntity / model.NamedRelationship).
package code

import (
	"regexp"
	"strings"

	"github.com/kogsector/kgfusion/model"
)

var (
	functionPattern = regexp.MustCompile(`(?:fn|function|def|func)\s+(\w+)`)
	classPattern    = regexp.MustCompile(`(?:class|struct|enum|trait|interface)\s+(\w+)`)
	modulePattern   = regexp.MustCompile(`(?:mod|module|namespace|package)\s+(\w+)`)

	importQualifiedPattern = regexp.MustCompile(`(?:import|use)\s+([\w.:]+)`)
	importQuotedPattern    = regexp.MustCompile(`(?:import|require)\s*\(?\s*["']([\w./\-]+)["']`)
	importFromPattern      = regexp.MustCompile(`from\s+([\w.]+)\s+import`)
	importRequirePattern   = regexp.MustCompile(`require\(["']([\w./\-]+)["']\)`)

	implPattern    = regexp.MustCompile(`impl\s+(\w+)\s+for\s+(\w+)`)
	extendsPattern = regexp.MustCompile(`class\s+(\w+)\s+extends\s+(\w+)`)

	apiEndpointPattern = regexp.MustCompile(`(?i)\b(GET|POST|PUT|DELETE|PATCH)\s+(/[\w/\-{}:]*)`)
	ticketPattern      = regexp.MustCompile(`\b[A-Z]{2,10}-\d+\b`)

	functionCallPattern = regexp.MustCompile(`\b(\w+)\s*\(`)
)

// stopWords excludes control-flow keywords from being mistaken for function
// names by the generic `NAME(` call-reference pattern and the declaration
// pattern alike.
var stopWords = map[string]bool{
	"if": true, "for": true, "while": true, "match": true, "return": true,
}

const (
	confDeclared          = 0.9
	confImportedModule    = 0.8
	confEndpoint          = 0.85
	confImplementsExtends = 0.95
	confContains          = 0.8
	confCalls             = 0.7
)

// Extract turns chunk text into named entities and relationships. language
// is an optional hint, currently unused by the pattern families themselves
// (the patterns are written to match across the legacy variants' surface
// syntax uniformly), but kept in the signature so callers can plumb it
// through when per-language dialects are added.
func Extract(text string, language string) model.ExtractionResult {
	var result model.ExtractionResult

	functionNames := extractNames(text, functionPattern, stopWords)
	classNames := extractNames(text, classPattern, nil)
	moduleNames := extractNames(text, modulePattern, nil)

	for _, m := range functionNames {
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeFunction,
			Name:       m.name,
			Confidence: confDeclared,
			StartLine:  m.line,
		})
	}
	for _, m := range classNames {
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeClass,
			Name:       m.name,
			Confidence: confDeclared,
			StartLine:  m.line,
		})
	}
	for _, m := range moduleNames {
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeModule,
			Name:       m.name,
			Confidence: confDeclared,
			StartLine:  m.line,
		})
	}

	hasClass := len(classNames) > 0
	var firstClass string
	if hasClass {
		firstClass = classNames[0].name
	}

	// Imports: four alternative patterns, each contributing a module entity
	// and, when a class has already been found in the chunk, an IMPORTS
	// edge from that class.
	for _, pat := range []*regexp.Regexp{importQualifiedPattern, importQuotedPattern, importFromPattern, importRequirePattern} {
		for _, loc := range pat.FindAllStringSubmatchIndex(text, -1) {
			name := text[loc[2]:loc[3]]
			line := lineOf(text, loc[0])
			result.Entities = append(result.Entities, model.NamedEntity{
				EntityType: model.EntityTypeModule,
				Name:       name,
				Confidence: confImportedModule,
				StartLine:  line,
			})
			if hasClass {
				result.Relationships = append(result.Relationships, model.NamedRelationship{
					FromName:         firstClass,
					ToName:           name,
					RelationshipType: model.RelImports,
					Confidence:       confImportedModule,
				})
			}
		}
	}

	// impl TRAIT for STRUCT -> IMPLEMENTS(struct -> trait)
	for _, loc := range implPattern.FindAllStringSubmatchIndex(text, -1) {
		trait := text[loc[2]:loc[3]]
		structName := text[loc[4]:loc[5]]
		result.Relationships = append(result.Relationships, model.NamedRelationship{
			FromName:         structName,
			ToName:           trait,
			RelationshipType: model.RelImplements,
			Confidence:       confImplementsExtends,
		})
	}

	// class CHILD extends PARENT -> EXTENDS(child -> parent)
	for _, loc := range extendsPattern.FindAllStringSubmatchIndex(text, -1) {
		child := text[loc[2]:loc[3]]
		parent := text[loc[4]:loc[5]]
		result.Relationships = append(result.Relationships, model.NamedRelationship{
			FromName:         child,
			ToName:           parent,
			RelationshipType: model.RelExtends,
			Confidence:       confImplementsExtends,
		})
	}

	// API endpoint mentions: named after the path alone (group 2), not the
	// verb+path match.
	for _, loc := range apiEndpointPattern.FindAllStringSubmatchIndex(text, -1) {
		line := lineOf(text, loc[0])
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeCodeEntity,
			Name:       text[loc[4]:loc[5]],
			Confidence: confEndpoint,
			StartLine:  line,
		})
	}

	// Issue/ticket keys.
	for _, loc := range ticketPattern.FindAllStringIndex(text, -1) {
		line := lineOf(text, loc[0])
		result.Entities = append(result.Entities, model.NamedEntity{
			EntityType: model.EntityTypeIssue,
			Name:       text[loc[0]:loc[1]],
			Confidence: confDeclared,
			StartLine:  line,
		})
	}

	// Function-call references: only calls whose callee is itself declared
	// in this chunk are retained. A single CALLS edge is emitted from the
	// first declared function to each such callee, skipping self-edges.
	if len(functionNames) > 0 {
		declared := make(map[string]bool, len(functionNames))
		for _, m := range functionNames {
			declared[m.name] = true
		}
		caller := functionNames[0].name
		seen := map[string]bool{}
		for _, loc := range functionCallPattern.FindAllStringSubmatchIndex(text, -1) {
			callee := text[loc[2]:loc[3]]
			if stopWords[callee] || !declared[callee] || callee == caller || seen[callee] {
				continue
			}
			seen[callee] = true
			result.Relationships = append(result.Relationships, model.NamedRelationship{
				FromName:         caller,
				ToName:           callee,
				RelationshipType: model.RelCalls,
				Confidence:       confCalls,
			})
		}
	}

	// Contains: if at least one class and any function were declared, emit
	// CONTAINS(firstClass -> function) for each function.
	if hasClass {
		for _, m := range functionNames {
			result.Relationships = append(result.Relationships, model.NamedRelationship{
				FromName:         firstClass,
				ToName:           m.name,
				RelationshipType: model.RelContains,
				Confidence:       confContains,
			})
		}
	}

	return result
}

type nameMatch struct {
	name string
	line int
}

// extractNames runs pat over text, returning the captured group-1 matches in
// order, filtered against stop (may be nil).
func extractNames(text string, pat *regexp.Regexp, stop map[string]bool) []nameMatch {
	var out []nameMatch
	for _, loc := range pat.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if stop != nil && stop[name] {
			continue
		}
		out = append(out, nameMatch{name: name, line: lineOf(text, loc[0])})
	}
	return out
}

// lineOf returns the 1-based line number of byte offset pos in text: the
// count of newlines before pos, plus 1.
func lineOf(text string, pos int) int {
	return strings.Count(text[:pos], "\n") + 1
}
