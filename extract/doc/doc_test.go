package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/model"
)

func TestExtract_HeadingHierarchy(t *testing.T) {
	result := Extract("# A\n## B\n### C\n## D")

	var sections []string
	for _, e := range result.Entities {
		if e.EntityType == model.EntityTypeSection {
			sections = append(sections, e.Name)
		}
	}
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, sections)

	var parentOf []model.NamedRelationship
	for _, r := range result.Relationships {
		if r.RelationshipType == model.RelParentOf {
			parentOf = append(parentOf, r)
		}
	}
	require.Len(t, parentOf, 3)

	expected := map[string]string{"B": "A", "C": "B", "D": "A"}
	for _, r := range parentOf {
		assert.Equal(t, expected[r.ToName], r.FromName, "parent of %s", r.ToName)
		assert.Equal(t, 1.0, r.Confidence)
	}
}

func TestExtract_CodeReferenceUnderRootSection(t *testing.T) {
	result := Extract("# Widgets\nCall `widgetize()` to begin.")

	var sawCodeRef bool
	for _, e := range result.Entities {
		if e.EntityType == model.EntityTypeCodeEntity && e.Name == "widgetize" {
			sawCodeRef = true
			assert.Equal(t, 0.85, e.Confidence)
		}
	}
	assert.True(t, sawCodeRef)

	var sawReferences bool
	for _, r := range result.Relationships {
		if r.RelationshipType == model.RelReferences && r.FromName == "Widgets" && r.ToName == "widgetize" {
			sawReferences = true
		}
	}
	assert.True(t, sawReferences)
}

func TestExtract_CodeReferenceSkipsStopWords(t *testing.T) {
	result := Extract("Some text with `the` and `is` in backticks.")
	for _, e := range result.Entities {
		assert.NotEqual(t, "the", e.Name)
		assert.NotEqual(t, "is", e.Name)
	}
}

func TestExtract_ConceptMultiWordCapitalized(t *testing.T) {
	result := Extract("This describes the Knowledge Graph in detail.")

	var sawConcept bool
	for _, e := range result.Entities {
		if e.EntityType == model.EntityTypeConcept && e.Name == "Knowledge Graph" {
			sawConcept = true
			assert.Equal(t, 0.7, e.Confidence)
		}
	}
	assert.True(t, sawConcept)
}

func TestExtract_APIMention(t *testing.T) {
	result := Extract("# API\nEndpoint: /api/v1/widgets")

	var sawMention bool
	for _, e := range result.Entities {
		if e.EntityType == model.EntityTypeCodeEntity && e.Name == "/api/v1/widgets" {
			sawMention = true
			assert.Equal(t, 0.9, e.Confidence)
		}
	}
	assert.True(t, sawMention)
}

func TestExtract_NoHeadingsNoSections(t *testing.T) {
	result := Extract("plain text, no structure at all")
	for _, e := range result.Entities {
		assert.NotEqual(t, model.EntityTypeSection, e.EntityType)
	}
}
