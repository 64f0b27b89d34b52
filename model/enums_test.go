package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityType_RoundTrip(t *testing.T) {
	parsed, err := ParseEntityType("function")
	require.NoError(t, err)
	assert.Equal(t, EntityTypeFunction, parsed)
	assert.True(t, parsed.Valid())
}

func TestParseEntityType_Unknown(t *testing.T) {
	_, err := ParseEntityType("not_a_real_type")
	require.Error(t, err)
}

func TestParseRelationshipType_RoundTrip(t *testing.T) {
	parsed, err := ParseRelationshipType("EXPLAINS")
	require.NoError(t, err)
	assert.Equal(t, RelExplains, parsed)
}

func TestParseRelationshipType_Unknown(t *testing.T) {
	_, err := ParseRelationshipType("NOT_A_REL")
	require.Error(t, err)
}

func TestRelationshipType_IsCrossSource(t *testing.T) {
	crossSource := []RelationshipType{RelExplains, RelDocuments, RelSemanticallySimilar, RelMentionsExplicitly, RelUpdatedNear}
	for _, rt := range crossSource {
		assert.True(t, rt.IsCrossSource(), "%s should be cross-source", rt)
	}

	notCrossSource := []RelationshipType{RelContains, RelImports, RelCalls, RelAuthoredBy, RelContributedTo, RelCommittedAt}
	for _, rt := range notCrossSource {
		assert.False(t, rt.IsCrossSource(), "%s should not be cross-source", rt)
	}
}

func TestEntityType_Label(t *testing.T) {
	assert.Equal(t, "FUNCTION", EntityTypeFunction.Label())
	assert.Equal(t, "CODE_ENTITY", EntityTypeCodeEntity.Label())
}

func TestSourceKind_Valid(t *testing.T) {
	assert.True(t, SourceKindCode.Valid())
	assert.True(t, SourceKindDocument.Valid())
	assert.False(t, SourceKind("bogus").Valid())
}

func TestSourceType_Valid(t *testing.T) {
	assert.True(t, SourceTypeLocal.Valid())
	assert.False(t, SourceType("ftp").Valid())
}

func TestExtractionMethod_Valid(t *testing.T) {
	assert.True(t, MethodVectorSimilarity.Valid())
	assert.False(t, ExtractionMethod("guesswork").Valid())
}
