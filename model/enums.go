// Package model defines the closed data types shared by every component:
// chunks, entities, relationships, evidence, and the enumerations that tag
// them. Enum values are string-typed, matching the vocabulary convention used
// across this codebase, and every enum exposes a Valid method so the HTTP
// boundary can reject unknown tags with a 400 instead of silently persisting
// garbage.
package model

import (
	"fmt"
	"strings"

	"github.com/kogsector/kgfusion/apperr"
)

// SourceKind classifies a chunk as code or prose.
type SourceKind string

const (
	SourceKindCode     SourceKind = "code"
	SourceKindDocument SourceKind = "document"
)

func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindCode, SourceKindDocument:
		return true
	}
	return false
}

// SourceType is the closed set of origins a chunk can come from.
type SourceType string

const (
	SourceTypeGitHub    SourceType = "github"
	SourceTypeGitLab    SourceType = "gitlab"
	SourceTypeBitbucket SourceType = "bitbucket"
	SourceTypeFileShare SourceType = "file_share"
	SourceTypeChat      SourceType = "chat"
	SourceTypeEmail     SourceType = "email"
	SourceTypeWiki      SourceType = "wiki"
	SourceTypeCrawler   SourceType = "crawler"
	SourceTypeLocal     SourceType = "local"
)

func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeGitHub, SourceTypeGitLab, SourceTypeBitbucket, SourceTypeFileShare,
		SourceTypeChat, SourceTypeEmail, SourceTypeWiki, SourceTypeCrawler, SourceTypeLocal:
		return true
	}
	return false
}

// EntityType is the closed set of graph node kinds.
type EntityType string

const (
	EntityTypeRepository  EntityType = "repository"
	EntityTypeFile        EntityType = "file"
	EntityTypeFunction    EntityType = "function"
	EntityTypeClass       EntityType = "class"
	EntityTypeModule      EntityType = "module"
	EntityTypeCommit      EntityType = "commit"
	EntityTypePullRequest EntityType = "pull_request"
	EntityTypeIssue       EntityType = "issue"
	EntityTypeDocument    EntityType = "document"
	EntityTypeSection     EntityType = "section"
	EntityTypeConcept     EntityType = "concept"
	EntityTypeMessage     EntityType = "message"
	EntityTypeThread      EntityType = "thread"
	EntityTypeChannel     EntityType = "channel"
	EntityTypePerson      EntityType = "person"
	EntityTypeOrg         EntityType = "organization"
	EntityTypeCodeEntity  EntityType = "code_entity"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeRepository, EntityTypeFile, EntityTypeFunction, EntityTypeClass,
		EntityTypeModule, EntityTypeCommit, EntityTypePullRequest, EntityTypeIssue,
		EntityTypeDocument, EntityTypeSection, EntityTypeConcept, EntityTypeMessage,
		EntityTypeThread, EntityTypeChannel, EntityTypePerson, EntityTypeOrg, EntityTypeCodeEntity:
		return true
	}
	return false
}

// Label returns the uppercased graph-node label for this entity type, per
// the persisted-layout rule that node label = uppercase entity_type.
func (t EntityType) Label() string {
	return strings.ToUpper(string(t))
}

// RelationshipType is the closed set of directed edge kinds. The three
// structural families (code, document) and the cross-source family are kept
// as one enum because the graph adapter treats them uniformly; IsCrossSource
// distinguishes the five types that feed get_cross_source_relationships.
type RelationshipType string

const (
	RelContains    RelationshipType = "CONTAINS"
	RelImports     RelationshipType = "IMPORTS"
	RelCalls       RelationshipType = "CALLS"
	RelImplements  RelationshipType = "IMPLEMENTS"
	RelExtends     RelationshipType = "EXTENDS"
	RelParentOf    RelationshipType = "PARENT_OF"
	RelReferences  RelationshipType = "REFERENCES"
	RelDefines     RelationshipType = "DEFINES"

	RelExplains            RelationshipType = "EXPLAINS"
	RelDocuments           RelationshipType = "DOCUMENTS"
	RelSemanticallySimilar RelationshipType = "SEMANTICALLY_SIMILAR"
	RelMentionsExplicitly  RelationshipType = "MENTIONS_EXPLICITLY"
	RelUpdatedNear         RelationshipType = "UPDATED_NEAR"

	RelAuthoredBy    RelationshipType = "AUTHORED_BY"
	RelContributedTo RelationshipType = "CONTRIBUTED_TO"
	RelCommittedAt   RelationshipType = "COMMITTED_AT"
)

func (t RelationshipType) Valid() bool {
	switch t {
	case RelContains, RelImports, RelCalls, RelImplements, RelExtends,
		RelParentOf, RelReferences, RelDefines,
		RelExplains, RelDocuments, RelSemanticallySimilar, RelMentionsExplicitly, RelUpdatedNear,
		RelAuthoredBy, RelContributedTo, RelCommittedAt:
		return true
	}
	return false
}

// IsCrossSource reports whether this type belongs to the distinguishing
// cross-source set returned by get_cross_source_relationships. Authorship and
// temporal types are adjacent in the taxonomy but are deliberately excluded:
// only these five participate in cross-source traversal.
func (t RelationshipType) IsCrossSource() bool {
	switch t {
	case RelExplains, RelDocuments, RelSemanticallySimilar, RelMentionsExplicitly, RelUpdatedNear:
		return true
	}
	return false
}

// ExtractionMethod records how a piece of evidence was produced.
type ExtractionMethod string

const (
	MethodAST               ExtractionMethod = "ast"
	MethodVectorSimilarity  ExtractionMethod = "vector_similarity"
	MethodExplicitMention   ExtractionMethod = "explicit_mention"
	MethodTemporalProximity ExtractionMethod = "temporal_proximity"
	MethodAuthorOverlap     ExtractionMethod = "author_overlap"
	MethodPatternMatch      ExtractionMethod = "pattern_match"
	MethodManual            ExtractionMethod = "manual"
	MethodCombined          ExtractionMethod = "combined"
)

func (m ExtractionMethod) Valid() bool {
	switch m {
	case MethodAST, MethodVectorSimilarity, MethodExplicitMention, MethodTemporalProximity,
		MethodAuthorOverlap, MethodPatternMatch, MethodManual, MethodCombined:
		return true
	}
	return false
}

// ParseEntityType validates a raw string against the closed set, returning a
// validation error the HTTP layer maps to 400.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown entity_type %q", apperr.ErrValidation, s)
	}
	return t, nil
}

// ParseRelationshipType validates a raw string against the closed set.
func ParseRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown relationship_type %q", apperr.ErrValidation, s)
	}
	return t, nil
}
