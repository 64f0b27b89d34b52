package linker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/model"
)

func chunkEmbedding(seed float32) []float32 {
	return []float32{seed, 1 - seed, 0.5}
}

func TestLinkBidirectional_ExplicitMentionBoostsAndPicksExplains(t *testing.T) {
	store := graphstore.NewMemory()

	code := model.Chunk{
		ID:         "code-1",
		Text:       "func ProcessOrder(o Order) error { return nil }",
		SourceKind: model.SourceKindCode,
		SourceType: model.SourceTypeGitHub,
		FilePath:   "orders/process.go",
		Embedding:  chunkEmbedding(0.9),
	}
	doc := model.Chunk{
		ID:         "doc-1",
		Text:       "# How to use ProcessOrder\n\nCall `ProcessOrder()` to finalize an order.",
		SourceKind: model.SourceKindDocument,
		SourceType: model.SourceTypeWiki,
		Embedding:  chunkEmbedding(0.91),
	}

	require.NoError(t, store.UpsertChunkNode(context.Background(), code))
	require.NoError(t, store.UpsertChunkNode(context.Background(), doc))

	l := New(store, DefaultConfig())
	created, err := l.LinkBidirectional(context.Background(), []model.Chunk{code}, []model.Chunk{doc})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, created, 1)

	rels, err := store.GetCrossSourceRelationships(context.Background(), code.ID)
	require.NoError(t, err)
	require.NotEmpty(t, rels)
	assert.Equal(t, model.RelExplains, rels[0].RelationshipType)
	assert.LessOrEqual(t, rels[0].Confidence, 1.0)
}

func TestLinkBidirectional_BelowThresholdCreatesNothing(t *testing.T) {
	store := graphstore.NewMemory()

	code := model.Chunk{
		ID:         "code-2",
		Text:       "func Unrelated() {}",
		SourceKind: model.SourceKindCode,
		SourceType: model.SourceTypeGitHub,
		Embedding:  chunkEmbedding(0.0),
	}
	doc := model.Chunk{
		ID:         "doc-2",
		Text:       "# Completely unrelated topic about cooking",
		SourceKind: model.SourceKindDocument,
		SourceType: model.SourceTypeWiki,
		Embedding:  chunkEmbedding(1.0),
	}

	require.NoError(t, store.UpsertChunkNode(context.Background(), code))
	require.NoError(t, store.UpsertChunkNode(context.Background(), doc))

	l := New(store, DefaultConfig())
	created, err := l.LinkBidirectional(context.Background(), []model.Chunk{code}, []model.Chunk{doc})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestLinkInMemory_AllBoostersFiringLinksOneCandidate(t *testing.T) {
	commitTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	code := model.Chunk{
		ID:         "code-3",
		Text:       "func Reconcile() {}",
		SourceKind: model.SourceKindCode,
		Author:     "ana",
		FilePath:   "pkg/reconcile.go",
		CommitTime: &commitTime,
		Embedding:  chunkEmbedding(0.9),
	}
	doc := model.Chunk{
		ID:         "doc-3",
		Text:       "Usage: call `Reconcile()` from reconcile.go",
		SourceKind: model.SourceKindDocument,
		Author:     "ana",
		UpdatedAt:  commitTime.Add(12 * time.Hour),
		Embedding:  chunkEmbedding(0.91),
	}

	l := New(nil, DefaultConfig())
	created, err := l.linkChunk(context.Background(), code, model.SourceKindDocument, []model.Chunk{doc})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestSelectRelationshipType_PriorityChain(t *testing.T) {
	assert.Equal(t, model.RelExplains, selectRelationshipType(model.Chunk{Text: "Here is an example of usage."}))
	assert.Equal(t, model.RelDocuments, selectRelationshipType(model.Chunk{Text: "The request and response shapes for this endpoint."}))
	assert.Equal(t, model.RelDocuments, selectRelationshipType(model.Chunk{Text: "Nothing special here.", FilePath: "README.md"}))
	assert.Equal(t, model.RelSemanticallySimilar, selectRelationshipType(model.Chunk{Text: "Nothing special here.", FilePath: "notes.md"}))
}

func TestClamp1(t *testing.T) {
	assert.Equal(t, 1.0, clamp1(1.4))
	assert.Equal(t, 0.5, clamp1(0.5))
}
