package graphstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/apperr"
	"github.com/kogsector/kgfusion/model"
)

func TestMemory_UpsertAndGetEntity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	e := model.Entity{ID: "e1", EntityType: model.EntityTypeFunction, Name: "calculate_sum"}
	id, err := m.UpsertEntityNode(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, "e1", id)

	got, err := m.GetEntity(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "calculate_sum", got.Name)
}

func TestMemory_GetEntity_NotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.GetEntity(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemory_CreateRelationship_RequiresBothEntities(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, err := m.UpsertEntityNode(ctx, model.Entity{ID: "a"})
	require.NoError(t, err)

	_, err = m.CreateRelationship(ctx, "a", "missing", model.RelContains, 0.8, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemory_GetNeighbors_OneHopOutgoing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.UpsertEntityNode(ctx, model.Entity{ID: "class", Name: "Service"})
	_, _ = m.UpsertEntityNode(ctx, model.Entity{ID: "fn", Name: "run"})
	_, err := m.CreateRelationship(ctx, "class", "fn", model.RelContains, 0.8, nil)
	require.NoError(t, err)

	neighbors, err := m.GetNeighbors(ctx, "class", []model.RelationshipType{model.RelContains}, DirectionOutgoing, 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "fn", neighbors[0].EntityID)
}

func TestMemory_ChunkRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	chunk := model.Chunk{ID: "c1", Text: "hello", SourceKind: model.SourceKindDocument}
	require.NoError(t, m.UpsertChunkNode(ctx, chunk))

	got, err := m.GetChunk(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	fromLookup, ok := m.Chunk("c1")
	assert.True(t, ok)
	assert.Equal(t, "hello", fromLookup.Text)
}

func TestMemory_FindSimilarNodes_OrdersByScoreDescending(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateVectorIndex(ctx, ChunkEmbeddingIndex, "chunk", "embedding", 2))

	require.NoError(t, m.UpsertChunkNode(ctx, model.Chunk{ID: "near", Embedding: []float32{1, 0}}))
	require.NoError(t, m.UpsertChunkNode(ctx, model.Chunk{ID: "far", Embedding: []float32{0, 1}}))

	results, err := m.FindSimilarNodes(ctx, []float32{1, 0}, ChunkEmbeddingIndex, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "near", results[0].ID)
}

func TestMemory_FindSimilarChunksForLinking_AppliesBoosters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	src := model.Chunk{ID: "src", SourceKind: model.SourceKindCode, Embedding: []float32{1, 0}, FilePath: "pkg/widget.go", Author: "alice"}
	require.NoError(t, m.UpsertChunkNode(ctx, src))

	target := model.Chunk{
		ID: "doc1", SourceKind: model.SourceKindDocument, Embedding: []float32{1, 0},
		Text: "see widget.go for details", Author: "alice",
	}
	require.NoError(t, m.UpsertChunkNode(ctx, target))

	matches, err := m.FindSimilarChunksForLinking(ctx, "src", model.SourceKindDocument, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].ExplicitMention)
	assert.True(t, matches[0].AuthorOverlap)
	assert.InDelta(t, 1.0, matches[0].Confidence, 1e-9)
}

func TestMemory_Statistics(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.UpsertEntityNode(ctx, model.Entity{ID: "a"})

	stats, err := m.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NodeCount)
	assert.Equal(t, "in-memory", stats.VectorStore)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1}))
}
