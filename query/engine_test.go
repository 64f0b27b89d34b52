package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/model"
)

type stubEmbedder struct {
	vec []float32
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, nil
}

func mustUpsertChunk(t *testing.T, store *graphstore.Memory, c model.Chunk) {
	t.Helper()
	require.NoError(t, store.UpsertChunkNode(context.Background(), c))
}

func TestHybrid_AssemblesAndDedupsAcrossHits(t *testing.T) {
	store := graphstore.NewMemory()
	ctx := context.Background()

	chunkA := model.Chunk{ID: "chunk-a", Text: "func A() {}", SourceKind: model.SourceKindCode, SourceType: model.SourceTypeGitHub, Embedding: []float32{1, 0, 0}}
	chunkB := model.Chunk{ID: "chunk-b", Text: "func B() {}", SourceKind: model.SourceKindCode, SourceType: model.SourceTypeGitHub, Embedding: []float32{0.9, 0.1, 0}}
	chunkC := model.Chunk{ID: "chunk-c", Text: "unrelated", SourceKind: model.SourceKindCode, SourceType: model.SourceTypeGitHub, Embedding: []float32{0, 1, 0}}
	mustUpsertChunk(t, store, chunkA)
	mustUpsertChunk(t, store, chunkB)
	mustUpsertChunk(t, store, chunkC)

	// Give chunk-a an entity identity so graph expansion has something to
	// find: an entity sharing chunk-a's id, linked to a shared neighbor.
	entityA := model.Entity{ID: "chunk-a", EntityType: model.EntityTypeFunction, Name: "A"}
	entityB := model.Entity{ID: "chunk-b", EntityType: model.EntityTypeFunction, Name: "B"}
	neighbor := model.Entity{ID: "shared-neighbor", EntityType: model.EntityTypeModule, Name: "shared"}
	_, err := store.UpsertEntityNode(ctx, entityA)
	require.NoError(t, err)
	_, err = store.UpsertEntityNode(ctx, entityB)
	require.NoError(t, err)
	_, err = store.UpsertEntityNode(ctx, neighbor)
	require.NoError(t, err)
	_, err = store.CreateRelationship(ctx, "chunk-a", "shared-neighbor", model.RelContains, 0.9, nil)
	require.NoError(t, err)
	_, err = store.CreateRelationship(ctx, "chunk-b", "shared-neighbor", model.RelContains, 0.9, nil)
	require.NoError(t, err)

	engine := New(store, stubEmbedder{vec: []float32{1, 0, 0}}, 0.5)
	result, err := engine.Hybrid(ctx, model.SearchRequest{Query: "find A", Limit: 2})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Hits), 2)
	assert.Equal(t, "chunk-a", result.Hits[0].ChunkID)

	// shared-neighbor is reachable from both hit chunk-a and hit chunk-b;
	// dedup by entity id must collapse it to a single entry.
	count := 0
	for _, n := range result.RelatedEntities {
		if n.EntityID == "shared-neighbor" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, result.Metadata.HitCount, len(result.Hits))
}

func TestGraphOnly_FiltersByTypeAndTruncatesToLimit(t *testing.T) {
	store := graphstore.NewMemory()
	ctx := context.Background()

	root := model.Entity{ID: "root", EntityType: model.EntityTypeFile, Name: "root"}
	require.NoError(t, mustUpsert(ctx, store, root))
	for i := 0; i < 3; i++ {
		n := model.Entity{ID: string(rune('a' + i)), EntityType: model.EntityTypeFunction, Name: string(rune('a' + i))}
		require.NoError(t, mustUpsert(ctx, store, n))
		_, err := store.CreateRelationship(ctx, "root", n.ID, model.RelContains, 1.0, nil)
		require.NoError(t, err)
	}
	other := model.Entity{ID: "z", EntityType: model.EntityTypeFunction, Name: "z"}
	require.NoError(t, mustUpsert(ctx, store, other))
	_, err := store.CreateRelationship(ctx, "root", "z", model.RelImports, 1.0, nil)
	require.NoError(t, err)

	engine := New(store, stubEmbedder{}, 0.5)
	result, err := engine.GraphOnly(ctx, model.SearchRequest{
		StartIDs:          []string{"root"},
		RelationshipTypes: []model.RelationshipType{model.RelContains},
		Limit:             2,
	})
	require.NoError(t, err)
	assert.Len(t, result.RelatedEntities, 2)
	for _, n := range result.RelatedEntities {
		assert.Equal(t, model.RelContains, n.RelationshipType)
	}
}

func mustUpsert(ctx context.Context, store *graphstore.Memory, e model.Entity) error {
	_, err := store.UpsertEntityNode(ctx, e)
	return err
}
