package graphstore

import (
	"context"
	"fmt"
	"sync"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/kogsector/kgfusion/graphstore/qdrant"
)

// QdrantBacked decorates a *Postgres adapter, moving the vector-index half
// of the contract (create_vector_index / set_node_embedding /
// find_similar_nodes) onto Qdrant collections while entities, relationships,
// and chunk metadata remain rows in Postgres — selected in place of plain
// Postgres when VECTOR_STORE_ENDPOINT (SPEC_FULL.md §6, §11) is configured.
//
// find_similar_chunks_for_linking is deliberately NOT moved here: that fused
// query needs each candidate's text and author alongside its vector score
// in one round trip, which pgvector answers directly and Qdrant (which
// knows nothing about chunk text or authorship) cannot without an extra
// Postgres lookup per candidate. The linker therefore always scores
// against Postgres/pgvector, matching DESIGN.md's recorded scope for this
// backend.
type QdrantBacked struct {
	*Postgres
	client *qc.Client

	mu      sync.Mutex
	indexes map[string]*qdrant.Index
}

// NewQdrantBacked wraps pg, dialing Qdrant at endpoint for the vector half
// of the contract.
func NewQdrantBacked(ctx context.Context, pg *Postgres, endpoint string) (*QdrantBacked, error) {
	client, err := qdrant.Dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return &QdrantBacked{Postgres: pg, client: client, indexes: map[string]*qdrant.Index{}}, nil
}

// CreateVectorIndex idempotently creates a Qdrant collection named `name`
// instead of a pgvector HNSW index.
func (q *QdrantBacked) CreateVectorIndex(ctx context.Context, name, label, property string, dimension int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx, err := qdrant.NewIndex(ctx, q.client, name, dimension)
	if err != nil {
		return err
	}
	q.indexes[name] = idx
	return nil
}

// SetNodeEmbedding writes the vector to Qdrant (when a collection has been
// created for this id's index) and still records the bookkeeping fields
// (embedding_model/provider) on the Postgres entity row, matching
// set_node_embedding's contract of "sets vector property and bookkeeping
// fields" even when the vector itself lives elsewhere.
func (q *QdrantBacked) SetNodeEmbedding(ctx context.Context, id string, vec []float32, modelName, provider string) error {
	if err := q.Postgres.recordEmbeddingMetadata(ctx, id, modelName, provider); err != nil {
		return err
	}
	idx := q.defaultIndex()
	if idx == nil {
		return nil
	}
	return idx.Upsert(ctx, id, vec)
}

// FindSimilarNodes queries the Qdrant collection for indexName when one has
// been created for it, falling back to the Postgres/pgvector path for any
// index name it doesn't recognize (e.g. a caller querying an entity-label
// index that was never routed to Qdrant).
func (q *QdrantBacked) FindSimilarNodes(ctx context.Context, vec []float32, indexName string, k int, minScore float64) ([]ScoredID, error) {
	q.mu.Lock()
	idx, ok := q.indexes[indexName]
	q.mu.Unlock()
	if !ok {
		return q.Postgres.FindSimilarNodes(ctx, vec, indexName, k, minScore)
	}

	points, err := idx.Search(ctx, vec, k, minScore)
	if err != nil {
		return nil, fmt.Errorf("qdrant find similar nodes: %w", err)
	}
	out := make([]ScoredID, 0, len(points))
	for _, p := range points {
		out = append(out, ScoredID{ID: p.ID, Score: p.Score})
	}
	return out, nil
}

// Statistics reports the Qdrant collections as the active vector store
// instead of Postgres/pgvector.
func (q *QdrantBacked) Statistics(ctx context.Context) (Statistics, error) {
	stats, err := q.Postgres.Statistics(ctx)
	if err != nil {
		return stats, err
	}
	stats.VectorStore = "qdrant"
	q.mu.Lock()
	stats.Indexes = stats.Indexes[:0]
	for name := range q.indexes {
		stats.Indexes = append(stats.Indexes, name)
	}
	q.mu.Unlock()
	return stats, nil
}

// defaultIndex returns the chunk-embedding index if one has been created,
// since that is the only index SetNodeEmbedding's callers (the chunk
// processor) currently populate via this path.
func (q *QdrantBacked) defaultIndex() *qdrant.Index {
	q.mu.Lock()
	defer q.mu.Unlock()
	if idx, ok := q.indexes[ChunkEmbeddingIndex]; ok {
		return idx
	}
	for _, idx := range q.indexes {
		return idx
	}
	return nil
}
