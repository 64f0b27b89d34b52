// Package qdrant provides an alternative vector-index backend for the graph
// adapter's vector half (create_vector_index / set_node_embedding /
// find_similar_nodes), selected in place of pgvector when VECTOR_STORE_ENDPOINT
// is configured (SPEC_FULL.md §11, §13). Entities and relationships remain
// in Postgres regardless; only vector storage and nearest-neighbor search
// move to Qdrant collections.
package qdrant

import (
	"context"
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/kogsector/kgfusion/apperr"
)

// Index wraps a Qdrant collection used as one named vector index (e.g.
// "chunk_embedding_idx"). The graph adapter's QdrantBacked implementation
// holds one Index per distinct index name it is asked to create.
type Index struct {
	client     *qc.Client
	collection string
	dimension  uint64
}

// Dial connects to a Qdrant instance at endpoint (host:port, no scheme).
func Dial(ctx context.Context, endpoint string) (*qc.Client, error) {
	client, err := qc.NewClient(&qc.Config{Host: endpoint})
	if err != nil {
		return nil, fmt.Errorf("%w: connect to qdrant at %s: %w", apperr.ErrBackendUnavailable, endpoint, err)
	}
	return client, nil
}

// NewIndex idempotently creates collection (if absent) with dimension using
// cosine distance, then returns a handle over it — the Qdrant equivalent of
// create_vector_index.
func NewIndex(ctx context.Context, client *qc.Client, collection string, dimension int) (*Index, error) {
	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: check collection %s: %w", apperr.ErrBackendUnavailable, collection, err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     uint64(dimension),
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create collection %s: %w", apperr.ErrBackendUnavailable, collection, err)
		}
	}
	return &Index{client: client, collection: collection, dimension: uint64(dimension)}, nil
}

// Upsert sets the embedding for id — the Qdrant equivalent of
// set_node_embedding's vector-storage half (the model/provider bookkeeping
// fields stay in Postgres on the entity row).
func (idx *Index) Upsert(ctx context.Context, id string, vec []float32) error {
	_, err := idx.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: idx.collection,
		Points: []*qc.PointStruct{
			{
				Id:      qc.NewID(id),
				Vectors: qc.NewVectors(vec...),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: upsert point %s: %w", apperr.ErrBackendUnavailable, id, err)
	}
	return nil
}

// ScoredPoint mirrors graphstore.ScoredID without importing the parent
// package, avoiding an import cycle (graphstore will import this package,
// not the reverse).
type ScoredPoint struct {
	ID    string
	Score float64
}

// Search runs an ANN query for the k nearest points to vec, filtered to
// score >= minScore — the Qdrant equivalent of find_similar_nodes.
func (idx *Index) Search(ctx context.Context, vec []float32, k int, minScore float64) ([]ScoredPoint, error) {
	limit := uint64(k)
	resp, err := idx.client.Query(ctx, &qc.QueryPoints{
		CollectionName: idx.collection,
		Query:          qc.NewQuery(vec...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query collection %s: %w", apperr.ErrBackendUnavailable, idx.collection, err)
	}

	out := make([]ScoredPoint, 0, len(resp))
	for _, point := range resp {
		score := float64(point.GetScore())
		if score < minScore {
			continue
		}
		out = append(out, ScoredPoint{ID: point.GetId().GetUuid(), Score: score})
	}
	return out, nil
}
