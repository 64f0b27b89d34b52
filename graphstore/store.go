// Package graphstore defines the graph adapter contract (§4.3) and its
// implementations: a Postgres+pgvector relational property graph (the
// default) and an in-memory implementation used by tests. A third, optional
// vector-index backend (Qdrant) lives in the qdrant subpackage; QdrantBacked
// routes the vector-index methods of Store to it.
package graphstore

import (
	"context"
	"time"

	"github.com/kogsector/kgfusion/model"
)

// ChunkEmbeddingIndex is the vector-index name used for chunk-node
// similarity search, passed to FindSimilarNodes by the hybrid query engine.
const ChunkEmbeddingIndex = "chunk_embedding_idx"

// Direction constrains a neighbor traversal.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// Neighbor is one row of a get_neighbors result.
type Neighbor struct {
	EntityID         string                 `json:"id"`
	Name             string                 `json:"name"`
	RelationshipType model.RelationshipType `json:"relationship"`
	Confidence       float64                `json:"confidence"`
}

// ScoredID is one row of a vector-index query result.
type ScoredID struct {
	ID    string
	Score float64
}

// CrossSourceMatch is one candidate returned by find_similar_chunks_for_linking,
// already carrying the server-computed mention/author boosts (§4.3).
type CrossSourceMatch struct {
	ChunkID           string
	Score             float64
	MentionBoost      float64
	AuthorBoost       float64
	Confidence        float64
	ExplicitMention   bool
	AuthorOverlap     bool
}

// Statistics backs GET /api/graph/statistics.
type Statistics struct {
	NodeCount         int64    `json:"node_count"`
	RelationshipCount int64    `json:"relationship_count"`
	VectorStore       string   `json:"vector_store"`
	VectorDimension   int      `json:"vector_dimension"`
	Indexes           []string `json:"indexes"`
}

// Store is the full graph adapter contract from §4.3. Every method returns
// either success or a typed error (apperr.ErrBackendUnavailable /
// apperr.ErrDatabase, or apperr.ErrNotFound when a looked-up entity or
// chunk does not exist); callers decide whether to propagate or continue, per
// §4.7.
type Store interface {
	UpsertEntityNode(ctx context.Context, e model.Entity) (string, error)
	CreateRelationship(ctx context.Context, fromID, toID string, relType model.RelationshipType, confidence float64, props map[string]any) (string, error)
	GetNeighbors(ctx context.Context, id string, types []model.RelationshipType, direction Direction, hops int) ([]Neighbor, error)
	GetEntity(ctx context.Context, id string) (*model.Entity, error)

	UpsertChunkNode(ctx context.Context, c model.Chunk) error
	GetChunk(ctx context.Context, id string) (*model.Chunk, error)

	CreateVectorIndex(ctx context.Context, name, label, property string, dimension int) error
	SetNodeEmbedding(ctx context.Context, id string, vec []float32, model_, provider string) error
	FindSimilarNodes(ctx context.Context, vec []float32, indexName string, k int, minScore float64) ([]ScoredID, error)
	FindSimilarChunksForLinking(ctx context.Context, sourceChunkID string, targetKind model.SourceKind, k int, minSimilarity float64) ([]CrossSourceMatch, error)

	CreateCrossSourceLink(ctx context.Context, fromID, toID string, relType model.RelationshipType, confidence, similarity float64, explicitMention, authorOverlap bool) error
	GetCrossSourceRelationships(ctx context.Context, id string) ([]Neighbor, error)

	Statistics(ctx context.Context) (Statistics, error)
	Ping(ctx context.Context) error
}

// ChunkLookup is a narrow read contract: given a chunk id, find the
// in-memory chunk record (text, author, commit time, embedding) without
// pulling in the whole Store interface. No package in this module
// implements or consumes it.
type ChunkLookup interface {
	Chunk(id string) (model.Chunk, bool)
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now
