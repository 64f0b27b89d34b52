package graphstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kogsector/kgfusion/apperr"
	"github.com/kogsector/kgfusion/model"
)

// Migration DDL, applied by the `kgfusion migrate` CLI subcommand. Kept here
// rather than in a separate migrations/ directory because the schema is
// small and stable; see MrWong99-glyphoxa/pkg/memory/postgres/schema.go for
// the pattern this follows (CREATE EXTENSION + CREATE TABLE IF NOT EXISTS
// blocks, idempotent on every boot).
const migrationDDL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS entities (
    id           TEXT PRIMARY KEY,
    entity_type  TEXT NOT NULL,
    source       TEXT NOT NULL,
    source_id    TEXT NOT NULL,
    name         TEXT NOT NULL,
    canonical_id TEXT NOT NULL DEFAULT '',
    properties   JSONB NOT NULL DEFAULT '{}',
    embedding    vector,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_entities_type_source ON entities (entity_type, source, source_id);

CREATE TABLE IF NOT EXISTS relationships (
    id                TEXT PRIMARY KEY,
    from_entity_id    TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    to_entity_id      TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    relationship_type TEXT NOT NULL,
    confidence        DOUBLE PRECISION NOT NULL,
    properties        JSONB NOT NULL DEFAULT '{}',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (from_entity_id, to_entity_id, relationship_type)
);

CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships (from_entity_id);
CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships (to_entity_id);

CREATE TABLE IF NOT EXISTS chunks (
    id            TEXT PRIMARY KEY,
    text          TEXT NOT NULL,
    content_hash  TEXT NOT NULL,
    source_kind   TEXT NOT NULL,
    source_type   TEXT NOT NULL,
    source_id     TEXT NOT NULL,
    owner_id      TEXT NOT NULL,
    file_path     TEXT NOT NULL DEFAULT '',
    repo_name     TEXT NOT NULL DEFAULT '',
    heading_path  TEXT NOT NULL DEFAULT '',
    author        TEXT NOT NULL DEFAULT '',
    commit_time   TIMESTAMPTZ,
    metadata      JSONB NOT NULL DEFAULT '{}',
    embedding     vector,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_chunks_source_kind ON chunks (source_kind);

CREATE TABLE IF NOT EXISTS cross_source_links (
    id                TEXT PRIMARY KEY,
    from_chunk_id     TEXT NOT NULL REFERENCES chunks(id) ON DELETE CASCADE,
    to_chunk_id       TEXT NOT NULL REFERENCES chunks(id) ON DELETE CASCADE,
    relationship_type TEXT NOT NULL,
    confidence        DOUBLE PRECISION NOT NULL,
    properties        JSONB NOT NULL DEFAULT '{}',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (from_chunk_id, to_chunk_id, relationship_type)
);

CREATE INDEX IF NOT EXISTS idx_cross_source_links_from ON cross_source_links (from_chunk_id);
CREATE INDEX IF NOT EXISTS idx_cross_source_links_to ON cross_source_links (to_chunk_id);
`

// Postgres is the default graph adapter: entities, relationships, and
// chunks as rows in a single Postgres database, with pgvector columns
// backing the vector-index half of the contract. Grounded on
// MrWong99-glyphoxa/pkg/memory/postgres/{knowledge_graph,semantic_index}.go.
type Postgres struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewPostgres wraps an already-connected pool. cmd/kgfusion builds the pool
// with pgxpool.ParseConfig + pgxpool.NewWithConfig, registering the pgvector
// types in AfterConnect, so this package never constructs its own
// connection string.
func NewPostgres(pool *pgxpool.Pool, dimension int) *Postgres {
	return &Postgres{pool: pool, dimension: dimension}
}

// Migrate applies migrationDDL. Idempotent; safe to run on every boot.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, migrationDDL); err != nil {
		return fmt.Errorf("%w: migrate: %w", apperr.ErrDatabase, err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", apperr.ErrBackendUnavailable, err)
	}
	return nil
}

// UpsertEntityNode implements MERGE-by-id: on create set name/source/
// source_id/properties/created_at; on match update name/properties/updated_at.
func (p *Postgres) UpsertEntityNode(ctx context.Context, e model.Entity) (string, error) {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return "", fmt.Errorf("%w: marshal properties: %w", apperr.ErrDatabase, err)
	}

	const q = `
		INSERT INTO entities (id, entity_type, source, source_id, name, canonical_id, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (id) DO UPDATE SET
		    name        = EXCLUDED.name,
		    properties  = EXCLUDED.properties,
		    updated_at  = now()`

	_, err = p.pool.Exec(ctx, q, e.ID, string(e.EntityType), string(e.Source), e.SourceID, e.Name, e.CanonicalID, props)
	if err != nil {
		return "", fmt.Errorf("%w: upsert entity: %w", apperr.ErrDatabase, err)
	}
	return e.ID, nil
}

func (p *Postgres) GetEntity(ctx context.Context, id string) (*model.Entity, error) {
	const q = `SELECT id, entity_type, source, source_id, name, canonical_id, properties, created_at, updated_at FROM entities WHERE id = $1`
	row := p.pool.QueryRow(ctx, q, id)

	var e model.Entity
	var entityType, source, propsRaw string
	if err := row.Scan(&e.ID, &entityType, &source, &e.SourceID, &e.Name, &e.CanonicalID, &propsRaw, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entity %q", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get entity: %w", apperr.ErrDatabase, err)
	}
	e.EntityType = model.EntityType(entityType)
	e.Source = model.SourceType(source)
	_ = json.Unmarshal([]byte(propsRaw), &e.Properties)
	return &e, nil
}

// CreateRelationship matches both endpoints by id implicitly via the FK
// constraint; a missing endpoint surfaces as a foreign-key violation, which
// callers (the chunk processor) silently ignore per §4.4/§4.7.
func (p *Postgres) CreateRelationship(ctx context.Context, fromID, toID string, relType model.RelationshipType, confidence float64, props map[string]any) (string, error) {
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("%w: marshal relationship properties: %w", apperr.ErrDatabase, err)
	}
	id := fromID + "|" + toID + "|" + string(relType)

	const q = `
		INSERT INTO relationships (id, from_entity_id, to_entity_id, relationship_type, confidence, properties, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (from_entity_id, to_entity_id, relationship_type) DO UPDATE SET
		    confidence = EXCLUDED.confidence,
		    properties = EXCLUDED.properties`

	if _, err := p.pool.Exec(ctx, q, id, fromID, toID, string(relType), confidence, propsJSON); err != nil {
		return "", fmt.Errorf("%w: create relationship: %w", apperr.ErrDatabase, err)
	}
	return id, nil
}

// GetNeighbors performs a bounded recursive-CTE traversal, grounded on
// knowledge_graph.go's Neighbors query, generalized to direction and an
// optional relationship-type filter, capped at 100 results per §4.3.
func (p *Postgres) GetNeighbors(ctx context.Context, id string, types []model.RelationshipType, direction Direction, hops int) ([]Neighbor, error) {
	joinCond := "rel.from_entity_id = r.id"
	neighborCol := "rel.to_entity_id"
	switch direction {
	case DirectionIncoming:
		joinCond = "rel.to_entity_id = r.id"
		neighborCol = "rel.from_entity_id"
	case DirectionBoth:
		joinCond = "(rel.from_entity_id = r.id OR rel.to_entity_id = r.id)"
		neighborCol = "CASE WHEN rel.from_entity_id = r.id THEN rel.to_entity_id ELSE rel.from_entity_id END"
	}

	args := []any{id, hops}
	typeFilter := ""
	if len(types) > 0 {
		strs := make([]string, len(types))
		for i, t := range types {
			strs[i] = string(t)
		}
		args = append(args, strs)
		typeFilter = fmt.Sprintf(" AND rel.relationship_type = ANY($%d::text[])", len(args))
	}

	q := fmt.Sprintf(`
		WITH RECURSIVE reach AS (
		    SELECT id AS entity_id, ARRAY[id] AS visited, 0 AS depth
		    FROM entities WHERE id = $1
		    UNION ALL
		    SELECT %s AS entity_id, r.visited || %s, r.depth + 1
		    FROM reach r
		    JOIN relationships rel ON %s
		    WHERE r.depth < $2
		      AND NOT (%s = ANY(r.visited))%s
		)
		SELECT DISTINCT ON (e.id) e.id, e.name, rel.relationship_type, rel.confidence
		FROM reach rc
		JOIN entities e ON e.id = rc.entity_id
		JOIN relationships rel ON (rel.from_entity_id = e.id OR rel.to_entity_id = e.id)
		WHERE rc.entity_id != $1
		ORDER BY e.id
		LIMIT 100`, neighborCol, neighborCol, joinCond, neighborCol, typeFilter)

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: get neighbors: %w", apperr.ErrDatabase, err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		var relType string
		if err := rows.Scan(&n.EntityID, &n.Name, &relType, &n.Confidence); err != nil {
			return nil, fmt.Errorf("%w: scan neighbor: %w", apperr.ErrDatabase, err)
		}
		n.RelationshipType = model.RelationshipType(relType)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *Postgres) UpsertChunkNode(ctx context.Context, c model.Chunk) error {
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("%w: marshal chunk metadata: %w", apperr.ErrDatabase, err)
	}

	var vec any
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		vec = &v
	}

	const q = `
		INSERT INTO chunks (id, text, content_hash, source_kind, source_type, source_id, owner_id, file_path, repo_name, heading_path, author, commit_time, metadata, embedding, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14, now(), now())
		ON CONFLICT (id) DO UPDATE SET
		    text = EXCLUDED.text, content_hash = EXCLUDED.content_hash,
		    embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, updated_at = now()`

	_, err = p.pool.Exec(ctx, q, c.ID, c.Text, c.ContentHash, string(c.SourceKind), string(c.SourceType),
		c.SourceID, c.OwnerID, c.FilePath, c.RepoName, c.HeadingPath, c.Author, c.CommitTime, metadata, vec)
	if err != nil {
		return fmt.Errorf("%w: upsert chunk: %w", apperr.ErrDatabase, err)
	}
	return nil
}

// GetChunk loads one chunk row, used by the hybrid query engine to attach
// text/provenance metadata to a bare (id, score) vector hit.
func (p *Postgres) GetChunk(ctx context.Context, id string) (*model.Chunk, error) {
	const q = `
		SELECT id, text, content_hash, source_kind, source_type, source_id, owner_id,
		       file_path, repo_name, heading_path, author, commit_time, metadata, created_at, updated_at
		FROM chunks WHERE id = $1`
	row := p.pool.QueryRow(ctx, q, id)

	var c model.Chunk
	var sourceKind, sourceType, metadataRaw string
	if err := row.Scan(&c.ID, &c.Text, &c.ContentHash, &sourceKind, &sourceType, &c.SourceID, &c.OwnerID,
		&c.FilePath, &c.RepoName, &c.HeadingPath, &c.Author, &c.CommitTime, &metadataRaw, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: chunk %q", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: get chunk: %w", apperr.ErrDatabase, err)
	}
	c.SourceKind = model.SourceKind(sourceKind)
	c.SourceType = model.SourceType(sourceType)
	_ = json.Unmarshal([]byte(metadataRaw), &c.Metadata)
	return &c, nil
}

// CreateVectorIndex records dimension for Statistics and creates an HNSW
// cosine index named name on the table for label (label + "s", lowercased)
// over column property, via CREATE INDEX IF NOT EXISTS ... USING hnsw.
func (p *Postgres) CreateVectorIndex(ctx context.Context, name, label, property string, dimension int) error {
	p.dimension = dimension
	idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (%s vector_cosine_ops)",
		quoteIdent(name), quoteIdent(strings.ToLower(label)+"s"), quoteIdent(property))
	if _, err := p.pool.Exec(ctx, idx); err != nil {
		return fmt.Errorf("%w: create vector index: %w", apperr.ErrDatabase, err)
	}
	return nil
}

func (p *Postgres) SetNodeEmbedding(ctx context.Context, id string, vec []float32, modelName, provider string) error {
	v := pgvector.NewVector(vec)
	const q = `UPDATE entities SET embedding = $2, properties = properties || jsonb_build_object('embedding_model', $3::text, 'embedding_provider', $4::text), updated_at = now() WHERE id = $1`
	if _, err := p.pool.Exec(ctx, q, id, v, modelName, provider); err != nil {
		return fmt.Errorf("%w: set node embedding: %w", apperr.ErrDatabase, err)
	}
	return nil
}

// recordEmbeddingMetadata updates only the embedding_model/provider
// bookkeeping fields on an entity row, leaving its embedding column alone —
// used by QdrantBacked.SetNodeEmbedding, where the vector itself is written
// to a Qdrant collection instead of the Postgres embedding column.
func (p *Postgres) recordEmbeddingMetadata(ctx context.Context, id, modelName, provider string) error {
	const q = `UPDATE entities SET properties = properties || jsonb_build_object('embedding_model', $2::text, 'embedding_provider', $3::text), updated_at = now() WHERE id = $1`
	if _, err := p.pool.Exec(ctx, q, id, modelName, provider); err != nil {
		return fmt.Errorf("%w: record embedding metadata: %w", apperr.ErrDatabase, err)
	}
	return nil
}

// FindSimilarNodes queries one table by cosine distance: the chunks table
// when indexName is exactly "chunk_embedding_idx", the entities table for
// any other index name.
func (p *Postgres) FindSimilarNodes(ctx context.Context, vec []float32, indexName string, k int, minScore float64) ([]ScoredID, error) {
	table := "entities"
	if indexName == "chunk_embedding_idx" {
		table = "chunks"
	}
	q := fmt.Sprintf(`
		SELECT id, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`, table)

	rows, err := p.pool.Query(ctx, q, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, fmt.Errorf("%w: find similar nodes: %w", apperr.ErrDatabase, err)
	}
	defer rows.Close()

	var out []ScoredID
	for rows.Next() {
		var s ScoredID
		if err := rows.Scan(&s.ID, &s.Score); err != nil {
			return nil, fmt.Errorf("%w: scan similar node: %w", apperr.ErrDatabase, err)
		}
		if s.Score >= minScore {
			out = append(out, s)
		}
	}
	return out, rows.Err()
}

// FindSimilarChunksForLinking implements the fused query of §4.3: vector
// search for 2k candidates of the opposite source_kind, filter by
// min_similarity, then apply the server-side mention/author boosts.
func (p *Postgres) FindSimilarChunksForLinking(ctx context.Context, sourceChunkID string, targetKind model.SourceKind, k int, minSimilarity float64) ([]CrossSourceMatch, error) {
	const qSource = `SELECT author, file_path, embedding FROM chunks WHERE id = $1`
	var srcAuthor, srcFilePath string
	var srcVec pgvector.Vector
	if err := p.pool.QueryRow(ctx, qSource, sourceChunkID).Scan(&srcAuthor, &srcFilePath, &srcVec); err != nil {
		return nil, fmt.Errorf("%w: load source chunk: %w", apperr.ErrDatabase, err)
	}

	// §4.3's mention_boost fires when the target's content contains any name
	// in the source's recorded entity-name list; the source chunk's own file
	// base name is added to that list whenever the chunk has a file path.
	mentionNames, err := p.entityNamesForChunk(ctx, sourceChunkID)
	if err != nil {
		return nil, err
	}
	if srcFilePath != "" {
		mentionNames = append(mentionNames, baseName(srcFilePath))
	}

	const qCandidates = `
		SELECT id, text, author, 1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE source_kind = $2 AND id != $3 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $4`

	rows, err := p.pool.Query(ctx, qCandidates, srcVec, string(targetKind), sourceChunkID, 2*k)
	if err != nil {
		return nil, fmt.Errorf("%w: find candidates: %w", apperr.ErrDatabase, err)
	}
	defer rows.Close()

	var matches []CrossSourceMatch
	for rows.Next() {
		var id, text, author string
		var score float64
		if err := rows.Scan(&id, &text, &author, &score); err != nil {
			return nil, fmt.Errorf("%w: scan candidate: %w", apperr.ErrDatabase, err)
		}
		if score < minSimilarity {
			continue
		}
		mentionBoost := 0.0
		if containsAnyName(text, mentionNames) {
			mentionBoost = 0.15
		}
		authorBoost := 0.0
		authorOverlap := srcAuthor != "" && author != "" && srcAuthor == author
		if authorOverlap {
			authorBoost = 0.10
		}
		confidence := clamp1(score + mentionBoost + authorBoost)
		matches = append(matches, CrossSourceMatch{
			ChunkID: id, Score: score, MentionBoost: mentionBoost, AuthorBoost: authorBoost,
			Confidence: confidence, ExplicitMention: mentionBoost > 0, AuthorOverlap: authorOverlap,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortByConfidenceDesc(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// CreateCrossSourceLink MERGEs an edge between two chunks into
// cross_source_links rather than relationships: cross-source edges connect
// chunk nodes, not entity nodes, and relationships.from_entity_id/
// to_entity_id carry a foreign key into entities, which chunks never
// populate. Idempotent on (from_chunk_id, to_chunk_id, relationship_type),
// updating confidence/properties on a repeat link.
func (p *Postgres) CreateCrossSourceLink(ctx context.Context, fromID, toID string, relType model.RelationshipType, confidence, similarity float64, explicitMention, authorOverlap bool) error {
	props, err := json.Marshal(map[string]any{
		"similarity":       similarity,
		"explicit_mention": explicitMention,
		"author_overlap":   authorOverlap,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal cross-source link properties: %w", apperr.ErrDatabase, err)
	}
	id := fromID + "|" + toID + "|" + string(relType)

	const q = `
		INSERT INTO cross_source_links (id, from_chunk_id, to_chunk_id, relationship_type, confidence, properties, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (from_chunk_id, to_chunk_id, relationship_type) DO UPDATE SET
		    confidence = EXCLUDED.confidence,
		    properties = EXCLUDED.properties`

	if _, err := p.pool.Exec(ctx, q, id, fromID, toID, string(relType), confidence, props); err != nil {
		return fmt.Errorf("%w: create cross-source link: %w", apperr.ErrDatabase, err)
	}
	return nil
}

// GetCrossSourceRelationships reads cross_source_links joined back onto
// chunks for a display name, in either direction, per §4.3.
func (p *Postgres) GetCrossSourceRelationships(ctx context.Context, id string) ([]Neighbor, error) {
	const q = `
		SELECT
		    CASE WHEN l.from_chunk_id = $1 THEN l.to_chunk_id ELSE l.from_chunk_id END AS neighbor_id,
		    COALESCE(NULLIF(c.file_path, ''), NULLIF(c.heading_path, ''), c.id) AS name,
		    l.relationship_type, l.confidence
		FROM cross_source_links l
		JOIN chunks c ON c.id = CASE WHEN l.from_chunk_id = $1 THEN l.to_chunk_id ELSE l.from_chunk_id END
		WHERE l.from_chunk_id = $1 OR l.to_chunk_id = $1`

	rows, err := p.pool.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get cross-source relationships: %w", apperr.ErrDatabase, err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		var relType string
		if err := rows.Scan(&n.EntityID, &n.Name, &relType, &n.Confidence); err != nil {
			return nil, fmt.Errorf("%w: scan cross-source relationship: %w", apperr.ErrDatabase, err)
		}
		n.RelationshipType = model.RelationshipType(relType)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *Postgres) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	stats.VectorStore = "postgres+pgvector"
	stats.VectorDimension = p.dimension
	stats.Indexes = []string{"chunk_embedding_idx"}

	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM entities`).Scan(&stats.NodeCount); err != nil {
		return stats, fmt.Errorf("%w: node count: %w", apperr.ErrDatabase, err)
	}
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM relationships`).Scan(&stats.RelationshipCount); err != nil {
		return stats, fmt.Errorf("%w: relationship count: %w", apperr.ErrDatabase, err)
	}
	return stats, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// entityNamesForChunk returns the names of every entity extracted from
// chunkID (i.e. whose properties->>'chunk_id' matches), the set §4.3 calls
// "the source's recorded entity-name list".
func (p *Postgres) entityNamesForChunk(ctx context.Context, chunkID string) ([]string, error) {
	const q = `SELECT name FROM entities WHERE properties->>'chunk_id' = $1`
	rows, err := p.pool.Query(ctx, q, chunkID)
	if err != nil {
		return nil, fmt.Errorf("%w: load entity names for chunk: %w", apperr.ErrDatabase, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan entity name: %w", apperr.ErrDatabase, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func containsAnyName(haystack string, names []string) bool {
	lower := strings.ToLower(haystack)
	for _, name := range names {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func clamp1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func sortByConfidenceDesc(matches []CrossSourceMatch) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].Confidence < matches[j].Confidence; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
}
