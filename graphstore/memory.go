package graphstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/kogsector/kgfusion/apperr"
	"github.com/kogsector/kgfusion/model"
)

// Memory is an in-process implementation of the Store contract, used by unit
// tests that want a real Store without a database. The kgfusion binary
// always builds a Postgres-backed store and does not fall back to Memory
// when that backend is unavailable. It holds all state in a
// single mutex-guarded instance; no cross-request global state lives
// anywhere outside this struct, matching the service-layer "no mutex"
// design note other than exactly this fallback path.
type Memory struct {
	mu            sync.RWMutex
	entities      map[string]model.Entity
	relationships map[string]model.Relationship
	chunks        map[string]model.Chunk
	crossLinks    map[string]model.Relationship
	dimension     int
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entities:      make(map[string]model.Entity),
		relationships: make(map[string]model.Relationship),
		chunks:        make(map[string]model.Chunk),
		crossLinks:    make(map[string]model.Relationship),
	}
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) UpsertEntityNode(ctx context.Context, e model.Entity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entities[e.ID]; ok {
		existing.Name = e.Name
		existing.Properties = e.Properties
		existing.UpdatedAt = now()
		m.entities[e.ID] = existing
		return e.ID, nil
	}
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	m.entities[e.ID] = e
	return e.ID, nil
}

func (m *Memory) GetEntity(ctx context.Context, id string) (*model.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: entity %q", apperr.ErrNotFound, id)
	}
	return &e, nil
}

func (m *Memory) CreateRelationship(ctx context.Context, fromID, toID string, relType model.RelationshipType, confidence float64, props map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[fromID]; !ok {
		return "", fmt.Errorf("%w: from entity %q", apperr.ErrNotFound, fromID)
	}
	if _, ok := m.entities[toID]; !ok {
		return "", fmt.Errorf("%w: to entity %q", apperr.ErrNotFound, toID)
	}
	id := fromID + "|" + toID + "|" + string(relType)
	m.relationships[id] = model.Relationship{
		ID: id, FromEntityID: fromID, ToEntityID: toID,
		RelationshipType: relType, Confidence: confidence, Properties: props, CreatedAt: now(),
	}
	return id, nil
}

func (m *Memory) GetNeighbors(ctx context.Context, id string, types []model.RelationshipType, direction Direction, hops int) ([]Neighbor, error) {
	if hops <= 0 {
		hops = 1
	}
	wanted := map[model.RelationshipType]bool{}
	for _, t := range types {
		wanted[t] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	frontier := map[string]bool{id: true}
	visited := map[string]bool{id: true}
	seen := map[string]Neighbor{}

	for hop := 0; hop < hops; hop++ {
		next := map[string]bool{}
		for _, rel := range m.relationships {
			if len(wanted) > 0 && !wanted[rel.RelationshipType] {
				continue
			}
			var from, to string
			switch direction {
			case DirectionIncoming:
				from, to = rel.ToEntityID, rel.FromEntityID
			case DirectionBoth:
				if frontier[rel.FromEntityID] && !visited[rel.ToEntityID] {
					addNeighbor(seen, m.entities, rel.ToEntityID, rel)
					next[rel.ToEntityID] = true
				}
				if frontier[rel.ToEntityID] && !visited[rel.FromEntityID] {
					addNeighbor(seen, m.entities, rel.FromEntityID, rel)
					next[rel.FromEntityID] = true
				}
				continue
			default:
				from, to = rel.FromEntityID, rel.ToEntityID
			}
			if frontier[from] && !visited[to] {
				addNeighbor(seen, m.entities, to, rel)
				next[to] = true
			}
		}
		for id := range next {
			visited[id] = true
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	out := make([]Neighbor, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	if len(out) > 100 {
		out = out[:100]
	}
	return out, nil
}

func addNeighbor(seen map[string]Neighbor, entities map[string]model.Entity, id string, rel model.Relationship) {
	if _, ok := seen[id]; ok {
		return
	}
	e := entities[id]
	seen[id] = Neighbor{EntityID: id, Name: e.Name, RelationshipType: rel.RelationshipType, Confidence: rel.Confidence}
}

func (m *Memory) UpsertChunkNode(ctx context.Context, c model.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[c.ID] = c
	return nil
}

func (m *Memory) Chunk(id string) (model.Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[id]
	return c, ok
}

func (m *Memory) GetChunk(ctx context.Context, id string) (*model.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[id]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %q", apperr.ErrNotFound, id)
	}
	return &c, nil
}

func (m *Memory) CreateVectorIndex(ctx context.Context, name, label, property string, dimension int) error {
	m.mu.Lock()
	m.dimension = dimension
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetNodeEmbedding(ctx context.Context, id string, vec []float32, modelName, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok {
		return fmt.Errorf("%w: entity %q", apperr.ErrNotFound, id)
	}
	e.Embedding = vec
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}
	e.Properties["embedding_model"] = modelName
	e.Properties["embedding_provider"] = provider
	m.entities[id] = e
	return nil
}

func (m *Memory) FindSimilarNodes(ctx context.Context, vec []float32, indexName string, k int, minScore float64) ([]ScoredID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var scored []ScoredID
	if indexName == "chunk_embedding_idx" {
		for id, c := range m.chunks {
			if len(c.Embedding) == 0 {
				continue
			}
			s := CosineSimilarity(vec, c.Embedding)
			if s >= minScore {
				scored = append(scored, ScoredID{ID: id, Score: s})
			}
		}
	} else {
		for id, e := range m.entities {
			if len(e.Embedding) == 0 {
				continue
			}
			s := CosineSimilarity(vec, e.Embedding)
			if s >= minScore {
				scored = append(scored, ScoredID{ID: id, Score: s})
			}
		}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *Memory) FindSimilarChunksForLinking(ctx context.Context, sourceChunkID string, targetKind model.SourceKind, k int, minSimilarity float64) ([]CrossSourceMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.chunks[sourceChunkID]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %q", apperr.ErrNotFound, sourceChunkID)
	}

	var matches []CrossSourceMatch
	for id, c := range m.chunks {
		if id == sourceChunkID || c.SourceKind != targetKind || len(c.Embedding) == 0 {
			continue
		}
		score := CosineSimilarity(src.Embedding, c.Embedding)
		if score < minSimilarity {
			continue
		}
		mentionBoost := 0.0
		if src.FilePath != "" && contains(c.Text, baseName(src.FilePath)) {
			mentionBoost = 0.15
		}
		authorOverlap := src.Author != "" && c.Author != "" && src.Author == c.Author
		authorBoost := 0.0
		if authorOverlap {
			authorBoost = 0.10
		}
		matches = append(matches, CrossSourceMatch{
			ChunkID: id, Score: score, MentionBoost: mentionBoost, AuthorBoost: authorBoost,
			Confidence: clampTo1(score + mentionBoost + authorBoost),
			ExplicitMention: mentionBoost > 0, AuthorOverlap: authorOverlap,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Confidence > matches[j].Confidence })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// CreateCrossSourceLink writes directly into crossLinks, keyed on the two
// chunk IDs. Unlike CreateRelationship, it does not require either side to
// exist in m.entities: the endpoints here are chunk IDs, and chunks live in
// m.chunks, a disjoint map. Mirrors the Postgres backend's dedicated
// cross_source_links table, which likewise avoids the entities FK.
func (m *Memory) CreateCrossSourceLink(ctx context.Context, fromID, toID string, relType model.RelationshipType, confidence, similarity float64, explicitMention, authorOverlap bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fromID + "|" + toID + "|" + string(relType)
	m.crossLinks[id] = model.Relationship{
		ID:               id,
		FromEntityID:     fromID,
		ToEntityID:       toID,
		RelationshipType: relType,
		Confidence:       confidence,
		Properties: map[string]any{
			"similarity": similarity, "explicit_mention": explicitMention, "author_overlap": authorOverlap,
		},
		CreatedAt: now(),
	}
	return nil
}

// GetCrossSourceRelationships returns every crossLinks edge touching id in
// either direction, resolving the neighbor's display name from m.chunks
// (falling back to m.entities for pre-existing entity-keyed callers).
func (m *Memory) GetCrossSourceRelationships(ctx context.Context, id string) ([]Neighbor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Neighbor
	for _, rel := range m.crossLinks {
		var neighborID string
		switch {
		case rel.FromEntityID == id:
			neighborID = rel.ToEntityID
		case rel.ToEntityID == id:
			neighborID = rel.FromEntityID
		default:
			continue
		}
		out = append(out, Neighbor{
			EntityID:         neighborID,
			Name:             m.chunkLabel(neighborID),
			RelationshipType: rel.RelationshipType,
			Confidence:       rel.Confidence,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

// chunkLabel resolves a human-readable name for id, preferring the chunk's
// file path or heading path and falling back to an entity name, then the
// raw id if neither map has it.
func (m *Memory) chunkLabel(id string) string {
	if c, ok := m.chunks[id]; ok {
		if c.FilePath != "" {
			return c.FilePath
		}
		if c.HeadingPath != "" {
			return c.HeadingPath
		}
	}
	if e, ok := m.entities[id]; ok {
		return e.Name
	}
	return id
}

func (m *Memory) Statistics(ctx context.Context) (Statistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Statistics{
		NodeCount:         int64(len(m.entities)),
		RelationshipCount: int64(len(m.relationships)),
		VectorStore:       "in-memory",
		VectorDimension:   m.dimension,
		Indexes:           []string{"chunk_embedding_idx"},
	}, nil
}

// CosineSimilarity is dot/(‖a‖·‖b‖); zero if either vector is zero-length or
// empty, matching the original's cosine_similarity semantics exactly.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clampTo1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func contains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
