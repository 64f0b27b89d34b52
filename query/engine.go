// Package query implements the hybrid query engine (§4.6): vector recall,
// bounded graph expansion, cross-source gathering, and deduplication across
// the three search modes exposed at the HTTP boundary.
package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kogsector/kgfusion/apperr"
	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/model"
)

// Embedder is the narrow capability the engine needs to turn query text into
// a vector; satisfied by *embedclient.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine runs search plans against a Store and an Embedder.
type Engine struct {
	store                graphstore.Store
	embedder             Embedder
	defaultMinSimilarity float64
}

// New builds an Engine. defaultMinSimilarity backs requests that omit
// min_similarity (the configured similarity_threshold).
func New(store graphstore.Store, embedder Embedder, defaultMinSimilarity float64) *Engine {
	return &Engine{store: store, embedder: embedder, defaultMinSimilarity: defaultMinSimilarity}
}

// Metadata reports what a plan actually did, per §4.6 step 6.
type Metadata struct {
	Query                string `json:"query"`
	HitCount             int    `json:"hit_count"`
	RelatedEntityCount   int    `json:"related_entity_count"`
	CrossSourceLinkCount int    `json:"cross_source_link_count"`
	GraphHopsPerformed   int    `json:"graph_hops_performed"`
	ExecutionTimeMS      int64  `json:"execution_time_ms"`
}

// Result is the assembled response shared by all three search modes.
type Result struct {
	Hits             []model.ChunkHit      `json:"hits"`
	RelatedEntities  []graphstore.Neighbor `json:"related_entities,omitempty"`
	CrossSourceLinks []graphstore.Neighbor `json:"cross_source_links,omitempty"`
	Metadata         Metadata              `json:"metadata"`
}

// Hybrid runs the full plan from §4.6: embed, vector recall, graph
// expansion per hit, optional cross-source gathering, dedup, assemble.
//
// Graph expansion and cross-source gathering key off each hit's chunk id
// directly, per the Store contract's uniform id parameter; a hit whose
// chunk never became (or is not shared with) an entity node simply yields
// no neighbors for that hit, which is not an error.
func (e *Engine) Hybrid(ctx context.Context, req model.SearchRequest) (Result, error) {
	started := time.Now()

	hits, err := e.vectorRecall(ctx, req)
	if err != nil {
		return Result{}, err
	}

	hops := req.GraphHopsOrDefault()
	var related []graphstore.Neighbor
	type crossLink struct {
		fromID string
		n      graphstore.Neighbor
	}
	var crossLinks []crossLink

	for _, h := range hits {
		neighbors, err := e.store.GetNeighbors(ctx, h.ChunkID, nil, graphstore.DirectionBoth, hops)
		if err == nil {
			related = append(related, neighbors...)
		}

		if req.IncludeCrossSource {
			links, err := e.store.GetCrossSourceRelationships(ctx, h.ChunkID)
			if err == nil {
				for _, n := range links {
					crossLinks = append(crossLinks, crossLink{fromID: h.ChunkID, n: n})
				}
			}
		}
	}

	related = dedupNeighborsByID(related)

	var crossOut []graphstore.Neighbor
	seen := map[string]bool{}
	for _, c := range crossLinks {
		key := c.fromID + "|" + c.n.EntityID + "|" + string(c.n.RelationshipType)
		if seen[key] {
			continue
		}
		seen[key] = true
		crossOut = append(crossOut, c.n)
	}

	return Result{
		Hits:             hits,
		RelatedEntities:  related,
		CrossSourceLinks: crossOut,
		Metadata: Metadata{
			Query:                req.Query,
			HitCount:             len(hits),
			RelatedEntityCount:   len(related),
			CrossSourceLinkCount: len(crossOut),
			GraphHopsPerformed:   hops,
			ExecutionTimeMS:      time.Since(started).Milliseconds(),
		},
	}, nil
}

// VectorOnly runs just the vector-recall stage of the hybrid plan.
func (e *Engine) VectorOnly(ctx context.Context, req model.SearchRequest) (Result, error) {
	started := time.Now()
	hits, err := e.vectorRecall(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Hits: hits,
		Metadata: Metadata{
			Query:           req.Query,
			HitCount:        len(hits),
			ExecutionTimeMS: time.Since(started).Milliseconds(),
		},
	}, nil
}

// GraphOnly expands from the request's StartIDs per §4.6's graph-only mode:
// get_neighbors per start id, dedup, truncate to limit.
func (e *Engine) GraphOnly(ctx context.Context, req model.SearchRequest) (Result, error) {
	started := time.Now()
	direction := parseDirection(req.Direction)
	hops := req.GraphHopsOrDefault()

	var all []graphstore.Neighbor
	for _, id := range req.StartIDs {
		neighbors, err := e.store.GetNeighbors(ctx, id, req.RelationshipTypes, direction, hops)
		if err != nil {
			return Result{}, fmt.Errorf("%w: graph expansion for %q: %w", apperr.ErrBackendUnavailable, id, err)
		}
		all = append(all, neighbors...)
	}

	all = dedupNeighborsByID(all)
	limit := req.LimitOrDefault()
	if len(all) > limit {
		all = all[:limit]
	}

	return Result{
		RelatedEntities: all,
		Metadata: Metadata{
			Query:              req.Query,
			RelatedEntityCount: len(all),
			GraphHopsPerformed: hops,
			ExecutionTimeMS:    time.Since(started).Milliseconds(),
		},
	}, nil
}

// vectorRecall embeds the query, calls find_similar_nodes against the chunk
// embedding index, hydrates each hit with its chunk record, and applies the
// request's client-side filters (source_kind, source_types, repo_filter,
// owner_id) which the Store contract has no dedicated parameters for.
func (e *Engine) vectorRecall(ctx context.Context, req model.SearchRequest) ([]model.ChunkHit, error) {
	vec, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", apperr.ErrEmbedding, err)
	}

	minSimilarity := req.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = e.defaultMinSimilarity
	}

	scored, err := e.store.FindSimilarNodes(ctx, vec, graphstore.ChunkEmbeddingIndex, req.LimitOrDefault(), minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("%w: vector recall: %w", apperr.ErrBackendUnavailable, err)
	}

	wantedTypes := map[model.SourceType]bool{}
	for _, t := range req.SourceTypes {
		wantedTypes[t] = true
	}

	hits := make([]model.ChunkHit, 0, len(scored))
	for _, s := range scored {
		c, err := e.store.GetChunk(ctx, s.ID)
		if err != nil {
			continue
		}
		if req.SourceKind != "" && req.SourceKind != "all" && string(c.SourceKind) != req.SourceKind {
			continue
		}
		if len(wantedTypes) > 0 && !wantedTypes[c.SourceType] {
			continue
		}
		if req.RepoFilter != "" && c.RepoName != req.RepoFilter {
			continue
		}
		if req.OwnerID != "" && c.OwnerID != req.OwnerID {
			continue
		}
		hits = append(hits, model.ChunkHit{
			ChunkID:     c.ID,
			Score:       s.Score,
			SourceKind:  c.SourceKind,
			SourceType:  c.SourceType,
			FilePath:    c.FilePath,
			HeadingPath: c.HeadingPath,
			RepoName:    c.RepoName,
			Text:        c.Text,
		})
	}
	return hits, nil
}

func dedupNeighborsByID(in []graphstore.Neighbor) []graphstore.Neighbor {
	sorted := make([]graphstore.Neighbor, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EntityID < sorted[j].EntityID })

	out := make([]graphstore.Neighbor, 0, len(sorted))
	seen := map[string]bool{}
	for _, n := range sorted {
		if seen[n.EntityID] {
			continue
		}
		seen[n.EntityID] = true
		out = append(out, n)
	}
	return out
}

func parseDirection(s string) graphstore.Direction {
	switch s {
	case string(graphstore.DirectionOutgoing):
		return graphstore.DirectionOutgoing
	case string(graphstore.DirectionIncoming):
		return graphstore.DirectionIncoming
	default:
		return graphstore.DirectionBoth
	}
}
