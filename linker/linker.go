// Package linker implements the cross-source linker (§4.5): the scoring
// model that fuses vector similarity with explicit-mention, temporal, and
// author-overlap boosters to produce cross-source edges with evidence.
package linker

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/model"
)

// Config carries the scoring parameters named in §4.5, never hardcoded.
type Config struct {
	SimilarityThreshold     float64
	MaxCrossLinksPerChunk   int
	TemporalProximityDays   int
	EnableTemporalProximity bool
	EnableExplicitMentions  bool
	EnableAuthorOverlap     bool
}

// DefaultConfig returns §4.5/§6's defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:     0.75,
		MaxCrossLinksPerChunk:   5,
		TemporalProximityDays:   7,
		EnableTemporalProximity: true,
		EnableExplicitMentions:  true,
		EnableAuthorOverlap:     true,
	}
}

var callKeywordStopWords = map[string]bool{
	"function": true, "class": true, "return": true, "import": true,
	"const": true, "let": true, "var": true, "pub": true, "fn": true,
	"struct": true, "impl": true,
}

var codeIdentPattern = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]{3,}\b`)

// Linker scores and persists cross-source links. When store is nil, scoring
// falls back to in-process cosine similarity (linkInMemory) per §4.5's
// fallback clause.
type Linker struct {
	store graphstore.Store
	cfg   Config
}

// New builds a Linker against store (which may be a *graphstore.Memory, a
// *graphstore.Postgres, or nil for the pure in-memory fallback path).
func New(store graphstore.Store, cfg Config) *Linker {
	return &Linker{store: store, cfg: cfg}
}

// LinkBidirectional links docs->code and code->docs, summing links_created,
// per §4.4 step 5.
func (l *Linker) LinkBidirectional(ctx context.Context, codeChunks, docChunks []model.Chunk) (int, error) {
	total := 0
	for _, c := range codeChunks {
		n, err := l.linkChunk(ctx, c, model.SourceKindDocument, docChunks)
		if err != nil {
			return total, err
		}
		total += n
	}
	for _, d := range docChunks {
		n, err := l.linkChunk(ctx, d, model.SourceKindCode, codeChunks)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// linkChunk links one source chunk against the opposite-kind candidate
// pool, either via the graph adapter's fused query or, absent a store, via
// in-memory cosine similarity over the supplied candidates.
func (l *Linker) linkChunk(ctx context.Context, source model.Chunk, targetKind model.SourceKind, candidates []model.Chunk) (int, error) {
	if l.store == nil {
		return l.linkInMemory(source, candidates)
	}

	matches, err := l.store.FindSimilarChunksForLinking(ctx, source.ID, targetKind, l.cfg.MaxCrossLinksPerChunk, l.cfg.SimilarityThreshold)
	if err != nil {
		return 0, fmt.Errorf("find similar chunks for linking: %w", err)
	}

	byID := make(map[string]model.Chunk, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	created := 0
	for _, match := range matches {
		target, ok := byID[match.ChunkID]
		if !ok {
			continue
		}
		confidence, method, explicitMention, relType := l.applyClientBoosters(source, target, match.Confidence, match.ExplicitMention, match.AuthorOverlap)
		if confidence < l.cfg.SimilarityThreshold && match.Score < l.cfg.SimilarityThreshold {
			continue
		}
		_ = method // evidence method retained for future audit-log wiring
		if err := l.store.CreateCrossSourceLink(ctx, source.ID, target.ID, relType, confidence, match.Score, explicitMention, match.AuthorOverlap); err != nil {
			continue
		}
		created++
	}
	return created, nil
}

// applyClientBoosters layers the client-side boosters (§4.5 step 2) on top
// of the server-computed base score + server boosts, then selects a
// relationship type (step 4). Returns the final clamped confidence, the
// evidence extraction method, whether explicit mention fired, and the
// chosen relationship type.
func (l *Linker) applyClientBoosters(source, target model.Chunk, serverConfidence float64, serverMention, serverAuthor bool) (float64, model.ExtractionMethod, bool, model.RelationshipType) {
	confidence := serverConfidence
	boostersFired := 0
	if serverMention {
		boostersFired++
	}
	if serverAuthor {
		boostersFired++
	}

	codeChunk, docChunk := source, target
	if source.SourceKind == model.SourceKindDocument {
		codeChunk, docChunk = target, source
	}

	explicitMention := serverMention
	if l.cfg.EnableExplicitMentions && !explicitMention {
		if detectExplicitMention(codeChunk, docChunk) {
			explicitMention = true
			confidence = clamp1(confidence + 0.15)
			boostersFired++
		}
	}

	if l.cfg.EnableTemporalProximity && codeChunk.CommitTime != nil {
		days := math.Abs(docChunk.UpdatedAt.Sub(*codeChunk.CommitTime).Hours() / 24)
		window := float64(l.cfg.TemporalProximityDays)
		if days <= window {
			boost := 0.10 * (1 - days/window)
			confidence = clamp1(confidence + boost)
			boostersFired++
		}
	}

	method := model.MethodVectorSimilarity
	if boostersFired > 1 {
		method = model.MethodCombined
	} else if explicitMention {
		method = model.MethodExplicitMention
	} else if serverAuthor {
		method = model.MethodAuthorOverlap
	}

	return confidence, method, explicitMention, selectRelationshipType(docChunk)
}

// linkInMemory is the fallback path of §4.5's last paragraph: run scoring
// entirely in memory using cosine similarity between supplied embeddings,
// used when no graph adapter is available.
func (l *Linker) linkInMemory(source model.Chunk, candidates []model.Chunk) (int, error) {
	type scored struct {
		target     model.Chunk
		confidence float64
		similarity float64
		mention    bool
		author     bool
	}
	var results []scored

	for _, target := range candidates {
		similarity := graphstore.CosineSimilarity(source.Embedding, target.Embedding)
		if similarity < l.cfg.SimilarityThreshold {
			continue
		}

		codeChunk, docChunk := source, target
		if source.SourceKind == model.SourceKindDocument {
			codeChunk, docChunk = target, source
		}

		confidence := similarity
		mention := false
		if l.cfg.EnableExplicitMentions && detectExplicitMention(codeChunk, docChunk) {
			mention = true
			confidence = clamp1(confidence + 0.15)
		}

		author := false
		if l.cfg.EnableAuthorOverlap && codeChunk.Author != "" && docChunk.Author != "" && codeChunk.Author == docChunk.Author {
			author = true
			confidence = clamp1(confidence + 0.10)
		}

		if l.cfg.EnableTemporalProximity && codeChunk.CommitTime != nil {
			days := math.Abs(docChunk.UpdatedAt.Sub(*codeChunk.CommitTime).Hours() / 24)
			window := float64(l.cfg.TemporalProximityDays)
			if days <= window {
				confidence = clamp1(confidence + 0.10*(1-days/window))
			}
		}

		results = append(results, scored{target: target, confidence: confidence, similarity: similarity, mention: mention, author: author})
	}

	sortByConfidenceDesc(results)
	if len(results) > l.cfg.MaxCrossLinksPerChunk {
		results = results[:l.cfg.MaxCrossLinksPerChunk]
	}

	for _, r := range results {
		_ = selectRelationshipType(r.target)
	}
	return len(results), nil
}

// detectExplicitMention scans the document text for the code chunk's file
// base name (lowercase containment) or for any identifier >= 4 chars
// extracted from the code content (excluding the keyword stop-list) wrapped
// in backticks in the document.
func detectExplicitMention(codeChunk, docChunk model.Chunk) bool {
	docLower := strings.ToLower(docChunk.Text)
	if codeChunk.FilePath != "" {
		base := baseName(codeChunk.FilePath)
		if base != "" && strings.Contains(docLower, strings.ToLower(base)) {
			return true
		}
	}
	for _, ident := range codeIdentPattern.FindAllString(codeChunk.Text, -1) {
		if len(ident) < 4 || callKeywordStopWords[strings.ToLower(ident)] {
			continue
		}
		if strings.Contains(docChunk.Text, "`"+ident+"`") || strings.Contains(docChunk.Text, "`"+ident+"()`") {
			return true
		}
	}
	return false
}

// selectRelationshipType implements §4.5 step 4's priority chain.
func selectRelationshipType(docChunk model.Chunk) model.RelationshipType {
	text := strings.ToLower(docChunk.Text)
	switch {
	case strings.Contains(text, "how to"), strings.Contains(text, "example"), strings.Contains(text, "usage"):
		return model.RelExplains
	case strings.Contains(text, "endpoint"), strings.Contains(text, "request"), strings.Contains(text, "response"):
		return model.RelDocuments
	case strings.Contains(strings.ToLower(docChunk.FilePath), "readme"):
		return model.RelDocuments
	default:
		return model.RelSemanticallySimilar
	}
}

func clamp1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func sortByConfidenceDesc(results []struct {
	target     model.Chunk
	confidence float64
	similarity float64
	mention    bool
	author     bool
}) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j-1].confidence < results[j].confidence; j-- {
			results[j-1], results[j] = results[j], results[j-1]
		}
	}
}
