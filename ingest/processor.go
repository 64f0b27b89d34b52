// Package ingest implements the chunk processor (§4.4): the per-batch
// orchestration of embed -> upsert -> extract -> link. It never aborts a
// batch for a single-chunk error; its response is a report, not a
// transaction.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kogsector/kgfusion/eventbus"
	"github.com/kogsector/kgfusion/extract/code"
	"github.com/kogsector/kgfusion/extract/doc"
	"github.com/kogsector/kgfusion/graphstore"
	"github.com/kogsector/kgfusion/linker"
	"github.com/kogsector/kgfusion/model"
)

// Embedder is the narrow capability the processor needs from the embedding
// client (§2's component table "Embedding client").
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Processor orchestrates one ingest batch against a Store and an Embedder.
type Processor struct {
	store    graphstore.Store
	embedder Embedder
	linker   *linker.Linker
	bus      *eventbus.Bus // optional; nil means no event publishing
	logger   *slog.Logger
}

// New builds a Processor. bus may be nil (graceful degradation, matching the
// teacher's nil-NATS-client convention).
func New(store graphstore.Store, embedder Embedder, l *linker.Linker, bus *eventbus.Bus, logger *slog.Logger) *Processor {
	return &Processor{store: store, embedder: embedder, linker: l, bus: bus, logger: logger}
}

// IngestChunks runs the full per-batch flow described in §4.4.
func (p *Processor) IngestChunks(ctx context.Context, req model.IngestChunksRequest) model.IngestChunksResponse {
	var resp model.IngestChunksResponse
	now := time.Now().UTC()

	chunks := make([]model.Chunk, 0, len(req.Chunks))
	for _, in := range req.Chunks {
		chunks = append(chunks, in.IntoChunk(now))
	}

	// Step 2: resolve embeddings, batching whatever wasn't caller-supplied.
	var pendingIdx []int
	var pendingTexts []string
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			pendingIdx = append(pendingIdx, i)
			pendingTexts = append(pendingTexts, c.Text)
		}
	}
	if len(pendingTexts) > 0 {
		vectors, err := p.embedder.EmbedBatch(ctx, pendingTexts)
		if err != nil || len(vectors) != len(pendingTexts) {
			// Batch call failed outright: fall back to per-chunk Embed so a
			// single malformed chunk doesn't force every chunk to fail.
			for j, idx := range pendingIdx {
				vec, err := p.embedder.Embed(ctx, pendingTexts[j])
				if err != nil {
					resp.Errors = append(resp.Errors, fmt.Sprintf("chunk %s: embed failed: %v", chunks[idx].ID, err))
					continue
				}
				chunks[idx].Embedding = vec
			}
		} else {
			for j, idx := range pendingIdx {
				chunks[idx].Embedding = vectors[j]
			}
		}
	}

	// Step 3: upsert chunk nodes, skipping any chunk that still has no
	// embedding (it failed in the step above and was already recorded).
	var ingested []model.Chunk
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if err := p.store.UpsertChunkNode(ctx, c); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("chunk %s: upsert failed: %v", c.ID, err))
			continue
		}
		resp.ChunksIngested++
		resp.VectorsStored++
		ingested = append(ingested, c)
		p.publishChunk(ctx, c)
	}

	// Step 4: extraction, gated by extract_entities (default true).
	if req.ExtractEntitiesOrDefault() {
		for _, c := range ingested {
			p.extractAndWrite(ctx, c, &resp)
		}
	}

	// Step 5: cross-source linking, gated by create_cross_links and the
	// presence of both kinds in this batch.
	if req.CreateCrossLinksOrDefault() && p.linker != nil {
		var codeChunks, docChunks []model.Chunk
		for _, c := range ingested {
			if c.SourceKind == model.SourceKindCode {
				codeChunks = append(codeChunks, c)
			} else {
				docChunks = append(docChunks, c)
			}
		}
		if len(codeChunks) > 0 && len(docChunks) > 0 {
			created, err := p.linker.LinkBidirectional(ctx, codeChunks, docChunks)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("cross-source linking: %v", err))
			}
			resp.LinksCreated += created
		}
	}

	return resp
}

// extractAndWrite runs the appropriate extractor for c's source kind,
// upserts every produced entity, and attempts every produced relationship.
// Relationship failures are silently ignored (the named endpoints may not
// yet exist) per §4.7; entity failures are recorded.
func (p *Processor) extractAndWrite(ctx context.Context, c model.Chunk, resp *model.IngestChunksResponse) {
	var result model.ExtractionResult
	if c.SourceKind == model.SourceKindCode {
		result = code.Extract(c.Text, c.Language)
	} else {
		result = doc.Extract(c.Text)
	}

	entityIDs := make(map[string]string, len(result.Entities))
	for _, ne := range result.Entities {
		id := uuid.NewString()
		e := model.Entity{
			ID:         id,
			EntityType: ne.EntityType,
			Source:     c.SourceType,
			SourceID:   c.SourceID,
			Name:       ne.Name,
			Properties: map[string]any{
				"chunk_id":   c.ID,
				"confidence": ne.Confidence,
			},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if c.SourceKind == model.SourceKindCode {
			e.Properties["file_path"] = c.FilePath
		} else {
			e.Properties["heading_path"] = c.HeadingPath
		}
		if _, err := p.store.UpsertEntityNode(ctx, e); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("entity %q: %v", ne.Name, err))
			continue
		}
		entityIDs[ne.Name] = id
		resp.EntitiesExtracted++
		p.publishEntity(ctx, e)
	}

	for _, nr := range result.Relationships {
		fromID, fromOK := entityIDs[nr.FromName]
		toID, toOK := entityIDs[nr.ToName]
		if !fromOK || !toOK {
			// Silently skip: the named endpoint may not exist in this
			// batch (it could live in an earlier or later chunk).
			continue
		}
		if _, err := p.store.CreateRelationship(ctx, fromID, toID, nr.RelationshipType, nr.Confidence, nil); err != nil {
			// Silently skip per §4.4/§9: relationship failures are
			// expected and must not be surfaced as errors.
			continue
		}
		resp.RelationshipsCreated++
	}
}

func (p *Processor) publishChunk(ctx context.Context, c model.Chunk) {
	if p.bus == nil {
		return
	}
	if err := p.bus.PublishChunkIngested(ctx, c); err != nil {
		p.logger.Warn("publish chunk ingested event failed", "chunk_id", c.ID, "error", err)
	}
}

func (p *Processor) publishEntity(ctx context.Context, e model.Entity) {
	if p.bus == nil {
		return
	}
	if err := p.bus.PublishEntityUpserted(ctx, e); err != nil {
		p.logger.Warn("publish entity upserted event failed", "entity_id", e.ID, "error", err)
	}
}
