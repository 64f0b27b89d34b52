package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash("pub fn calculate_sum() {}")
	b := ContentHash("pub fn calculate_sum() {}")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32) // MD5 hex digest
}

func TestContentHash_DiffersOnContent(t *testing.T) {
	a := ContentHash("one")
	b := ContentHash("two")
	assert.NotEqual(t, a, b)
}

func TestIntoChunk_MintsIDAndHash(t *testing.T) {
	in := ChunkInput{
		Text:       "# Heading\nbody",
		SourceKind: SourceKindDocument,
		SourceType: SourceTypeWiki,
		SourceID:   "wiki/page-1",
		OwnerID:    "owner-1",
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	chunk := in.IntoChunk(now)

	assert.NotEmpty(t, chunk.ID)
	assert.Equal(t, ContentHash(in.Text), chunk.ContentHash)
	assert.Equal(t, in.SourceKind, chunk.SourceKind)
	assert.Equal(t, now, chunk.CreatedAt)
	assert.Equal(t, now, chunk.UpdatedAt)
}

func TestIngestChunksRequest_Defaults(t *testing.T) {
	req := IngestChunksRequest{}
	assert.True(t, req.ExtractEntitiesOrDefault())
	assert.True(t, req.CreateCrossLinksOrDefault())

	disabled := false
	req2 := IngestChunksRequest{ExtractEntities: &disabled, CreateCrossLinks: &disabled}
	assert.False(t, req2.ExtractEntitiesOrDefault())
	assert.False(t, req2.CreateCrossLinksOrDefault())
}
