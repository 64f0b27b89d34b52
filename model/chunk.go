package model

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Chunk is the atomic unit of ingestion: a fragment of code or prose with
// provenance metadata. Chunks are never mutated after write; re-ingesting
// the same SourceID upserts a new revision under a new ID.
type Chunk struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	ContentHash  string            `json:"content_hash"`
	SourceKind   SourceKind        `json:"source_kind"`
	SourceType   SourceType        `json:"source_type"`
	SourceID     string            `json:"source_id"`
	OwnerID      string            `json:"owner_id"`
	FilePath     string            `json:"file_path,omitempty"`
	RepoName     string            `json:"repo_name,omitempty"`
	Branch       string            `json:"branch,omitempty"`
	Language     string            `json:"language,omitempty"`
	HeadingPath  string            `json:"heading_path,omitempty"`
	SectionTitle string            `json:"section_title,omitempty"`
	Author       string            `json:"author,omitempty"`
	CommitSHA    string            `json:"commit_sha,omitempty"`
	CommitTime   *time.Time        `json:"commit_time,omitempty"`
	LineStart    int               `json:"line_start,omitempty"`
	LineEnd      int               `json:"line_end,omitempty"`
	TokenCount   int               `json:"token_count,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Embedding    []float32         `json:"embedding,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ChunkInput is the wire shape accepted by the ingest API: everything Chunk
// has except the fields the processor itself computes (ID, ContentHash,
// timestamps).
type ChunkInput struct {
	Text         string            `json:"text"`
	SourceKind   SourceKind        `json:"source_kind"`
	SourceType   SourceType        `json:"source_type"`
	SourceID     string            `json:"source_id"`
	OwnerID      string            `json:"owner_id"`
	FilePath     string            `json:"file_path,omitempty"`
	RepoName     string            `json:"repo_name,omitempty"`
	Branch       string            `json:"branch,omitempty"`
	Language     string            `json:"language,omitempty"`
	HeadingPath  string            `json:"heading_path,omitempty"`
	SectionTitle string            `json:"section_title,omitempty"`
	Author       string            `json:"author,omitempty"`
	CommitSHA    string            `json:"commit_sha,omitempty"`
	CommitTime   *time.Time        `json:"commit_time,omitempty"`
	LineStart    int               `json:"line_start,omitempty"`
	LineEnd      int               `json:"line_end,omitempty"`
	TokenCount   int               `json:"token_count,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	// Embedding, when present, is used as-is instead of calling the
	// embedding service (see chunk processor step 2).
	Embedding []float32 `json:"embedding,omitempty"`
}

// ContentHash returns the MD5 hex digest of text, matching the original
// implementation's content-hash algorithm for chunks specifically (other
// hashing contexts in this codebase use SHA-256; chunk content hashing is
// pinned to MD5 because it is part of the persisted, re-ingest-comparable
// contract in the data model).
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IntoChunk materializes a ChunkInput into a full Chunk, minting an ID and
// computing the content hash deterministically.
func (in ChunkInput) IntoChunk(now time.Time) Chunk {
	return Chunk{
		ID:           uuid.NewString(),
		Text:         in.Text,
		ContentHash:  ContentHash(in.Text),
		SourceKind:   in.SourceKind,
		SourceType:   in.SourceType,
		SourceID:     in.SourceID,
		OwnerID:      in.OwnerID,
		FilePath:     in.FilePath,
		RepoName:     in.RepoName,
		Branch:       in.Branch,
		Language:     in.Language,
		HeadingPath:  in.HeadingPath,
		SectionTitle: in.SectionTitle,
		Author:       in.Author,
		CommitSHA:    in.CommitSHA,
		CommitTime:   in.CommitTime,
		LineStart:    in.LineStart,
		LineEnd:      in.LineEnd,
		TokenCount:   in.TokenCount,
		Metadata:     in.Metadata,
		Embedding:    in.Embedding,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IngestChunksRequest is the POST /api/graph/chunks request body.
type IngestChunksRequest struct {
	Chunks           []ChunkInput `json:"chunks"`
	ExtractEntities  *bool        `json:"extract_entities,omitempty"`
	CreateCrossLinks *bool        `json:"create_cross_links,omitempty"`
}

// ExtractEntitiesOrDefault returns the request's flag, defaulting to true.
func (r IngestChunksRequest) ExtractEntitiesOrDefault() bool {
	if r.ExtractEntities == nil {
		return true
	}
	return *r.ExtractEntities
}

// CreateCrossLinksOrDefault returns the request's flag, defaulting to true.
func (r IngestChunksRequest) CreateCrossLinksOrDefault() bool {
	if r.CreateCrossLinks == nil {
		return true
	}
	return *r.CreateCrossLinks
}

// IngestChunksResponse is the aggregate, non-transactional report produced
// by the chunk processor.
type IngestChunksResponse struct {
	ChunksIngested       int      `json:"chunks_ingested"`
	EntitiesExtracted    int      `json:"entities_extracted"`
	RelationshipsCreated int      `json:"relationships_created"`
	VectorsStored        int      `json:"vectors_stored"`
	LinksCreated         int      `json:"links_created"`
	Errors               []string `json:"errors"`
}
