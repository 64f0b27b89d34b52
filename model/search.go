package model

// SearchRequest is the shared request shape for /api/search,
// /api/search/vector, and /api/search/graph (§4.6).
type SearchRequest struct {
	Query              string      `json:"query"`
	Limit              int         `json:"limit,omitempty"`
	GraphHops          int         `json:"graph_hops,omitempty"`
	SourceKind         string      `json:"source_kind,omitempty"` // "code" | "document" | "all"
	SourceTypes        []SourceType `json:"source_types,omitempty"`
	RepoFilter         string      `json:"repo_filter,omitempty"`
	OwnerID            string      `json:"owner_id,omitempty"`
	IncludeCrossSource bool        `json:"include_cross_source,omitempty"`
	MinSimilarity      float64     `json:"min_similarity,omitempty"`

	// StartIDs is graph-only search's set of start entity ids. Start
	// entities are given by id only; entity names are not resolved.
	StartIDs        []string           `json:"start_ids,omitempty"`
	Direction        string            `json:"direction,omitempty"` // "outgoing" | "incoming" | "both"
	RelationshipTypes []RelationshipType `json:"relationship_types,omitempty"`
}

// LimitOrDefault returns Limit, defaulting to 10 per §4.6.
func (r SearchRequest) LimitOrDefault() int {
	if r.Limit <= 0 {
		return 10
	}
	return r.Limit
}

// GraphHopsOrDefault returns GraphHops, defaulting to 2 per §4.6.
func (r SearchRequest) GraphHopsOrDefault() int {
	if r.GraphHops <= 0 {
		return 2
	}
	return r.GraphHops
}

// ChunkHit is one ranked vector-recall result.
type ChunkHit struct {
	ChunkID     string     `json:"chunk_id"`
	Score       float64    `json:"score"`
	SourceKind  SourceKind `json:"source_kind"`
	SourceType  SourceType `json:"source_type"`
	FilePath    string     `json:"file_path,omitempty"`
	HeadingPath string     `json:"heading_path,omitempty"`
	RepoName    string     `json:"repo_name,omitempty"`
	Text        string     `json:"text"`
}
