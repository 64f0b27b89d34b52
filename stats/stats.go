// Package stats exposes the service's Prometheus counters and the backend
// health/statistics probes behind GET /health and GET /api/graph/statistics.
// Counter shape grounded on RedClaus-cortex's metrics package: package-level
// promauto counters, registered once at import time.
package stats

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kogsector/kgfusion/graphstore"
)

var (
	ChunksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgfusion_chunks_ingested_total",
		Help: "Total number of chunks successfully ingested.",
	})

	EntitiesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgfusion_entities_extracted_total",
		Help: "Total number of entities written by the extractors.",
	})

	RelationshipsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgfusion_relationships_created_total",
		Help: "Total number of structural relationships created.",
	})

	VectorsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgfusion_vectors_stored_total",
		Help: "Total number of chunk embeddings persisted.",
	})

	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgfusion_cross_source_links_created_total",
		Help: "Total number of cross-source links created by the linker.",
	})

	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "kgfusion_search_duration_seconds",
		Help: "Hybrid/vector/graph search latency in seconds.",
	}, []string{"mode"})
)

// RecordIngest adds an ingest batch's counters in one call, used right
// after the chunk processor returns its response.
func RecordIngest(chunksIngested, entitiesExtracted, relationshipsCreated, vectorsStored, linksCreated int) {
	ChunksIngested.Add(float64(chunksIngested))
	EntitiesExtracted.Add(float64(entitiesExtracted))
	RelationshipsCreated.Add(float64(relationshipsCreated))
	VectorsStored.Add(float64(vectorsStored))
	LinksCreated.Add(float64(linksCreated))
}

// ComponentHealth is one entry of GET /health's components map.
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthReport backs GET /health.
type HealthReport struct {
	Status     string                     `json:"status"`
	Service    string                     `json:"service"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components"`
}

// EmbeddingPinger is the narrow capability stats needs from the embedding
// client to report its health without importing embedclient directly.
type EmbeddingPinger interface {
	HealthCheck(ctx context.Context) error
}

// Probe checks the graph backend and, if present, the embedding service,
// producing the body for GET /health. A degraded graph backend never
// panics the handler: its component simply reports "unavailable".
func Probe(ctx context.Context, version string, store graphstore.Store, embedder EmbeddingPinger) HealthReport {
	report := HealthReport{
		Service:    "kgfusion",
		Version:    version,
		Components: map[string]ComponentHealth{},
	}

	graphOK := true
	if store == nil {
		graphOK = false
		report.Components["graph"] = ComponentHealth{Status: "unavailable", Error: "no graph adapter configured"}
	} else if err := store.Ping(ctx); err != nil {
		graphOK = false
		report.Components["graph"] = ComponentHealth{Status: "unavailable", Error: err.Error()}
	} else {
		report.Components["graph"] = ComponentHealth{Status: "ok"}
	}
	report.Components["relational"] = report.Components["graph"]

	embeddingOK := true
	if embedder == nil {
		embeddingOK = false
		report.Components["embedding"] = ComponentHealth{Status: "unavailable", Error: "no embedding client configured"}
	} else if err := embedder.HealthCheck(ctx); err != nil {
		embeddingOK = false
		report.Components["embedding"] = ComponentHealth{Status: "unavailable", Error: err.Error()}
	} else {
		report.Components["embedding"] = ComponentHealth{Status: "ok"}
	}

	if graphOK && embeddingOK {
		report.Status = "healthy"
	} else {
		report.Status = "degraded"
	}
	return report
}

// StatisticsReport backs GET /api/graph/statistics.
type StatisticsReport struct {
	Graph  graphstore.Statistics `json:"graph"`
	Vector VectorStats           `json:"vector"`
}

// VectorStats is the vector-store-specific slice of §6's statistics body.
type VectorStats struct {
	Store     string   `json:"store"`
	Dimension int      `json:"dimension"`
	Indexes   []string `json:"indexes"`
}

// Statistics fetches the graph backend's Statistics and reshapes it into
// the two-section response §6 describes.
func Statistics(ctx context.Context, store graphstore.Store) (StatisticsReport, error) {
	stats, err := store.Statistics(ctx)
	if err != nil {
		return StatisticsReport{}, err
	}
	return StatisticsReport{
		Graph: stats,
		Vector: VectorStats{
			Store:     stats.VectorStore,
			Dimension: stats.VectorDimension,
			Indexes:   stats.Indexes,
		},
	}, nil
}
