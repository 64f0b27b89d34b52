// Package config loads this service's settings through the same layered
// precedence the teacher codebase uses for its own configuration: built-in
// defaults, then an optional YAML file, then environment variables, each
// overlay winning over the last. See Loader.Load.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kogsector/kgfusion/apperr"
)

// Config holds the settings named in SPEC_FULL.md §6, except the separate
// graph-backend URI/user/password/database: the graph backend is reached
// through DATABASE_URL.
type Config struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`

	DatabaseURL string `yaml:"database_url"`

	VectorStoreEndpoint string `yaml:"vector_store_endpoint"`
	VectorDimension      int    `yaml:"vector_dimension"`

	EmbeddingServiceURL     string `yaml:"embedding_service_url"`
	ChunkerServiceURL       string `yaml:"chunker_service_url"`
	DataConnectorServiceURL string `yaml:"data_connector_service_url"`

	SimilarityThreshold    float64 `yaml:"similarity_threshold"`
	MaxCrossLinksPerChunk  int     `yaml:"max_cross_links_per_chunk"`
	EnableTemporalProximity bool   `yaml:"enable_temporal_proximity"`
	EnableExplicitMentions bool    `yaml:"enable_explicit_mentions"`
	EnableAuthorOverlap    bool    `yaml:"enable_author_overlap"`
	TemporalProximityDays  int     `yaml:"temporal_proximity_days"`

	MaxGraphHops            int `yaml:"max_graph_hops"`
	MaxEntitiesPerTraversal int `yaml:"max_entities_per_traversal"`

	RedisURL string `yaml:"redis_url"`
	NatsURL  string `yaml:"nats_url"`

	LogFormat string `yaml:"log_format"`
}

// Defaults returns the built-in baseline, matching §6's defaults exactly.
func Defaults() Config {
	return Config{
		Port:                    "3018",
		Host:                    "0.0.0.0",
		VectorDimension:         1024,
		SimilarityThreshold:     0.75,
		MaxCrossLinksPerChunk:   5,
		EnableTemporalProximity: true,
		EnableExplicitMentions:  true,
		EnableAuthorOverlap:     true,
		TemporalProximityDays:   7,
		MaxGraphHops:            2,
		MaxEntitiesPerTraversal: 50,
		LogFormat:               "json",
	}
}

// Loader applies the defaults -> file -> env precedence chain.
type Loader struct {
	logger *slog.Logger
}

// NewLoader constructs a Loader that logs each overlay it applies.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads an optional YAML file at path (skipped silently if path is
// empty or the file does not exist — a missing project/user config file is
// not an error, matching the teacher's layered loader), then overlays the
// process environment, then validates required fields.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("%w: read config file %s: %w", apperr.ErrConfiguration, path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%w: parse config file %s: %w", apperr.ErrConfiguration, path, err)
			}
			l.logger.Info("loaded config file", "path", path)
		}
	}

	l.overlayEnv(&cfg)

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("%w: DATABASE_URL is required", apperr.ErrConfiguration)
	}
	return cfg, nil
}

func (l *Loader) overlayEnv(cfg *Config) {
	str(&cfg.Port, "PORT")
	str(&cfg.Host, "HOST")
	str(&cfg.DatabaseURL, "DATABASE_URL")
	str(&cfg.VectorStoreEndpoint, "VECTOR_STORE_ENDPOINT")
	intVar(&cfg.VectorDimension, "VECTOR_DIMENSION")
	str(&cfg.EmbeddingServiceURL, "EMBEDDING_SERVICE_URL")
	str(&cfg.ChunkerServiceURL, "CHUNKER_SERVICE_URL")
	str(&cfg.DataConnectorServiceURL, "DATA_CONNECTOR_SERVICE_URL")
	floatVar(&cfg.SimilarityThreshold, "SIMILARITY_THRESHOLD")
	intVar(&cfg.MaxCrossLinksPerChunk, "MAX_CROSS_LINKS_PER_CHUNK")
	boolVar(&cfg.EnableTemporalProximity, "ENABLE_TEMPORAL_PROXIMITY")
	boolVar(&cfg.EnableExplicitMentions, "ENABLE_EXPLICIT_MENTIONS")
	boolVar(&cfg.EnableAuthorOverlap, "ENABLE_AUTHOR_OVERLAP")
	intVar(&cfg.TemporalProximityDays, "TEMPORAL_PROXIMITY_DAYS")
	intVar(&cfg.MaxGraphHops, "MAX_GRAPH_HOPS")
	intVar(&cfg.MaxEntitiesPerTraversal, "MAX_ENTITIES_PER_TRAVERSAL")
	str(&cfg.RedisURL, "REDIS_URL")
	str(&cfg.NatsURL, "NATS_URL")
	str(&cfg.LogFormat, "LOG_FORMAT")
}

// TemporalProximityWindow returns the configured window as a time.Duration
// for linker arithmetic convenience.
func (c Config) TemporalProximityWindow() time.Duration {
	return time.Duration(c.TemporalProximityDays) * 24 * time.Hour
}

func str(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func intVar(dst *int, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func floatVar(dst *float64, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func boolVar(dst *bool, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}
