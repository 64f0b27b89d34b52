package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/kogsector/kgfusion/config"
	"github.com/kogsector/kgfusion/model"
	"github.com/kogsector/kgfusion/webingest"
)

// newIngestCmd backfills chunks straight into the Processor, skipping the
// HTTP round trip for bulk local ingestion, following the teacher's
// ast-indexer pattern of expanding doublestar globs (paths.go) over a repo
// checkout.
func newIngestCmd(configPath *string) *cobra.Command {
	var (
		include  []string
		ownerID  string
		repoName string
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest local files matching one or more glob patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(include) == 0 {
				return fmt.Errorf("at least one --include pattern is required")
			}

			logger := newLogger(config.Defaults())
			cfg, err := config.NewLoader(logger).Load(*configPath)
			if err != nil {
				return err
			}
			logger = newLogger(cfg)

			app, err := NewApp(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer app.Close(context.Background())

			paths, err := expandPatterns(include)
			if err != nil {
				return fmt.Errorf("expand --include patterns: %w", err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no files matched --include patterns %v", include)
			}

			converter := webingest.New()
			chunks := make([]model.ChunkInput, 0, len(paths))
			for _, path := range paths {
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("skip unreadable file", "path", path, "error", err)
					continue
				}

				text := string(data)
				sourceKind := model.SourceKindDocument
				if kind == "code" {
					sourceKind = model.SourceKindCode
				}

				if strings.EqualFold(filepath.Ext(path), ".html") || strings.EqualFold(filepath.Ext(path), ".htm") {
					result, err := converter.Convert(text, "file://"+path)
					if err != nil {
						logger.Warn("skip unconvertible html file", "path", path, "error", err)
						continue
					}
					text = result.Markdown
				}

				chunks = append(chunks, model.ChunkInput{
					Text:       text,
					SourceKind: sourceKind,
					SourceType: model.SourceTypeLocal,
					SourceID:   path,
					OwnerID:    ownerID,
					FilePath:   path,
					RepoName:   repoName,
					Language:   strings.TrimPrefix(filepath.Ext(path), "."),
				})
			}

			resp := app.processor.IngestChunks(ctx, model.IngestChunksRequest{Chunks: chunks})
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal response: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "Glob pattern(s) to ingest, supports ** (repeatable)")
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID to attach to every ingested chunk")
	cmd.Flags().StringVar(&repoName, "repo", "", "Repository name to attach to every ingested chunk")
	cmd.Flags().StringVar(&kind, "kind", "document", "Source kind: document or code")
	return cmd
}

// expandPatterns resolves every pattern to an absolute path and expands it
// with doublestar, matching the teacher's FilepathGlob usage in
// processor/ast-indexer/paths.go.
func expandPatterns(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		absPattern, err := filepath.Abs(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		matches, err := doublestar.FilepathGlob(absPattern)
		if err != nil {
			return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
