// Package pipeline runs the extraction and transformation stages end to end,
// isolating per-document failures and collecting a report.Summary.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"legacymig/pkg/engine"
	"legacymig/pkg/extract"
	"legacymig/pkg/parser"
	"legacymig/pkg/report"
	"legacymig/pkg/schema"
)

// Document is one snapshot to extract from. Load is called at most once.
type Document struct {
	Name string
	Size int64
	Load func() ([]byte, error)
}

// ExtractOptions tunes ExtractDocuments.
type ExtractOptions struct {
	// MaxDocumentBytes skips larger documents. Zero means no limit.
	MaxDocumentBytes int64
}

// DirDocuments lists the files in dir matching pattern as Documents.
func DirDocuments(dir, pattern string) ([]Document, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	docs := make([]Document, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		p := path
		docs = append(docs, Document{
			Name: filepath.Base(p),
			Size: info.Size(),
			Load: func() ([]byte, error) { return os.ReadFile(p) },
		})
	}
	return docs, nil
}

// ExtractDocuments extracts candidates from every document, smallest first,
// and merges them. A document that cannot be loaded, decoded or extracted is
// recorded in the summary and the run continues with the next one.
// Cancelling ctx stops the run before the next document.
func ExtractDocuments(ctx context.Context, docs []Document, ex *extract.Extractor, opts ExtractOptions, log zerolog.Logger) (*schema.Candidates, *report.Summary) {
	summary := report.NewSummary(uuid.NewString(), report.StageExtract)
	log = log.With().Str("run_id", summary.RunID).Logger()

	ordered := append([]Document(nil), docs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Size != ordered[j].Size {
			return ordered[i].Size < ordered[j].Size
		}
		return ordered[i].Name < ordered[j].Name
	})

	merger := engine.NewMerger()

	for _, doc := range ordered {
		if err := ctx.Err(); err != nil {
			summary.Interrupted = true
			log.Warn().Err(err).Msg("extraction interrupted")
			break
		}

		dlog := log.With().Str("document", doc.Name).Int64("size", doc.Size).Logger()

		if opts.MaxDocumentBytes > 0 && doc.Size > opts.MaxDocumentBytes {
			summary.RecordSkip(doc.Name, doc.Size, fmt.Sprintf("larger than %d bytes", opts.MaxDocumentBytes))
			dlog.Info().Msg("document skipped")
			continue
		}

		c, err := extractOne(ex, doc)
		if err != nil {
			summary.RecordFailure(doc.Name, err)
			dlog.Error().Err(err).Msg("document failed")
			continue
		}

		merger.Add(c)
		summary.DocumentsProcessed++
		dlog.Debug().
			Int("users", len(c.Users)).
			Int("requests", len(c.Requests)).
			Msg("document extracted")
	}

	result := merger.Result()
	engine.SortUsers(result.Users)

	summary.Duplicates = merger.Stats.Duplicates
	summary.SetCount("users", len(result.Users))
	summary.SetCount("branches", len(result.Branches))
	summary.SetCount("roles", len(result.Roles))
	summary.SetCount("requests", len(result.Requests))
	summary.SetCount("articles", len(result.Articles))
	summary.Finish()

	return result, summary
}

// extractOne loads, decodes and extracts one document, turning a panic in
// any step into an error.
func extractOne(ex *extract.Extractor, doc Document) (c *schema.Candidates, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("panic during extraction: %v", r)
		}
	}()

	if doc.Load == nil {
		return nil, fmt.Errorf("document %s has no loader", doc.Name)
	}
	raw, err := doc.Load()
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	text, _, err := parser.DetectAndDecode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ex.Extract(string(text)), nil
}
