package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"legacymig/pkg/config"
	"legacymig/pkg/extract"
	"legacymig/pkg/pipeline"
	"legacymig/pkg/schema"
)

const snapshotPattern = "snapshot-*.log"

var (
	snapshotDir string
	extractOut  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract record candidates from intranet snapshots",
	Long: `Reads every snapshot-*.log file in --dir and writes users.json,
branches.json, roles.json, requests.json and cerebro_articles.json to --out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.Context(), cfg, snapshotDir, extractOut)
	},
}

func init() {
	extractCmd.Flags().StringVar(&snapshotDir, "dir", ".", "directory holding the snapshot files")
	extractCmd.Flags().StringVar(&extractOut, "out", "extracted_data", "output directory")
}

func loadVocabulary(path string) (*schema.Vocabulary, error) {
	if path == "" {
		return schema.DefaultVocabulary(), nil
	}
	return schema.LoadVocabularyFile(path)
}

func runExtract(ctx context.Context, cfg *config.Config, dir, out string) error {
	vocab, err := loadVocabulary(cfg.Extract.VocabularyFile)
	if err != nil {
		return err
	}

	ex, err := extract.New(vocab, extract.Options{
		OptionScanMaxBytes:  cfg.Extract.OptionScanMaxBytes,
		BareOptionUsernames: cfg.Extract.BareOptionUsernames,
	})
	if err != nil {
		return err
	}

	docs, err := pipeline.DirDocuments(dir, snapshotPattern)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	if len(docs) == 0 {
		logger.Warn().Str("dir", dir).Str("pattern", snapshotPattern).Msg("no snapshot files found")
	}

	c, summary := pipeline.ExtractDocuments(ctx, docs, ex, pipeline.ExtractOptions{
		MaxDocumentBytes: cfg.Extract.MaxDocumentBytes,
	}, logger)

	if err := writeOutputs(out, []outputFile{
		{"users.json", c.Users},
		{"branches.json", c.Branches},
		{"roles.json", c.Roles},
		{"requests.json", c.Requests},
		{"cerebro_articles.json", c.Articles},
	}); err != nil {
		return err
	}

	summary.Log(logger)
	return nil
}
