package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"legacymig/pkg/config"
	"legacymig/pkg/parser"
	"legacymig/pkg/pipeline"
)

var (
	exportFile   string
	transformOut string
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform the legacy database export into normalized records",
	Long: `Reads the phpMyAdmin JSON export given by --export and writes users.json,
branches.json, roles.json, requests.json, cerebro.json, tasks.json,
user_branches.json and user_roles.json to --out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cfg, exportFile, transformOut)
	},
}

func init() {
	transformCmd.Flags().StringVar(&exportFile, "export", "", "phpMyAdmin JSON export file")
	transformCmd.Flags().StringVar(&transformOut, "out", "import_data", "output directory")
	_ = transformCmd.MarkFlagRequired("export")
}

func runTransform(cfg *config.Config, path, out string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	export, err := parser.ParseExport(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	vocab, err := loadVocabulary(cfg.Extract.VocabularyFile)
	if err != nil {
		return err
	}

	ds, summary := pipeline.TransformExport(export, pipeline.TransformOptions{
		EmailDomain: cfg.Transform.EmailDomain,
		Vocabulary:  vocab,
	}, logger)

	if err := writeOutputs(out, []outputFile{
		{"users.json", ds.Users},
		{"branches.json", ds.Branches},
		{"roles.json", ds.Roles},
		{"requests.json", ds.Requests},
		{"cerebro.json", ds.Articles},
		{"tasks.json", ds.Tasks},
		{"user_branches.json", ds.UserBranches},
		{"user_roles.json", ds.UserRoles},
	}); err != nil {
		return err
	}

	summary.Log(logger)
	return nil
}
