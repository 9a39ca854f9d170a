// Package main provides the legacymig CLI: extract candidates from intranet
// snapshots and transform the legacy database export.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"legacymig/pkg/config"
	"legacymig/pkg/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// configFile is set by the --config flag.
	configFile string

	cfg    *config.Config
	logger = zerolog.Nop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "legacymig",
	Short: "Migrate the legacy intranet into the normalized schema",
	Long: `legacymig recovers users, branches, roles, requests and knowledge-base
articles from accessibility snapshots of the old intranet, and converts the
phpMyAdmin JSON export of its database into normalized JSON records.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./legacymig.yaml when present)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(transformCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the legacymig version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "legacymig", version)
	},
}

// setup loads .env, the configuration and the logger.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var err error
	cfg, err = config.Load(configFile, ".")
	if err != nil {
		return err
	}

	logger = logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}
