// Package cli provides the cobra command tree for the docgate binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docgate/internal/core/ports/driving"
	"github.com/custodia-labs/docgate/internal/core/services"
	"github.com/custodia-labs/docgate/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// envFile is loaded from the working directory before configuration is read.
const envFile = ".env"

var (
	verbose   bool
	configDir string
)

// settingsService is resolved on first use; tests inject their own.
var settingsService driving.SettingsService

var rootCmd = &cobra.Command{
	Use:   "docgate",
	Short: "Document ingestion and query gateway",
	Long: `docgate stores uploaded files, extracts their text through an external
service and answers questions over everything it has stored.

Run "docgate serve" to start the HTTP API, or use the file, upload and
query commands to work with the stores directly.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docgate)")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion overrides the version reported by "docgate version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func initRoot(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(store, nil)
	logger.Debug("Config file: %s", store.Path())
	return nil
}
