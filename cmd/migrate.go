package cmd

import (
	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/internal/metricstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// migrateCmd runs database migrations for the metric store.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the metric store.

Migrations allow:
- Upgrading to new schema versions when DevPulse is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  devpulse migrate

  # Migrate to specific version
  devpulse migrate --target-version 1

  # Rollback to initial state
  devpulse migrate --target-version 0`,
	PreRunE: migrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := metricstore.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
