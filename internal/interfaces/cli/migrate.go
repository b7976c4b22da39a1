package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/database/postgres"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
)

// MigrationState is the output of migrate status.
type MigrationState struct {
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
	Path    string `json:"path"`
}

func newMigrateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL citation schema",
		Long:  "Apply, roll back or inspect the migrations creating patent_citations and patent_details.",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "migrations directory or source URL (default: database.migration_path)")

	migrationsPath := func(cliCtx *CLIContext) string {
		if path != "" {
			return path
		}
		return cliCtx.Config.Database.MigrationPath
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			src := migrationsPath(cliCtx)
			if err := postgres.MigrateUp(postgres.ConnString(cliCtx.Config.Database), src); err != nil {
				return err
			}
			cliCtx.Logger.Info("migrations applied", logging.String("path", src))
			PrintSuccess(cmd, "schema is up to date")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if steps <= 0 {
				return fmt.Errorf("--steps must be greater than 0, got %d", steps)
			}
			src := migrationsPath(cliCtx)
			if err := postgres.RollbackMigration(postgres.ConnString(cliCtx.Config.Database), src, steps); err != nil {
				return err
			}
			cliCtx.Logger.Info("migrations rolled back", logging.Int("steps", steps))
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			src := migrationsPath(cliCtx)
			version, dirty, err := postgres.MigrationStatus(postgres.ConnString(cliCtx.Config.Database), src)
			if err != nil {
				return err
			}
			state := MigrationState{Version: version, Dirty: dirty, Path: src}
			return PrintResult(cmd, state, func(cmd *cobra.Command) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", state.Version, state.Dirty)
				return err
			})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

//Personal.AI order the ending
