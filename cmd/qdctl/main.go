// Package main implements qdctl, the operator CLI for Querido Diário.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"queridodiario/internal/config"
	"queridodiario/internal/database"
	"queridodiario/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "qdctl",
		Short: "Operator CLI for Querido Diário",
		Long: `qdctl manages a Querido Diário deployment from the command line.

Database commands read the same environment as the server (DB_TYPE, DB_PATH,
DATABASE_URL, and a .env file when present). Panel commands talk to a running
server with a diary's shared link.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			logger, err := logging.New(logging.Config{Level: a.cfg.LogLevel, Format: "console"})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newTenantCmd(a),
		newBackupCmd(a),
		newPanelCmd(),
	)
	return root
}

// openDB connects to the configured database and brings its schema up to date
func (a *app) openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.InitializeWithConfig(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.MigrationVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database (%s) at migration version %d\n", a.cfg.DatabaseType, version)
			return nil
		},
	}
}
