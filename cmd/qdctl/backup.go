package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"queridodiario/internal/service"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import the whole database as JSON",
	}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every table to a JSON file",
		Long: `Write every table to a JSON file.

The file does not depend on the database engine, so an export taken from SQLite
can be imported into PostgreSQL or MySQL.

Examples:
  qdctl backup export
  qdctl backup export --output backups/qd.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create directory: %w", err)
				}
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer file.Close()

			backup, err := service.NewBackupService(db, a.logger).Export(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tenants, %d diaries, %d completions to %s\n",
				len(backup.Tenants), len(backup.Diaries), len(backup.Completions), output)
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default backup_YYYYMMDD_HHMMSS.json)")

	var input string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Restore a JSON export into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open backup file: %w", err)
			}
			defer file.Close()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			backup, err := service.NewBackupService(db, a.logger).Import(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tenants, %d diaries, %d completions from %s\n",
				len(backup.Tenants), len(backup.Diaries), len(backup.Completions), input)
			return nil
		},
	}
	imp.Flags().StringVarP(&input, "input", "i", "", "backup file to restore (required)")
	_ = imp.MarkFlagRequired("input")

	cmd.AddCommand(export, imp)
	return cmd
}
