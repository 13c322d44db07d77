// ABOUTME: CLI command for copying all data to another storage backend.
// ABOUTME: Users, per-kind measurements, and advice move in dependency order.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDSN    string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all data to another storage backend",
	Long: `Copy every user, measurement, and advice entry from the configured backend
to another one.

BACKENDS:

  sqlite        built-in SQLite file (default)
  gorm-sqlite   SQLite through GORM
  mysql         MySQL, requires --dsn
  postgres      PostgreSQL, requires --dsn
  sqlserver     SQL Server, requires --dsn

IMPORTANT:

  - The destination should be empty; existing IDs cause the copy to stop
  - Run with --dry-run first to see what would be copied
  - Switch "backend" in ~/.config/vitals/config.json afterwards

USAGE:

  vitals migrate --to postgres --dsn "host=localhost user=vitals dbname=vitals" --dry-run
  vitals migrate --to postgres --dsn "host=localhost user=vitals dbname=vitals"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required")
		}
		if migrateTo == cfg.GetBackend() && migrateDSN == cfg.DSN {
			return fmt.Errorf("source and destination are the same backend")
		}
		ctx := cmd.Context()
		src := svc.Repository()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			summary, err := countSource(ctx, src)
			if err != nil {
				return err
			}
			printMigrateSummary("Would copy", summary)
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		dstCfg.DSN = migrateDSN

		if dstCfg.GetBackend() == storage.BackendSQLite || dstCfg.GetBackend() == storage.BackendGormSQLite {
			nonEmpty, err := storage.IsFileNonEmpty(dstCfg.DatabasePath())
			if err != nil {
				return err
			}
			if nonEmpty {
				return fmt.Errorf("destination %s already has data", dstCfg.DatabasePath())
			}
		}

		dst, err := dstCfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(ctx, src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated to %s", dstCfg.GetBackend())
		printMigrateSummary("Copied", summary)
		return nil
	},
}

// countSource reports what MigrateData would copy from src.
func countSource(ctx context.Context, src storage.Repository) (*storage.MigrateSummary, error) {
	summary := &storage.MigrateSummary{Measurements: make(map[models.Kind]int)}

	users, err := src.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	summary.Users = len(users)
	for _, u := range users {
		for _, k := range models.AllKinds {
			ms, err := src.ListMeasurements(ctx, u.ID, k, 0)
			if err != nil {
				return nil, err
			}
			summary.Measurements[k] += len(ms)
		}
	}

	advice, err := src.ListAdvice(ctx, storage.AdviceFilter{})
	if err != nil {
		return nil, err
	}
	summary.Advice = len(advice)
	return summary, nil
}

func printMigrateSummary(verb string, s *storage.MigrateSummary) {
	fmt.Printf("%s %d users, %d measurements, %d advice entries\n", verb, s.Users, s.Total(), s.Advice)
	faint := color.New(color.Faint)
	for _, k := range models.AllKinds {
		if n := s.Measurements[k]; n > 0 {
			fmt.Println(faint.Sprintf("  %s %d", padRight(string(k), 18), n))
		}
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().StringVar(&migrateDSN, "dsn", "", "destination connection string or SQLite path")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
