// ABOUTME: CLI commands for exporting and importing a user's vitals.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export your measurements",
	Long: `Export the logged-in user's account and measurements.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by kind (human-readable)
  markdown   Markdown tables per kind (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include data since this date (markdown only, YYYY-MM-DD)

EXAMPLES:

  vitals export json                        # Export all data as JSON
  vitals export json -o respaldo.json       # Save to file
  vitals export yaml                        # Export as YAML
  vitals export markdown --since 2025-01-01 # Tables from 2025 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		repo := svc.Repository()

		var data []byte
		switch args[0] {
		case "json":
			data, err = storage.ExportJSON(ctx, repo, sess.UserID)
		case "yaml":
			data, err = storage.ExportYAML(ctx, repo, sess.UserID)
		case "markdown":
			var since *time.Time
			if exportSince != "" {
				t, perr := time.ParseInLocation("2006-01-02", exportSince, time.Local)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = storage.ExportMarkdown(ctx, repo, sess.UserID, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import measurements from a JSON export",
	Long: `Import an account and its measurements from a JSON export.

The account is created when it does not exist yet. Measurements whose ID is
already present are skipped. Importing another user's export requires an
admin session.

EXAMPLES:

  vitals import respaldo.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		summary, err := importExport(cmd, sess, raw)
		if err != nil {
			return err
		}

		color.Green("✓ Imported %d measurements from %s", summary.Measurements, args[0])
		if summary.Skipped > 0 {
			fmt.Println(color.New(color.Faint).Sprintf("  %d already present, skipped", summary.Skipped))
		}
		return nil
	},
}

// importExport loads a JSON export. Only admins may import data owned by
// another user.
func importExport(cmd *cobra.Command, sess *auth.Session, raw []byte) (*storage.ImportSummary, error) {
	var data storage.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}
	if data.User == nil {
		return nil, fmt.Errorf("import failed: export has no user")
	}
	if data.User.ID != sess.UserID {
		if err := auth.RequireRole(models.RoleAdmin, sess); err != nil {
			return nil, err
		}
	}

	summary, err := storage.ImportData(cmd.Context(), svc.Repository(), &data)
	if err != nil {
		return nil, fmt.Errorf("import failed: %w", err)
	}
	return summary, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
