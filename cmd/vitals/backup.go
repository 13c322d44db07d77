// ABOUTME: CLI commands for off-device backups in Charm KV.
// ABOUTME: Each backup is a JSON export of the logged-in user.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/charm"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up your data to Charm Cloud",
	Long: `Store snapshots of your measurements in Charm KV, synced to the configured
Charm server (charm.2389.dev unless charm_host or VITALS_CHARM_HOST says otherwise).

Snapshots are addressed by their UTC timestamp; any unique prefix works.

EXAMPLES:

  vitals backup push                 # Upload a new snapshot
  vitals backup list                 # Show snapshots, newest first
  vitals backup pull                 # Restore the newest snapshot
  vitals backup pull 20250131T08     # Restore a specific snapshot
  vitals backup delete 20250131T08   # Remove a snapshot`,
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a snapshot of your data",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		data, err := storage.ExportJSON(cmd.Context(), svc.Repository(), sess.UserID)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		client, err := openBackups()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		b, err := client.Push(sess.UserID, data, time.Now())
		if err != nil {
			return err
		}
		color.Green("✓ Backed up %d bytes", len(data))
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(b.Stamp()))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		client, err := openBackups()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		backups, err := client.List(sess.UserID)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s %s\n", b.Stamp(), color.New(color.Faint).Sprint(b.CreatedAt.Local().Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull [stamp]",
	Short: "Restore a snapshot",
	Long: `Import a snapshot into local storage. Measurements already present are
skipped, so pulling twice is harmless.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		client, err := openBackups()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		var (
			b    charm.Backup
			data []byte
		)
		if len(args) == 1 {
			b, data, err = client.Get(sess.UserID, args[0])
		} else {
			b, data, err = client.Latest(sess.UserID)
		}
		if err != nil {
			return err
		}

		summary, err := importExport(cmd, sess, data)
		if err != nil {
			return err
		}
		color.Green("✓ Restored %s: %d measurements", b.Stamp(), summary.Measurements)
		if summary.Skipped > 0 {
			fmt.Println(color.New(color.Faint).Sprintf("  %d already present, skipped", summary.Skipped))
		}
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:     "delete <stamp>",
	Aliases: []string{"del", "rm"},
	Short:   "Remove a snapshot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		client, err := openBackups()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		if err := client.Delete(sess.UserID, args[0]); err != nil {
			return err
		}
		color.Yellow("✗ Deleted backup %s", args[0])
		return nil
	},
}

func openBackups() (*charm.Client, error) {
	client, err := charm.Open(charm.Options{Host: cfg.CharmHost, AutoSync: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open backups: %w", err)
	}
	logger.Debug("charm kv opened", "read_only", client.IsReadOnly())
	return client, nil
}

func init() {
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupPullCmd)
	backupCmd.AddCommand(backupDeleteCmd)
	rootCmd.AddCommand(backupCmd)
}
