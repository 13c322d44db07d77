// ABOUTME: CLI commands for administrators.
// ABOUTME: Account search, per-user records, measurement edits, promotion and bootstrap.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/harperreed/vitals/internal/validation"
	"github.com/spf13/cobra"
)

const (
	defaultAdminName  = "administrador"
	defaultAdminEmail = "admin@miaplicacion.com"
)

var (
	bootstrapName     string
	bootstrapEmail    string
	bootstrapPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator commands",
	Long: `Administrator commands. Every subcommand except bootstrap requires a
session with the admin role. Log in again after being promoted.`,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users [search]",
	Short: "List accounts, optionally filtered by name or email",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		search := ""
		if len(args) == 1 {
			search = args[0]
		}

		users, err := svc.ListUsers(cmd.Context(), sess, search)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, u := range users {
			fmt.Printf("%s %s %s %s\n",
				faint.Sprint(shortID(u.ID.String())),
				padRight(truncate(u.Name, 20), 20),
				padRight(truncate(u.Email, 32), 32),
				u.Role)
		}
		return nil
	},
}

var adminRecordsCmd = &cobra.Command{
	Use:   "records <user-id>",
	Short: "Show every measurement of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		u, history, err := svc.UserHistory(cmd.Context(), sess, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n\n", color.New(color.Bold).Sprint(u.Name), color.New(color.Faint).Sprint(u.Email))
		printHistory(history)
		return nil
	},
}

var adminEditCmd = &cobra.Command{
	Use:   "edit <kind> <id> <value> [value2]",
	Short: "Correct the values of a measurement",
	Long: `Replace the values of a measurement. The new values are validated the same
way as new entries; owner and timestamp are kept.

EXAMPLES:

  vitals admin edit peso a1b2c3d4 71.2
  vitals admin edit bp a1b2c3d4 118 76`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}
		raw, err := validation.RawFor(kind, args[2:]...)
		if err != nil {
			return err
		}

		m, err := svc.EditMeasurement(cmd.Context(), sess, kind, args[1], raw)
		if err != nil {
			return err
		}

		color.Green("✓ Updated %s", kind.Title())
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(m.ID.String())), m.Display())
		return nil
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:     "delete <kind> <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a measurement",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}

		m, err := svc.DeleteMeasurement(cmd.Context(), sess, kind, args[1])
		if err != nil {
			return err
		}

		color.Yellow("✗ Deleted %s %s", kind.Title(), m.Display())
		return nil
	},
}

var adminDeleteUserCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Delete an account and all of its measurements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		u, err := svc.DeleteUser(cmd.Context(), sess, args[0])
		if err != nil {
			return err
		}

		color.Yellow("✗ Deleted user %s", u.Name)
		return nil
	},
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote <user-id>",
	Short: "Give a user the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		u, err := svc.PromoteUser(cmd.Context(), sess, args[0])
		if err != nil {
			return err
		}

		color.Green("✓ %s is now %s", u.Name, u.Role)
		return nil
	},
}

var adminBootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the first administrator account",
	Long: `Create an administrator account if the name is not taken.

Values come from the flags, then VITALS_ADMIN_NAME, VITALS_ADMIN_EMAIL and
VITALS_ADMIN_PASSWORD, then the defaults "administrador" and
"admin@miaplicacion.com". The password is prompted for when none is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := firstNonEmpty(bootstrapName, cfg.Admin.Name, defaultAdminName)
		email := firstNonEmpty(bootstrapEmail, cfg.Admin.Email, defaultAdminEmail)
		password := firstNonEmpty(bootstrapPassword, cfg.Admin.Password)
		if password == "" {
			var err error
			password, err = readPassword("Contraseña del administrador: ")
			if err != nil {
				return err
			}
		}

		u, err := svc.BootstrapAdmin(cmd.Context(), name, email, password)
		if errors.Is(err, storage.ErrDuplicateName) {
			color.Yellow("El usuario administrador %q ya existe", name)
			return nil
		}
		if err != nil {
			return err
		}

		color.Green("✓ Created administrator %s", u.Name)
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	adminBootstrapCmd.Flags().StringVar(&bootstrapName, "name", "", "administrator name")
	adminBootstrapCmd.Flags().StringVar(&bootstrapEmail, "email", "", "administrator email")
	adminBootstrapCmd.Flags().StringVar(&bootstrapPassword, "password", "", "administrator password")

	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminRecordsCmd)
	adminCmd.AddCommand(adminEditCmd)
	adminCmd.AddCommand(adminDeleteCmd)
	adminCmd.AddCommand(adminDeleteUserCmd)
	adminCmd.AddCommand(adminPromoteCmd)
	adminCmd.AddCommand(adminBootstrapCmd)
	rootCmd.AddCommand(adminCmd)
}
