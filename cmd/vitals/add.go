// ABOUTME: CLI command for recording a vital-sign measurement.
// ABOUTME: Blood pressure takes systolic and diastolic values in one entry.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/validation"
	"github.com/spf13/cobra"
)

var addAt string

var addCmd = &cobra.Command{
	Use:     "add <kind> <value> [value2]",
	Aliases: []string{"a"},
	Short:   "Record a measurement",
	Long: `Record a measurement for the logged-in user. For blood pressure, provide
both systolic and diastolic values.

Values are checked against the allowed range for each kind and rejected
with a message when they fall outside it.

Examples:
  vitals add peso 70.5
  vitals add ritmo_cardiaco 72 --at "2025-01-31 08:30"
  vitals add bp 120 80
  vitals add oxigeno_sangre 98`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		kind, err := models.ParseKind(args[0])
		if err != nil {
			return err
		}
		raw, err := validation.RawFor(kind, args[1:]...)
		if err != nil {
			return err
		}

		at := time.Now()
		if addAt != "" {
			at, err = parseTime(addAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", addAt)
			}
		}

		m, err := svc.SubmitAt(cmd.Context(), sess.UserID, kind, raw, at)
		if err != nil {
			return err
		}

		color.Green("✓ Added %s", kind.Title())
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(m.ID.String())), m.Display())
		return nil
	},
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	rootCmd.AddCommand(addCmd)
}
