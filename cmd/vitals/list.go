// ABOUTME: CLI commands for listing measurements.
// ABOUTME: list shows recent entries across kinds; history groups them per kind.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	listKind  string
	listLimit int

	historyLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List recent measurements",
	Long: `List recent measurements of the logged-in user, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  KIND  VALUE UNIT

  The ID is an 8-character prefix accepted by the admin edit and delete
  commands.

EXAMPLES:

  vitals list                        # Last 10 measurements of any kind
  vitals list --kind peso            # Only weight entries
  vitals list -k bp -n 30            # Last 30 blood pressure readings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		var ms []*models.Measurement
		if listKind != "" {
			kind, err := models.ParseKind(listKind)
			if err != nil {
				return err
			}
			ms, err = svc.KindHistory(cmd.Context(), sess.UserID, kind, listLimit)
			if err != nil {
				return err
			}
		} else {
			ms, err = svc.Recent(cmd.Context(), sess.UserID, listLimit)
			if err != nil {
				return err
			}
		}

		if len(ms) == 0 {
			fmt.Println("No measurements found.")
			return nil
		}
		printMeasurements(ms)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show measurement history per kind",
	Long: `Show the most recent measurements of every kind, grouped under a heading
per kind. Kinds without entries are listed as empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		history, err := svc.History(cmd.Context(), sess.UserID, historyLimit)
		if err != nil {
			return err
		}
		printHistory(history)
		return nil
	},
}

func printHistory(history map[models.Kind][]*models.Measurement) {
	for _, kind := range models.AllKinds {
		color.New(color.Bold).Println(kind.Title())
		ms := history[kind]
		if len(ms) == 0 {
			fmt.Println(color.New(color.Faint).Sprint("  (sin registros)"))
			continue
		}
		for _, m := range ms {
			fmt.Print("  ")
			printMeasurements([]*models.Measurement{m})
		}
	}
}

func printMeasurements(ms []*models.Measurement) {
	faint := color.New(color.Faint)
	for _, m := range ms {
		fmt.Printf("%s %s %s %s\n",
			faint.Sprint(shortID(m.ID.String())),
			faint.Sprint(m.Timestamp.Local().Format("2006-01-02 15:04")),
			padRight(string(m.Kind), 18),
			m.Display())
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "filter by measurement kind")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", tracker.DefaultRecentLimit, "max number of results")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", tracker.DefaultRecentLimit, "max entries per kind")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
}
