// ABOUTME: CLI commands for the dashboard, statistics, and BMI views.
// ABOUTME: Missing data is reported as information rather than an error.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "d"},
	Short:   "Show the latest reading of each kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		latest, err := svc.Dashboard(cmd.Context(), sess.UserID)
		if err != nil {
			return err
		}

		color.New(color.Bold).Printf("Hola, %s\n", sess.Name)
		faint := color.New(color.Faint)
		for _, kind := range models.AllKinds {
			m := latest[kind]
			if m == nil {
				fmt.Printf("%s %s\n", padRight(kind.Title(), 22), faint.Sprint("sin datos"))
				continue
			}
			fmt.Printf("%s %s %s\n",
				padRight(kind.Title(), 22),
				padRight(m.Display(), 14),
				faint.Sprint(m.Timestamp.Local().Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show averages, minimums, and maximums",
	Long: `Show count, average, minimum, and maximum for every recorded field.
Blood pressure reports systolic and diastolic separately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		report, err := svc.Statistics(cmd.Context(), sess.UserID)
		if tracker.Informational(err) {
			color.Yellow("%s", tracker.UserMessage(err))
			return nil
		}
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s %s %s %s\n",
			padRight("Medida", 28), padRight("N", 5), padRight("Promedio", 10), padRight("Mín", 8), "Máx")
		for _, s := range report.Entries {
			fmt.Printf("%s %s %s %s %s %s\n",
				padRight(s.Label, 28),
				padRight(fmt.Sprint(s.Count), 5),
				padRight(s.Average, 10),
				padRight(s.Min, 8),
				padRight(s.Max, 8),
				faint.Sprint(s.Unit))
		}
		return nil
	},
}

var bmiCmd = &cobra.Command{
	Use:   "bmi",
	Short: "Compute body mass index",
	Long: `Compute BMI from the most recent weight and height of the logged-in user
and classify it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		res, err := svc.ComputeBMI(cmd.Context(), sess.UserID)
		if tracker.Informational(err) {
			color.Yellow("%s", tracker.UserMessage(err))
			return nil
		}
		if err != nil {
			return err
		}

		styled := color.New(bmiColor(res.Style)).SprintFunc()
		fmt.Printf("IMC: %s %s\n", color.New(color.Bold).Sprint(res.Display), styled(res.Category))
		fmt.Println(color.New(color.Faint).Sprintf("  peso %s kg (%s), altura %s cm (%s)",
			models.FormatValue(models.Float, res.WeightKg), res.WeightAt.Local().Format("2006-01-02"),
			models.FormatValue(models.Float, res.HeightCm), res.HeightAt.Local().Format("2006-01-02")))
		return nil
	},
}

func bmiColor(style string) color.Attribute {
	switch style {
	case tracker.StyleDanger:
		return color.FgRed
	case tracker.StyleWarning:
		return color.FgYellow
	default:
		return color.FgGreen
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(bmiCmd)
}
