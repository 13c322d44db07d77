// ABOUTME: CLI commands for the health advice feed.
// ABOUTME: Anyone can read advice; creating, editing and deleting need an admin session.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	adviceQuery string
	adviceTopic string

	adviceTitle string
	adviceBody  string
	adviceImage string
)

var adviceCmd = &cobra.Command{
	Use:     "advice",
	Aliases: []string{"tips"},
	Short:   "Read and manage health advice",
}

var adviceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List advice, newest first",
	Long: `List advice entries newest first.

FILTERING:

  --query, -q   case-insensitive text searched in title and body
  --topic       one topic, or "todos" for all

EXAMPLES:

  vitals advice list
  vitals advice list --topic Sueño
  vitals advice list -q agua`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := svc.ListAdvice(cmd.Context(), adviceQuery, adviceTopic)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No advice found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, a := range list {
			fmt.Printf("%s %s %s %s\n",
				faint.Sprint(shortID(a.ID.String())),
				faint.Sprint(a.Timestamp.Local().Format("2006-01-02")),
				padRight(a.Topic, 12),
				truncate(a.Title, 50))
		}
		return nil
	},
}

var adviceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one advice entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := svc.GetAdvice(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAdvice(a)
		return nil
	},
}

var adviceTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List advice topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := svc.Topics(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range topics {
			fmt.Println(t)
		}
		return nil
	},
}

var adviceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish a new advice entry",
	Long: `Publish a new advice entry. Topic defaults to General. An optional image
(png, jpg, jpeg, gif) is copied into the configured image store.

EXAMPLES:

  vitals advice add --title "Hidrátate" --body "Bebe agua durante el día" --topic Nutrición
  vitals advice add --title "Duerme bien" --body "..." --image luna.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		in := tracker.AdviceInput{Title: adviceTitle, Body: adviceBody, Topic: adviceTopic}
		closeImage, err := attachImage(&in, adviceImage)
		if err != nil {
			return err
		}
		defer closeImage()

		a, err := svc.CreateAdvice(cmd.Context(), sess, in)
		if err != nil {
			return err
		}

		color.Green("✓ Published %q", a.Title)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(a.ID.String())), a.Topic)
		return nil
	},
}

var adviceEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an advice entry",
	Long: `Edit an advice entry. Only the flags given are changed. A new image
replaces the previous one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		in := tracker.AdviceInput{Title: adviceTitle, Body: adviceBody, Topic: adviceTopic}
		closeImage, err := attachImage(&in, adviceImage)
		if err != nil {
			return err
		}
		defer closeImage()

		a, err := svc.UpdateAdvice(cmd.Context(), sess, args[0], in)
		if err != nil {
			return err
		}

		color.Green("✓ Updated %q", a.Title)
		return nil
	},
}

var adviceDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete an advice entry and its image",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		a, err := svc.DeleteAdvice(cmd.Context(), sess, args[0])
		if err != nil {
			return err
		}

		color.Yellow("✗ Deleted %q", a.Title)
		return nil
	},
}

// attachImage opens path and sets it as the image of in. The returned
// func closes the file.
func attachImage(in *tracker.AdviceInput, path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	in.Image = f
	in.ImageName = filepath.Base(path)
	return func() { _ = f.Close() }, nil
}

func printAdvice(a *models.Advice) {
	faint := color.New(color.Faint)
	color.New(color.Bold).Println(a.Title)
	fmt.Println(faint.Sprintf("%s · %s · %s", shortID(a.ID.String()), a.Topic, a.Timestamp.Local().Format("2006-01-02 15:04")))
	fmt.Println()
	fmt.Println(a.Body)
	if url := svc.ImageURL(a); url != "" {
		fmt.Println()
		fmt.Println(faint.Sprintf("Imagen: %s", url))
	}
}

func init() {
	adviceListCmd.Flags().StringVarP(&adviceQuery, "query", "q", "", "search title and body")
	adviceListCmd.Flags().StringVar(&adviceTopic, "topic", "", "filter by topic (\"todos\" for all)")

	for _, c := range []*cobra.Command{adviceAddCmd, adviceEditCmd} {
		c.Flags().StringVar(&adviceTitle, "title", "", "advice title")
		c.Flags().StringVar(&adviceBody, "body", "", "advice text")
		c.Flags().StringVar(&adviceTopic, "topic", "", "topic")
		c.Flags().StringVar(&adviceImage, "image", "", "path to an image file")
	}
	_ = adviceAddCmd.MarkFlagRequired("title")
	_ = adviceAddCmd.MarkFlagRequired("body")

	adviceCmd.AddCommand(adviceListCmd)
	adviceCmd.AddCommand(adviceShowCmd)
	adviceCmd.AddCommand(adviceTopicsCmd)
	adviceCmd.AddCommand(adviceAddCmd)
	adviceCmd.AddCommand(adviceEditCmd)
	adviceCmd.AddCommand(adviceDeleteCmd)
	rootCmd.AddCommand(adviceCmd)
}
