// ABOUTME: Root Cobra command for vitals CLI.
// ABOUTME: Builds logger, config and tracker service in PersistentPreRunE; closes them after.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/config"
	"github.com/harperreed/vitals/internal/events"
	"github.com/harperreed/vitals/internal/logging"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose bool

	logger *log.Logger
	cfg    *config.Config
	issuer *auth.Issuer
	svc    *tracker.Service
)

var rootCmd = &cobra.Command{
	Use:     "vitals",
	Short:   "Personal vital signs tracker",
	Version: version,
	Long: `Vitals records vital-sign measurements, shows history and statistics,
computes BMI, and hosts a small health advice feed.

WHAT IT TRACKS:

  ritmo_cardiaco     heart rate (ppm)
  presion_arterial   blood pressure, systolic/diastolic (mmHg), alias "bp"
  nivel_azucar       blood sugar (mg/dL)
  colesterol         cholesterol (mg/dL)
  oxigeno_sangre     blood oxygen (%)
  peso               weight (kg)
  altura             height (cm)

QUICK START:

  $ vitals user register --name ana --email ana@example.com
  $ vitals user login ana
  $ vitals add peso 70.5              # Log your weight
  $ vitals add bp 120 80              # Log blood pressure
  $ vitals dashboard                  # Latest reading of each kind
  $ vitals stats                      # Averages, min and max
  $ vitals bmi                        # Body mass index

ADMINISTRATION:

  $ vitals admin bootstrap            # Create the first administrator
  $ vitals admin users maria          # Search accounts
  $ vitals advice add --title ... --body ... --image foto.png

CONFIGURATION:

  Settings live in ~/.config/vitals/config.json and can be overridden by
  VITALS_* environment variables or a .env file in the working directory.
  Data is stored at ~/.local/share/vitals/vitals.db by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "install-skill" {
			return nil
		}
		return setup(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

// Execute runs the root command. The tracker service is closed even when
// the command fails, since Cobra skips post-run hooks on error.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

func setup(ctx context.Context) error {
	logger = logging.New(os.Stderr, verbose)

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureSecret(); err != nil {
		return fmt.Errorf("failed to create signing secret: %w", err)
	}

	issuer, err = auth.NewIssuer(cfg.Secret, cfg.GetSessionTTL())
	if err != nil {
		return err
	}

	repo, err := cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	logger.Debug("storage opened", "backend", cfg.GetBackend())

	images, err := cfg.OpenImages(ctx)
	if err != nil {
		logger.Warn("image storage unavailable", "err", err)
	}

	publisher, err := cfg.OpenPublisher()
	if err != nil {
		logger.Warn("measurement events disabled", "err", err)
		publisher = events.NopPublisher{}
	}

	svc = tracker.New(repo, tracker.Options{
		Logger:    logger,
		Publisher: publisher,
		Images:    images,
		Issuer:    issuer,
	})
	return nil
}

func teardown() error {
	if svc == nil {
		return nil
	}
	err := svc.Close()
	svc = nil
	return err
}

// currentSession loads the logged-in session.
func currentSession() (*auth.Session, error) {
	sess, err := auth.LoadSession(auth.SessionPath(), issuer)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
