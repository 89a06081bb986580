package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"raindrip/internal/api"
	"raindrip/internal/config"
	errs "raindrip/internal/errors"
	"raindrip/internal/logging"
	"raindrip/internal/version"
)

var (
	// dryRunFlag is the global --dry-run flag value
	dryRunFlag bool
	// formatFlag is the global --format flag value
	formatFlag string
	// verboseFlag is the global --verbose flag value
	verboseFlag bool

	// settings are loaded once per invocation in the root PersistentPreRunE.
	settings = config.DefaultSettings()
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "raindrip",
	Short: "raindrip - AI-native CLI for Raindrop.io",
	Long: `raindrip is a standalone CLI client for the Raindrop.io bookmarking
service, optimized for consumption by AI agents. Output defaults to TOON, a
compact tabular serialization; use --format json, --format yaml or --pretty
on listing commands for other shapes.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return errs.NewInternalError(err)
		}
		settings, err = config.LoadSettings(dir)
		if err != nil {
			return errs.NewValidationError(err.Error(), "Fix or remove settings.toml and retry.")
		}
		if !cmd.Flags().Changed("format") {
			formatFlag = settings.OutputFormat
		}
		switch formatFlag {
		case "toon", "json", "yaml":
		default:
			return errs.NewValidationError("unknown output format "+formatFlag, "Use --format toon, json or yaml.")
		}

		level := logging.LogLevel(settings.LogLevel)
		if verboseFlag {
			level = logging.DebugLevel
		}
		logger = logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: level})
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate("raindrip version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false,
		"Log mutating actions instead of issuing real API requests")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "toon",
		"Output format: toon, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")
}

// configDir resolves the config directory. RAINDRIP_CONFIG_DIR overrides
// the default ~/.config/raindrip.
func configDir() (string, error) {
	if dir := os.Getenv("RAINDRIP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	return config.DefaultDir()
}

// newContext returns a context cancelled by SIGINT/SIGTERM so an
// interrupt aborts the in-flight request.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newClient builds an API client for token with the invocation's
// dry-run and settings applied.
func newClient(token string) *api.Client {
	return api.New(token, api.Options{
		Timeout:  time.Duration(settings.TimeoutSeconds) * time.Second,
		DryRun:   dryRunFlag,
		PageSize: settings.PageSize,
		Logger:   logger,
	})
}

// parseID parses a numeric command argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, errs.NewValidationError("invalid ID "+strconv.Quote(arg), "IDs are numeric, e.g. 123456.")
	}
	return id, nil
}

// requireClient loads the stored token and builds a client, failing with
// an auth error when the user never logged in.
func requireClient() (*api.Client, error) {
	dir, err := configDir()
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	creds, err := config.LoadCredentials(dir)
	if err != nil {
		return nil, errs.NewInternalError(err)
	}
	if creds.Token == "" {
		return nil, errs.NewAuthError("Not logged in. Run `raindrip login` first.")
	}
	return newClient(creds.Token), nil
}
