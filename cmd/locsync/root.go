package main

import (
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/internal/config"
	"github.com/locsync/locsync/internal/database"
	"github.com/locsync/locsync/internal/logging"
)

var (
	configFile string
	dbPath     string
	dbDriver   string
	logLevel   string
	logFormat  string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "locsync",
	Short:         "locsync - reconcile translation files with a localization store",
	Long:          "locsync imports TMX, TXML, XLIFF and TCSV files into a localization store, reviews translations and reports what is missing.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if dbDriver != "" {
			cfg.Database.Driver = dbDriver
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
			cfg.Database.DSN = ""
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logging.Configure(&logging.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cfg.Log.Output,
		})
		logger := logging.Default().With().Str("command", cmd.Name()).Logger()
		cmd.SetContext(logging.WithLogger(cmd.Context(), &logger))

		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/locsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file, or :memory:")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console, json or auto")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newApproveCmd())
	rootCmd.AddCommand(newUnapproveCmd())
	rootCmd.AddCommand(newRejectCmd())
	rootCmd.AddCommand(newAmendCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newMissingCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newMCPCmd())
}

func openDB() (*database.Context, error) {
	return database.CreateDatabase(database.OptionsFromConfig(appConfig))
}
