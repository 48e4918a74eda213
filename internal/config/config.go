// Package config resolves where locsync keeps its data and loads runtime
// settings from .env files, environment variables and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/locsync/locsync/internal/errors"
)

const (
	appName   = "locsync"
	envPrefix = "LOCSYNC"

	// DriverSQLite selects the embedded modernc SQLite store.
	DriverSQLite = "sqlite"
	// DriverPostgres selects a PostgreSQL server through pgx.
	DriverPostgres = "postgres"
)

// pgEnv lists the libpq variables that must be present when connecting to
// PostgreSQL without an explicit DSN.
var pgEnv = []string{"PGUSER", "PGHOST", "PGDATABASE", "PGPASSWORD"}

// GetDataDir resolves the base directory for locsync storage. LOCSYNC_DIR
// wins, then the XDG data home, then ~/.local/share.
func GetDataDir() string {
	if explicit := os.Getenv("LOCSYNC_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the path of the default SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "locsync.db")
}

// GetConfigDir returns the directory searched for config.yaml.
func GetConfigDir() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName)
}

// Config is the resolved runtime configuration.
type Config struct {
	ConfigFile  string
	Database    DatabaseConfig
	DefaultUser string
	Log         LogConfig
	Import      ImportConfig
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string
	// DSN is used verbatim when set. For postgres an empty DSN defers to the PG* variables.
	DSN string
	// Path is the SQLite file, or ":memory:".
	Path string
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// ImportConfig holds reader and batch defaults.
type ImportConfig struct {
	ColSep     string
	Language   string
	OutcomeLog string
}

// Load reads configuration in order of precedence: environment variables,
// .env files, the config file, then defaults. An explicit configFile must exist.
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	_ = v.BindEnv("import.col_sep", envPrefix+"_IMPORT_COL_SEP", "COL_SEP")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", fmt.Sprintf("read %s", configFile), err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(GetConfigDir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "read config file", err)
			}
		}
	}

	cfg := &Config{
		ConfigFile: v.ConfigFileUsed(),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			DSN:    v.GetString("database.dsn"),
			Path:   v.GetString("database.path"),
		},
		DefaultUser: v.GetString("default_user"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Import: ImportConfig{
			ColSep:     v.GetString("import.col_sep"),
			Language:   v.GetString("import.language"),
			OutcomeLog: v.GetString("import.outcome_log"),
		},
	}

	if cfg.Database.Driver == DriverSQLite && cfg.Database.Path == "" && cfg.Database.DSN == "" {
		cfg.Database.Path = GetDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			var missing []string
			for _, key := range pgEnv {
				if os.Getenv(key) == "" {
					missing = append(missing, key)
				}
			}
			if len(missing) > 0 {
				return errors.NewConfigError("database",
					fmt.Sprintf("set database.dsn or the environment variables %s", strings.Join(missing, ", ")), nil)
			}
		}
	default:
		return errors.NewConfigError("database", fmt.Sprintf("unsupported driver %q (valid values: sqlite, postgres)", c.Database.Driver), nil)
	}

	if strings.TrimSpace(c.DefaultUser) == "" {
		return errors.NewConfigError("default_user", "must not be empty", nil)
	}

	if utf8.RuneCountInString(c.Import.ColSep) != 1 {
		return errors.NewConfigError("import.col_sep", fmt.Sprintf("must be a single character, got %q", c.Import.ColSep), nil)
	}

	return nil
}

// ColSepRune returns the column separator as a rune.
func (c *Config) ColSepRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Import.ColSep)
	return r
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.path", "")
	v.SetDefault("default_user", "admin")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("import.col_sep", ";")
	v.SetDefault("import.language", "")
	v.SetDefault("import.outcome_log", "")
}

// loadEnvFiles loads .env then .env.local from the working directory.
// Existing environment variables are never overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
