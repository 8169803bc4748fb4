package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/expense-tracker/internal/model"
)

// Configuration keys understood by the application.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyExportPath      = "export.path"
	KeyImportPath      = "import.path"
	KeyDefaultCategory = "import.default_category"
)

// Defaults for values that are not configured.
const (
	DefaultDatabasePath = "~/.expense_tracker.sqlite3"
	DefaultExportFile   = "expenses_export.csv"
	DefaultImportFile   = "expenses_import.csv"
	EnvPrefix           = "EXPENSES"
)

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath    string
	ExportPath      string
	ImportPath      string
	DefaultCategory string
	LogLevel        string
	LogFormat       string
}

// SetDefaults registers default values and environment handling on v.
// Keys map to EXPENSES_ variables with dots replaced by underscores,
// so database.path is read from EXPENSES_DATABASE_PATH.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyDefaultCategory, model.DefaultCategory)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored and existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Resolve reads the settings from v and fills in derived paths. The
// export and import files live next to the database unless configured.
func Resolve(v *viper.Viper) Settings {
	dbPath := ExpandPath(v.GetString(KeyDatabasePath))
	if dbPath == "" {
		dbPath = ExpandPath(DefaultDatabasePath)
	}
	dir := filepath.Dir(dbPath)

	settings := Settings{
		DatabasePath:    dbPath,
		ExportPath:      ExpandPath(v.GetString(KeyExportPath)),
		ImportPath:      ExpandPath(v.GetString(KeyImportPath)),
		DefaultCategory: strings.TrimSpace(v.GetString(KeyDefaultCategory)),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
	}

	if settings.ExportPath == "" {
		settings.ExportPath = filepath.Join(dir, DefaultExportFile)
	}
	if settings.ImportPath == "" {
		settings.ImportPath = filepath.Join(dir, DefaultImportFile)
	}
	if settings.DefaultCategory == "" {
		settings.DefaultCategory = model.DefaultCategory
	}

	return settings
}
