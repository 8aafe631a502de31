package config

import (
	"time"

	"github.com/spf13/viper"
)

type StorageBackend string

const (
	StorageBackendDatabase StorageBackend = "database" // settings table slot (default)
	StorageBackendFile     StorageBackend = "file"     // single JSON file
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Reading
		Catalog
		Covers
		Audit
		Export
		Tasks
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // sqlite file
		DSN      string // postgres connection string
		LogLevel string // silent, error, warn, info
	}
	Storage struct {
		Backend      StorageBackend
		Key          string
		FilePath     string
		WriteTimeout time.Duration
	}
	Reading struct {
		Timezone     string // IANA name used to decide what "today" is
		ActivityDays int    // Window of the activity chart
	}
	Catalog struct {
		BaseURL   string
		CoversURL string
		Timeout   time.Duration
		RateLimit time.Duration // Minimum interval between requests
	}
	Covers struct {
		Dir string
	}
	Audit struct {
		Dir       string // Empty disables request journaling
		Retention time.Duration
	}
	Export struct {
		Enabled  bool
		Dir      string
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Demo struct {
		Enabled bool // Read-only API over generated demo data
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// Location resolves the reading timezone, falling back to UTC.
func (r Reading) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", string(DatabaseDriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("storage_backend", string(StorageBackendDatabase))
	v.SetDefault("storage_key", DefaultStorageKey)
	v.SetDefault("storage_file_path", DefaultStateFilePath)
	v.SetDefault("storage_write_timeout", "5s")

	v.SetDefault("reading_timezone", "UTC")
	v.SetDefault("reading_activity_days", 30)

	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog_covers_url", DefaultCoversBaseURL)
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("catalog_rate_limit", "1s") // OpenLibrary asks for at most ~1 rps

	v.SetDefault("covers_dir", "./covers")
	v.SetDefault("audit_dir", "")
	v.SetDefault("audit_retention", "720h")

	v.SetDefault("export_enabled", false)
	v.SetDefault("export_dir", "")
	v.SetDefault("export_schedule", DefaultExportSchedule)

	v.SetDefault("demo_mode", false)

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Storage: Storage{
			Backend:      StorageBackend(v.GetString("STORAGE_BACKEND")),
			Key:          v.GetString("STORAGE_KEY"),
			FilePath:     v.GetString("STORAGE_FILE_PATH"),
			WriteTimeout: v.GetDuration("STORAGE_WRITE_TIMEOUT"),
		},
		Reading: Reading{
			Timezone:     v.GetString("READING_TIMEZONE"),
			ActivityDays: v.GetInt("READING_ACTIVITY_DAYS"),
		},
		Catalog: Catalog{
			BaseURL:   v.GetString("CATALOG_BASE_URL"),
			CoversURL: v.GetString("CATALOG_COVERS_URL"),
			Timeout:   v.GetDuration("CATALOG_TIMEOUT"),
			RateLimit: v.GetDuration("CATALOG_RATE_LIMIT"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Audit: Audit{
			Dir:       v.GetString("AUDIT_DIR"),
			Retention: v.GetDuration("AUDIT_RETENTION"),
		},
		Export: Export{
			Enabled:  v.GetBool("EXPORT_ENABLED"),
			Dir:      v.GetString("EXPORT_DIR"),
			Schedule: v.GetString("EXPORT_SCHEDULE"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
