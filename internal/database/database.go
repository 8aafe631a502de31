package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens a SQLite database at dbPath and migrates the schema.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{
		Driver: config.DatabaseDriverSQLite,
		Path:   dbPath,
	})
}

// Open connects using the configured driver and migrates the schema.
func Open(cfg config.Database) (*Database, error) {
	dialector, target, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == config.DatabaseDriverPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.AutoMigrate(&entities.Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully (%s: %s)", cfg.Driver, target)

	return &Database{DB: db}, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		if cfg.Path == "" {
			return nil, "", fmt.Errorf("database path is required for sqlite")
		}
		return sqlite.Open(cfg.Path), cfg.Path, nil
	case config.DatabaseDriverPostgres:
		if cfg.DSN == "" {
			return nil, "", fmt.Errorf("DATABASE_DSN is required for postgres")
		}
		return postgres.Open(cfg.DSN), redactDSN(cfg.DSN), nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// redactDSN keeps credentials out of the startup log.
func redactDSN(dsn string) string {
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=***"
		}
	}
	return strings.Join(fields, " ")
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
