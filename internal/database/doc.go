// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	└── settings/        # Key/value settings, including the reading state slot
//
// # Usage
//
//	db, err := database.Open(cfg.Database)
//	repo := settings.NewRepository(db.DB)
//	err = repo.SetSetting(entities.SettingKeyExportDir, "/vault/Reading")
//
// The reading state itself is stored as a single JSON document under one
// settings key. See internal/storage for the adapter that owns it.
package database
