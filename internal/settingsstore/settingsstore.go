// Package settingsstore resolves runtime-editable settings. Each value comes
// from the settings table when present, then the environment, then a
// built-in default.
package settingsstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/database/settings"
	"github.com/mrlokans/readinglog/internal/entities"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

// Priority: database > environment > default
type SettingsStore struct {
	repo *settings.Repository
	now  func() time.Time
}

func New(db *database.Database) *SettingsStore {
	return &SettingsStore{repo: settings.NewRepository(db.DB), now: time.Now}
}

// ExportConfig is the effective reading-log export configuration.
type ExportConfig struct {
	Enabled  bool   `json:"enabled"`
	Dir      string `json:"dir"`
	Schedule string `json:"schedule"`
}

// ExportConfigInfo includes source information for each field
type ExportConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Dir       string `json:"dir"`
	DirSource string `json:"dir_source"`

	Schedule            string `json:"schedule"`
	ScheduleSource      string `json:"schedule_source"`
	ScheduleDescription string `json:"schedule_description"`

	NextRun *time.Time   `json:"next_run,omitempty"`
	Status  ExportStatus `json:"status"`
}

// ExportStatus represents the outcome of the last export run.
type ExportStatus struct {
	LastAt  *time.Time `json:"last_at,omitempty"`
	Status  string     `json:"status,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ExportUpdate carries the fields to override; nil leaves a field unchanged.
type ExportUpdate struct {
	Enabled  *bool
	Dir      *string
	Schedule *string
}

// resolve returns the value and where it came from.
func (s *SettingsStore) resolve(key, envName, def string) (string, string) {
	value, ok, err := s.repo.GetValue(key)
	if err != nil {
		log.Printf("Settings: failed to read %s: %v", key, err)
	}
	if ok && value != "" {
		return value, SourceDatabase
	}
	if envVal := os.Getenv(envName); envVal != "" {
		return envVal, SourceEnvironment
	}
	return def, SourceDefault
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// GetExportConfig returns the effective configuration
func (s *SettingsStore) GetExportConfig() ExportConfig {
	enabled, _ := s.resolve(entities.SettingKeyExportEnabled, "EXPORT_ENABLED", "false")
	dir, _ := s.resolve(entities.SettingKeyExportDir, "EXPORT_DIR", "")
	schedule, _ := s.resolve(entities.SettingKeyExportSchedule, "EXPORT_SCHEDULE", config.DefaultExportSchedule)
	return ExportConfig{
		Enabled:  parseBool(enabled),
		Dir:      dir,
		Schedule: schedule,
	}
}

// GetExportConfigInfo returns the configuration with source information
func (s *SettingsStore) GetExportConfigInfo() ExportConfigInfo {
	enabled, enabledSource := s.resolve(entities.SettingKeyExportEnabled, "EXPORT_ENABLED", "false")
	dir, dirSource := s.resolve(entities.SettingKeyExportDir, "EXPORT_DIR", "")
	schedule, scheduleSource := s.resolve(entities.SettingKeyExportSchedule, "EXPORT_SCHEDULE", config.DefaultExportSchedule)

	info := ExportConfigInfo{
		Enabled:             parseBool(enabled),
		EnabledSource:       enabledSource,
		Dir:                 dir,
		DirSource:           dirSource,
		Schedule:            schedule,
		ScheduleSource:      scheduleSource,
		ScheduleDescription: GetCronDescription(schedule),
		Status:              s.GetExportStatus(),
	}
	if info.Enabled {
		if next, err := NextRunAfter(schedule, s.now()); err == nil {
			info.NextRun = &next
		}
	}
	return info
}

// UpdateExportConfig validates and saves overrides in one transaction.
func (s *SettingsStore) UpdateExportConfig(update ExportUpdate) error {
	values := make(map[string]string)
	if update.Enabled != nil {
		values[entities.SettingKeyExportEnabled] = strconv.FormatBool(*update.Enabled)
	}
	if update.Dir != nil {
		values[entities.SettingKeyExportDir] = strings.TrimSpace(*update.Dir)
	}
	if update.Schedule != nil {
		schedule := strings.TrimSpace(*update.Schedule)
		if err := ValidateCronSchedule(schedule); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, schedule, err)
		}
		values[entities.SettingKeyExportSchedule] = schedule
	}
	if len(values) == 0 {
		return nil
	}
	return s.repo.SetSettings(values)
}

// ClearExportConfig clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearExportConfig() error {
	for _, key := range []string{
		entities.SettingKeyExportEnabled,
		entities.SettingKeyExportDir,
		entities.SettingKeyExportSchedule,
	} {
		if err := s.repo.DeleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}

// GetExportStatus returns the last export status
func (s *SettingsStore) GetExportStatus() ExportStatus {
	status := ExportStatus{}

	if value, ok, _ := s.repo.GetValue(entities.SettingKeyExportLastAt); ok && value != "" {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastAt = &ts
		}
	}
	if value, ok, _ := s.repo.GetValue(entities.SettingKeyExportLastStatus); ok {
		status.Status = value
	}
	if value, ok, _ := s.repo.GetValue(entities.SettingKeyExportLastMessage); ok {
		status.Message = value
	}

	return status
}

// SetExportStatus records the outcome of an export run.
func (s *SettingsStore) SetExportStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyExportLastAt:      s.now().UTC().Format(time.RFC3339),
		entities.SettingKeyExportLastStatus:  status,
		entities.SettingKeyExportLastMessage: message,
	})
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("empty schedule")
	}
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *", "@hourly":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *", "@daily", "@midnight":
		return "Daily at midnight"
	case "0 0 * * 0", "@weekly":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// NextRunAfter calculates when the schedule fires next after t.
func NextRunAfter(schedule string, t time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t), nil
}
