// Package audit keeps a journal of accepted mutation requests as one JSON
// file per request.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is the envelope written for every journaled request.
type Entry struct {
	ID       string          `json:"id"`
	Action   string          `json:"action"`
	Recorded time.Time       `json:"recorded"`
	Payload  json.RawMessage `json:"payload"`
}

type Auditor struct {
	AuditDir string
	now      func() time.Time
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
		now:      time.Now,
	}
}

// Enabled reports whether journaling is configured. A nil auditor is disabled.
func (a *Auditor) Enabled() bool {
	return a != nil && a.AuditDir != ""
}

// Record journals payload under action and returns the file name.
func (a *Auditor) Record(action string, payload any) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return a.SaveJSON(Entry{
		ID:       uuid.New().String(),
		Action:   action,
		Recorded: a.now().UTC(),
		Payload:  raw,
	})
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	id := uuid.New().String()
	if entry, ok := data.(Entry); ok && entry.ID != "" {
		id = entry.ID
	}
	filename := fmt.Sprintf("%s.json", id)
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}

// DeleteOldEvents removes journal files last modified before now-retention.
func (a *Auditor) DeleteOldEvents(retention time.Duration) (int64, error) {
	if !a.Enabled() {
		return 0, nil
	}
	entries, err := os.ReadDir(a.AuditDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read audit directory: %w", err)
	}

	cutoff := a.now().Add(-retention)
	var deleted int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(a.AuditDir, entry.Name())); err != nil && !os.IsNotExist(err) {
				log.Printf("Audit: failed to remove %s: %v", entry.Name(), err)
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
