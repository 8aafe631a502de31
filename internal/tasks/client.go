// Package tasks runs catalog work in the background on a backlite queue
// backed by its own sqlite database.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the background queue used for cover caching and catalog
// maintenance. It keeps a private sqlite handle so queue writes never contend
// with the catalog connection pool.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.RWMutex
	started bool
}

// TasksDBPath places the queue database next to mainDBPath with a "-tasks" suffix.
func TasksDBPath(mainDBPath string) string {
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-tasks"+ext)
}

// withDefaults fills every zero field from DefaultConfig. backlite treats a
// zero ReleaseAfter as "reclaim immediately" and a zero CleanupInterval as a
// busy ticker, so neither may reach it.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = def.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = def.CleanupInterval
	}
	if c.AuditRetention <= 0 {
		c.AuditRetention = def.AuditRetention
	}
	return c
}

// NewClient opens the queue database for the catalog at mainDBPath and
// installs the backlite schema.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	queuePath := TasksDBPath(mainDBPath)

	db, err := sql.Open("sqlite3", queuePath+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open queue database %s: %w", queuePath, err)
	}
	// One connection per worker plus headroom for Enqueue and Status calls.
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &stdLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install queue schema: %w", err)
	}

	return &Client{client: queue, db: db, config: cfg}, nil
}

// Config reports the effective settings after defaults were applied.
func (c *Client) Config() Config {
	return c.config
}

// Register adds queues; it has no effect once Start has run.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start runs the workers until ctx is done or Stop is called. Calling it a
// second time does nothing.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	log.Printf("Tasks: %d workers processing background jobs", c.config.Workers)
	c.client.Start(ctx)
}

// Stop drains in-flight jobs and reports whether they all finished before
// ctx expired.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	log.Println("Tasks: draining background jobs")
	drained := c.client.Stop(ctx)
	if !drained {
		log.Println("Tasks: shutdown deadline reached, unfinished jobs resume on next start")
		return false
	}
	log.Println("Tasks: background jobs drained")
	return true
}

// Close closes the queue database.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// Enqueue saves a single task and returns its ID.
func (c *Client) Enqueue(task backlite.Task) (string, error) {
	ids, err := c.client.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue task: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("enqueue task: no id returned")
	}
	return ids[0], nil
}

// StatusString maps a backlite status to its API name.
func StatusString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// stdLogger routes backlite's own messages through the process logger.
type stdLogger struct{}

func (l *stdLogger) Info(message string, params ...any) {
	log.Printf("Tasks queue: "+message, params...)
}

func (l *stdLogger) Error(message string, params ...any) {
	log.Printf("Tasks queue error: "+message, params...)
}
