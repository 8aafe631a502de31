package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/covers"
	http_controllers "github.com/mrlokans/readinglog/internal/http"
	"github.com/mrlokans/readinglog/internal/metadata"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/settingsstore"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// auditPruneSchedule is when old journal entries are removed.
const auditPruneSchedule = "@daily"

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after in-flight requests have finished.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting ReadingLog v%s", version)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	rt, err := Open(rootCtx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Create auditor for saving accepted mutation requests
	auditor := audit.NewAuditor(cfg.Audit.Dir)
	if auditor.Enabled() {
		log.Printf("Request journal enabled at %s", cfg.Audit.Dir)
	}

	catalog := metadata.NewOpenLibraryClient(cfg.Catalog)
	enricher := metadata.NewEnricher(catalog, rt.Store)

	// Create cover cache for locally caching book covers
	var coverCache *covers.Cache
	if cfg.Covers.Dir != "" {
		coverCache, err = covers.NewCache(cfg.Covers.Dir)
		if err != nil {
			log.Printf("WARNING: Failed to initialize cover cache: %v", err)
			coverCache = nil
		} else {
			log.Printf("Cover cache initialized at %s", cfg.Covers.Dir)
			enricher.SetCoverInvalidator(coverCache)
		}
	}

	settings := settingsstore.New(rt.DB)
	exportScheduler := scheduler.NewExportScheduler(settings, rt.Store, auditor)
	if err := exportScheduler.Start(rootCtx); err != nil {
		log.Printf("WARNING: Export scheduler not started: %v", err)
	}

	taskCfg := tasks.FromConfig(cfg.Tasks)
	if cfg.Audit.Retention > 0 {
		taskCfg.AuditRetention = cfg.Audit.Retention
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}

		taskClient.Register(
			tasks.NewEnrichBookQueue(enricher),
			tasks.NewEnrichShelfQueue(enricher),
			tasks.NewPruneAuditJournalQueue(auditor, taskCfg.AuditRetention),
		)
		if coverCache != nil {
			taskClient.Register(tasks.NewCacheCoverQueue(coverCache))
		}

		go taskClient.Start(rootCtx)
	}

	if cfg.Demo.Enabled {
		log.Println("Demo mode enabled: API writes are disabled")
	}

	periodic := scheduler.NewPeriodic()
	if auditor.Enabled() {
		prune := func() {
			if taskClient != nil {
				if _, err := taskClient.Enqueue(tasks.PruneAuditJournalTask{Retention: taskCfg.AuditRetention}); err != nil {
					log.Printf("Tasks: failed to enqueue journal pruning: %v", err)
				}
				return
			}
			if _, err := auditor.DeleteOldEvents(taskCfg.AuditRetention); err != nil {
				log.Printf("Audit: failed to prune journal: %v", err)
			}
		}
		if err := periodic.Add("prune_audit_journal", auditPruneSchedule, prune); err != nil {
			log.Printf("WARNING: %v", err)
		}
	}
	periodic.Start()

	routerCfg := http_controllers.RouterConfig{
		Store:           rt.Store,
		Database:        rt.DB,
		Journal:         auditor,
		Catalog:         catalog,
		ExportSettings:  settings,
		ExportScheduler: exportScheduler,
		ActivityDays:    cfg.Reading.ActivityDays,
		DemoMode:        cfg.Demo.Enabled,
		Version:         version,
	}
	// Leave optional dependencies unset rather than wrapping nil pointers.
	if coverCache != nil {
		routerCfg.CoverCache = coverCache
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		periodic.Stop()
		exportScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}
		cancelRoot()
		if err := rt.Close(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}

	Serve(router, cfg, onShutdown)
}
