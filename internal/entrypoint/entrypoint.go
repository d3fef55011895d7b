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

	"github.com/ekotlyar/kitsu-engine/internal/auth"
	"github.com/ekotlyar/kitsu-engine/internal/broadcast"
	"github.com/ekotlyar/kitsu-engine/internal/config"
	"github.com/ekotlyar/kitsu-engine/internal/database"
	"github.com/ekotlyar/kitsu-engine/internal/database/catalog"
	"github.com/ekotlyar/kitsu-engine/internal/database/conflicts"
	"github.com/ekotlyar/kitsu-engine/internal/database/jobs"
	"github.com/ekotlyar/kitsu-engine/internal/database/schedules"
	http_controllers "github.com/ekotlyar/kitsu-engine/internal/http"
	"github.com/ekotlyar/kitsu-engine/internal/ingest"
	"github.com/ekotlyar/kitsu-engine/internal/media"
	"github.com/ekotlyar/kitsu-engine/internal/notifications"
	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/scheduler"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
	"github.com/ekotlyar/kitsu-engine/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL can't be caught, so it
	// isn't registered.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task workers)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting KitsuEngine v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	jobsRepo := jobs.NewRepository(db.DB)
	catalogRepo := catalog.NewRepository(db.DB)
	conflictsRepo := conflicts.NewRepository(db.DB)
	schedulesRepo := schedules.NewRepository(db.DB)
	settings := settingsstore.New(db.DB)

	general := settings.General()

	userAgent := cfg.Providers.UserAgent
	if general.UserAgent != "" {
		userAgent = general.UserAgent
	}

	kodikKey := general.KodikAPIKey
	if kodikKey == "" {
		kodikKey = cfg.Providers.KodikAPIKey
	}
	if kodikKey == "" {
		log.Printf("WARNING: Kodik API key is not set. Delivery sync will return empty results. Set 'KODIK_API_KEY' or the general settings key to enable.")
	}

	shikimori := providers.NewShikimoriClient(cfg.Providers.ShikimoriURL, userAgent)
	kodik := providers.NewKodikClient(cfg.Providers.KodikURL, kodikKey, userAgent)

	if general.ProxyEnabled {
		log.Printf("Routing provider requests through proxy %s", general.ProxyAddress)
		shikimori.SetProxy(general.ProxyAddress)
		kodik.SetProxy(general.ProxyAddress)
	}

	images := settings.Images()
	posters := media.NewLocalizer(cfg.Media.Root, cfg.Media.StaticHost, images.ForceReprocess)

	notifier := notifications.NewNotifier(db.DB)
	hub := broadcast.NewHub()
	tokenIssuer := auth.NewIssuer(cfg.Events.TokenSecret, cfg.Events.TokenTTL)

	orchestrator := ingest.NewOrchestrator(shikimori, settings, jobsRepo, catalogRepo, conflictsRepo, hub, posters)
	releaseSyncer := ingest.NewReleaseSyncer(kodik, jobsRepo, catalogRepo, notifier)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewMetadataSyncQueue(orchestrator),
			tasks.NewReleaseSyncQueue(releaseSyncer),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("WARNING: task queue is disabled. Sync jobs will be accepted but never executed.")
	}

	dispatcher := tasks.NewQueueDispatcher(taskClient)

	// Recovery scanner for cron schedules
	var scanner *scheduler.Scanner
	if cfg.Scheduler.Enabled && cfg.Tasks.Enabled {
		scanner = scheduler.NewScanner(schedulesRepo, jobsRepo, dispatcher, cfg.Scheduler.ScanInterval)
		go scanner.Start(context.Background())
	}

	routerCfg := http_controllers.RouterConfig{
		Database:    db,
		Jobs:        jobsRepo,
		Catalog:     catalogRepo,
		Conflicts:   conflictsRepo,
		Schedules:   schedulesRepo,
		Settings:    settings,
		Dispatcher:  dispatcher,
		Hub:         hub,
		TokenIssuer: tokenIssuer,
		Metadata:    shikimori,
		Delivery:    kodik,
		MediaRoot:   cfg.Media.Root,
		Version:     version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if scanner != nil {
			scanner.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
