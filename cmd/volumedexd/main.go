package main

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
	"github.com/prometheus/client_golang/prometheus"

	v1 "github.com/volumedex/volumedex/internal/api/v1"
	"github.com/volumedex/volumedex/internal/config"
	"github.com/volumedex/volumedex/internal/desktop"
	"github.com/volumedex/volumedex/internal/hasher"
	"github.com/volumedex/volumedex/internal/metrics"
	"github.com/volumedex/volumedex/internal/notifier"
	"github.com/volumedex/volumedex/internal/orchestrator"
	"github.com/volumedex/volumedex/internal/scanner"
	"github.com/volumedex/volumedex/internal/search"
	"github.com/volumedex/volumedex/internal/store"
	"github.com/volumedex/volumedex/internal/thumbnails"
	"github.com/volumedex/volumedex/internal/volumes"
	"github.com/volumedex/volumedex/internal/websocket"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.Server.Mode)

	logger := log.New(os.Stdout, "[volumedexd] ", log.LstdFlags)

	idxStore, err := store.New(&cfg.Store, logger)
	if err != nil {
		log.Fatalf("failed to open index store: %v", err)
	}
	defer idxStore.Close()

	watcher := volumes.New(volumes.NewPOSIXLister(), cfg.Watcher, logger)
	changeNotifier := notifier.New(cfg.Notifier, cfg.NotifierRules, logger)
	vscanner := scanner.New(idxStore.Files, idxStore.Volumes, cfg.Scan, logger)
	fileHasher := hasher.New(idxStore.Hashes, watcher, cfg.Hasher, logger)
	thumbCache := thumbnails.New(idxStore.Thumbnails, watcher, thumbnails.NewImageRenderer(), cfg.Thumbnail, logger)
	searchService := search.New(idxStore.Search, watcher, search.DefaultConfig())
	userNotifier := desktop.New()

	orch := orchestrator.New(
		watcher,
		changeNotifier,
		vscanner,
		idxStore.Volumes,
		idxStore,
		fileHasher,
		thumbCache,
		userNotifier,
		cfg.Orchestrator,
		logger,
	)

	collector := metrics.New("volumedex", "scan", prometheus.Labels{"instance": "daemon"})
	orch.SetMetrics(collector)
	fileHasher.SetMetrics(collector)
	thumbCache.SetMetrics(collector)
	searchService.SetMetrics(collector)

	hub := websocket.NewHub()
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher.Start(ctx)
	go orch.Run(ctx)
	go relayOrchestratorEvents(ctx, orch, hub)

	router := v1.NewRouter(v1.Deps{
		Store:        idxStore,
		Volumes:      idxStore.Volumes,
		Files:        idxStore.Files,
		Connectivity: watcher,
		Orchestrator: orch,
		Search:       searchService,
		Hub:          hub,
	}, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Engine(),
	}

	go func() {
		log.Printf("volumedexd listening on %s:%s", cfg.Server.Host, cfg.Server.Port)
		var err error
		if cfg.TLS.Enabled {
			err = srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	cancel()
	watcher.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("exited gracefully")
}

// relayOrchestratorEvents bridges drive mount/unmount transitions and scan
// progress/completion to the WebSocket feed (spec.md §4.2, §4.5).
func relayOrchestratorEvents(ctx context.Context, orch *orchestrator.Orchestrator, hub *websocket.Hub) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-orch.DriveEvents():
			if !ok {
				return
			}
			hub.BroadcastDriveEvent(websocket.DriveEventData{
				ID:        ev.Volume.ID,
				Mounted:   ev.Kind == volumes.Mounted,
				MountPath: ev.Volume.MountPath,
			})
		case p, ok := <-orch.Progress():
			if !ok {
				return
			}
			hub.BroadcastScanProgress(p.VolumeID, websocket.ScanProgressData{
				EntriesProcessed: p.EntriesProcessed,
				CurrentPath:      p.CurrentPath,
			})
		case c, ok := <-orch.Completions():
			if !ok {
				return
			}
			if c.Err != nil {
				hub.BroadcastScanError(c.VolumeID, c.Err.Error())
				continue
			}
			hub.BroadcastScanComplete(c.VolumeID, c.FileCount)
		}
	}
}
