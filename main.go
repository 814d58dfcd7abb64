package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/noctiluca/rendermanager/internal/coordinator"
	"github.com/noctiluca/rendermanager/internal/handlers"
	"github.com/noctiluca/rendermanager/internal/history"
	"github.com/noctiluca/rendermanager/internal/logging"
	"github.com/noctiluca/rendermanager/internal/middleware"
	"github.com/noctiluca/rendermanager/internal/scanner"
	"github.com/noctiluca/rendermanager/internal/ticker"
	"github.com/noctiluca/rendermanager/internal/version"
)

// bindAddr and historyFile are fixed rather than read from flags or the
// environment: spec.md §6's CLI surface is "no flags; environment is not
// consulted".
const (
	bindAddr    = "0.0.0.0:8000"
	historyFile = "job_history.json"
	tickPeriod  = time.Second

	// workerRequestTimeout bounds every worker-originated request (spec.md
	// §5); the launcher-originated 30s timeout is out of scope here.
	workerRequestTimeout = 5 * time.Second
)

func main() {
	logging.InfoWithComponent(logging.ComponentStartup, "starting render manager", "version", version.String())

	store := history.NewStore(historyFile)
	state := coordinator.New(scanner.ResolveRenderDir, scanner.CountFrames, store)

	coordinatorTick := ticker.NewLoop("coordinator", tickPeriod, state.Tick)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coordinatorTick.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestID())

	heartbeatLimiter := middleware.NewIPRateLimiter(5, 10)

	api := handlers.NewAPI(state, scanner.ListFrames, "http://"+bindAddr+"/dashboard")
	api.RegisterRoutes(router)
	api.RegisterHeartbeat(router, heartbeatLimiter.Limit())

	srv := &http.Server{
		Addr:              bindAddr,
		Handler:           router,
		ReadTimeout:       workerRequestTimeout,
		ReadHeaderTimeout: workerRequestTimeout,
		WriteTimeout:      workerRequestTimeout,
	}

	go func() {
		logging.InfoWithComponent(logging.ComponentStartup, "listening", "addr", bindAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.InfoWithComponent(logging.ComponentStartup, "shutting down")

	coordinatorTick.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	logging.InfoWithComponent(logging.ComponentStartup, "stopped")
}
