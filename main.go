package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	game "github.com/CodeAndHammer/mysterybox/internal/game"
	metrics "github.com/CodeAndHammer/mysterybox/internal/metrics"
	middleware "github.com/CodeAndHammer/mysterybox/internal/middleware"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
	server "github.com/CodeAndHammer/mysterybox/internal/server"
	store "github.com/CodeAndHammer/mysterybox/internal/store"
	util "github.com/CodeAndHammer/mysterybox/internal/util"
)

const defaultFrontendOrigin = "https://tour-arcade-mystery.vercel.app"

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	if err := util.InitLogger(isProduction, util.GetEnvString("LOG_LEVEL", "info")); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer util.SyncLogger()
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	util.LogInfo("Starting mystery box backend in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver := util.GetEnvString("STORE_DRIVER", constants.StoreDriverFile)
	stateStore, err := store.Open(ctx, driver,
		util.GetEnvString("GAME_FILE", "./data/gameState.json"),
		util.GetEnvString("SQLITE_PATH", "./data/game.db"))
	if err != nil {
		util.LogFatal("Failed to open %s store: %v", driver, err)
	}
	defer stateStore.Close()

	manager := game.NewManager(stateStore)
	if err := manager.Initialize(ctx); err != nil {
		util.LogFatal("Failed to initialize game: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gameMetrics := metrics.New("mysterybox", reg)
	state, err := manager.Snapshot(ctx)
	if err != nil {
		util.LogFatal("Failed to read game state: %v", err)
	}
	gameMetrics.SyncState(state)

	app := &models.App{
		Game:           manager,
		Metrics:        gameMetrics,
		LimiterMap:     make(map[string]*models.RateLimiterEntry),
		IsProduction:   isProduction,
		StartTime:      time.Now(),
		AllowedOrigins: util.GetEnvList("FRONTEND_ORIGIN", []string{defaultFrontendOrigin}),
		StoreDriver:    driver,
		RateLimitRPS:   util.GetEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: util.GetEnvInt("RATE_LIMIT_BURST", 10),
		RateLimiterTTL: util.GetEnvDuration("RATE_LIMITER_TTL", 1*time.Hour),
	}
	util.LogInfo("Allowing cross-origin requests from %v", app.AllowedOrigins)

	router := server.NewRouter(app, reg)

	middleware.StartCleanupRoutine(ctx, app, 30*time.Minute)

	startServer(ctx, router)
}

func startServer(ctx context.Context, router *gin.Engine) {
	port := util.GetEnvString("PORT", "5000")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Backend running on port %s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		util.LogFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
}
