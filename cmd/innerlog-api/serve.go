package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/innerlog/backend/internal/analytics"
	"github.com/JonnyWalker81/innerlog/backend/internal/config"
	"github.com/JonnyWalker81/innerlog/backend/internal/handlers"
	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/middleware"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
	"github.com/JonnyWalker81/innerlog/backend/internal/storage"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port != "" {
		cfg.Server.Port = port
	}

	log, err := logger.New(logger.Config{
		Level:     logger.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		Backend:   cfg.Log.Backend,
		AddSource: cfg.Server.Env != "production",
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetDefault(log)
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	log.Info("starting innerlog-api",
		logger.String("env", cfg.Server.Env),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("auth", cfg.Auth.Mode),
		logger.String("timezone", loc.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var supabaseClient *supabase.Client
	if cfg.Supabase.URL != "" {
		supabaseClient = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	}

	repos, err := storage.Open(cfg.Storage, supabaseClient)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer repos.Close()

	checks := map[string]handlers.Checker{}
	var locker lock.Locker = lock.NewKeyed()
	if cfg.Redis.Enabled {
		redisLocker, err := lock.NewRedisLocker(ctx, lock.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.LockTTL,
		})
		if err != nil {
			return err
		}
		defer redisLocker.Close()
		locker = redisLocker
		checks["redis"] = redisLocker.Ping
		log.Info("using redis streak lock", logger.String("addr", cfg.Redis.Addr))
	}

	// Initialize services
	achievementService := service.NewAchievementService(repos.Achievements, repos.Events, repos.Streaks,
		service.WithLocker(locker))
	streakService := service.NewStreakService(repos.Streaks, achievementService, locker,
		analytics.StreakPolicy{MaxGracePerMonth: cfg.Engine.MaxGracePerMonth})
	activityService := service.NewActivityService(repos.Events, streakService, achievementService)
	checkInService := service.NewCheckInService(repos.CheckIns, activityService)
	analyticsService := service.NewAnalyticsService(repos.Events, repos.CheckIns, streakService, achievementService,
		service.EngineConfig{
			DefaultMinOccurrences: cfg.Engine.DefaultMinOccurrences,
			DefaultInsightLimit:   cfg.Engine.DefaultInsightLimit,
		})

	// Initialize handlers
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}
	params := handlers.Params{Location: loc, DefaultWindowDays: cfg.Engine.DefaultWindowDays}
	api := handlers.Handlers{
		Streak:      handlers.NewStreakHandler(streakService, params),
		Achievement: handlers.NewAchievementHandler(achievementService),
		Activity:    handlers.NewActivityHandler(activityService, params),
		CheckIn:     handlers.NewCheckInHandler(checkInService, params),
		Analytics:   handlers.NewAnalyticsHandler(analyticsService, params),
		Insights:    handlers.NewInsightsHandler(analyticsService, params),
	}
	health := handlers.NewHealthHandler(cfg.Server.Env, cfg.Storage.Driver, checks)

	production := cfg.Server.Env == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(production))

	router.GET("/health", health.Health)

	v1 := router.Group("/api/v1")
	if cfg.Auth.Mode == config.AuthSupabase {
		v1.Use(middleware.Auth(supabaseClient))
	} else {
		v1.Use(middleware.HeaderAuth())
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute, "api")
		defer limiter.Stop()
		v1.Use(middleware.RateLimit(limiter))
	}
	v1.Use(middleware.Idempotency(repos.Idempotency))
	handlers.RegisterRoutes(v1, api)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info("server stopped")
	return nil
}
