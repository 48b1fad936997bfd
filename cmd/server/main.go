package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dvhs/alumnirank/internal/api"
	"github.com/dvhs/alumnirank/internal/config"
	"github.com/dvhs/alumnirank/internal/db"
	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/metrics"
	"github.com/dvhs/alumnirank/internal/pairing"
	"github.com/dvhs/alumnirank/internal/repository/sqlite"
	"github.com/dvhs/alumnirank/internal/services"
	"github.com/dvhs/alumnirank/internal/stream"
	"github.com/dvhs/alumnirank/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("AlumniRank Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("redis_addr=%s", cfg.RedisAddr)
	log.Debug("rating_k=%d", cfg.RatingK)
	log.Debug("pair_exclusion_size=%d", cfg.PairExclusionSize)
	log.Debug("leaderboard_limit=%d", cfg.LeaderboardLimit)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("prefetch_worker_count=%d", cfg.PrefetchWorkerCount)
	log.Debug("prefetch_queue_size=%d", cfg.PrefetchQueueSize)
	log.Debug("vote_timeout_ms=%d", cfg.VoteTimeoutMS)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	profileRepo := sqlite.NewProfileRepository(database.DB)
	voteRepo := sqlite.NewVoteRepository(database.DB)
	searchQueryRepo := sqlite.NewSearchQueryRepository(database.DB)

	// Pair exclusion cache: Redis when configured, in-process otherwise.
	var redisClient *redis.Client
	var exclusion pairing.ExclusionCache
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			pingCancel()
			log.Error("failed to reach redis at %s: %v", cfg.RedisAddr, err)
			os.Exit(1)
		}
		pingCancel()
		defer redisClient.Close()
		exclusion = pairing.NewRedisExclusionCache(redisClient, cfg.PairExclusionSize)
		log.Info("using redis exclusion cache at %s", cfg.RedisAddr)
	} else {
		exclusion = pairing.NewMemoryExclusionCache(cfg.PairExclusionSize)
		log.Info("using in-memory exclusion cache")
	}

	// Worker pools
	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	prefetchPool := worker.NewPool(cfg.PrefetchWorkerCount, cfg.PrefetchQueueSize)

	selector := pairing.NewSelector(profileRepo, exclusion, prefetchPool)

	// Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New()
	if err := m.Register(registry); err != nil {
		log.Error("failed to register metrics: %v", err)
		os.Exit(1)
	}

	bus := stream.NewBus()

	// Initialize services
	profileService := services.NewProfileService(profileRepo, voteRepo)
	voteService := services.NewVoteService(
		profileRepo, voteRepo, selector, bus, m,
		cfg.RatingK, time.Duration(cfg.VoteTimeoutMS)*time.Millisecond,
	)
	leaderboardService := services.NewLeaderboardService(profileRepo, voteRepo, cfg.LeaderboardLimit)
	searchService := services.NewSearchService(profileRepo, searchQueryRepo, m)
	importService := services.NewImportService(profileRepo, importPool, m)

	srv := &api.Server{
		DB:                 database.DB,
		ProfileService:     profileService,
		VoteService:        voteService,
		LeaderboardService: leaderboardService,
		SearchService:      searchService,
		ImportService:      importService,
		Bus:                bus,
		Metrics:            m,
		Registry:           registry,
		AdminToken:         cfg.AdminToken,
		LeaderboardLimit:   cfg.LeaderboardLimit,
	}

	ctx, cancel := context.WithCancel(context.Background())
	importPool.Start(ctx)
	prefetchPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Cancel worker context
	log.Debug("stopping worker pools")
	cancel()

	// Shutdown HTTP server
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Wait for workers to finish
	log.Debug("stopping import pool")
	importPool.Stop()
	log.Debug("stopping prefetch pool")
	prefetchPool.Stop()

	log.Info("===========================================")
	log.Info("AlumniRank Server Stopped")
	log.Info("===========================================")
}
