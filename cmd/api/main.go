package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"paper_summaries_go_backend/cmd/api/config"
	"paper_summaries_go_backend/internal/api"
	"paper_summaries_go_backend/internal/database"
	"paper_summaries_go_backend/internal/models"
	"paper_summaries_go_backend/internal/services"
	"paper_summaries_go_backend/internal/utils/broker"
	"paper_summaries_go_backend/internal/wsocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paperServiceDB, closeStore := openStore(ctx, cfg)
	defer closeStore()

	var queryCache services.QueryCache
	if cfg.RedisAddr != "" {
		redisClient, err := database.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize query cache")
		}
		defer redisClient.Close()
		queryCache = services.NewRedisQueryCache(redisClient, cfg.QueryCacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Query cache enabled")
	}

	messageBroker := broker.NewBroker[models.PaperEvent](32)
	paperService := services.NewPaperService(paperServiceDB, queryCache, messageBroker, cfg.MaxPageSize)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger())

	// CORS middleware configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range cfg.AllowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
	wsHandler := wsocket.NewHandler(upgrader, messageBroker)

	api.SetupRoutes(r, paperService, wsHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openStore returns the configured record store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (services.PaperServiceDB, func()) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store; papers are lost on restart")
		return services.NewInMemoryPaperServiceDB(), func() {}

	case config.StoreMongo:
		client, db, err := database.InitMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize mongo store")
		}
		store := services.NewMongoPaperServiceDB(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to create mongo indexes")
		}
		return store, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect mongo")
			}
		}

	default:
		db, err := database.InitDB(database.PostgresConfig{
			Host:     cfg.DBHost,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
			Port:     cfg.DBPort,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		return services.NewPaperServiceDB(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	}
}
