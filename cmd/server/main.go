package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sai-kaneko-31/ito/config"
	"github.com/sai-kaneko-31/ito/domain"
	"github.com/sai-kaneko-31/ito/game"
	"github.com/sai-kaneko-31/ito/logger"
	"github.com/sai-kaneko-31/ito/storage"
)

const sweepInterval = time.Hour

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store game.Store
	if cfg.MongoURL != "" {
		mongoStore, err := storage.NewMongoStore(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			log.Fatal().Err(err).Msg("mongodb connection failed")
		}
		defer mongoStore.Close(context.Background())
		store = mongoStore
		log.Info().Str("db", cfg.MongoDatabase).Msg("mongodb connected")
	} else {
		store = storage.NewMemoryStore()
		log.Warn().Msg("MONGO_URL not set, using in-memory store")
	}

	hub := game.NewHub()
	coord := game.NewCoordinator(store, hub)
	handler := game.NewHandler(store, coord, cfg.AllowedOrigins)

	go game.RunSweeper(ctx, store, sweepInterval, domain.RetentionTime)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	handler.RegisterRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
