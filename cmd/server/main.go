// Command server exposes the persisted crawl results as a read-only JSON API.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"go-jd-crawler/internal/api"
	"go-jd-crawler/internal/config"
	"go-jd-crawler/internal/logger"
	"go-jd-crawler/internal/persist"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config file")
	flag.Parse()

	log := logger.New("Server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to load config")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	mode := gin.ReleaseMode
	if os.Getenv("APP_ENV") == "development" {
		mode = gin.DebugMode
	}

	var store api.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := persist.ConnectPostgres(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Failed to connect database")
		}
		defer db.Close()
		store = db
		log.Info().Msg("🗄️ Serving from database")
	} else {
		store = persist.NewCSVStore(cfg.OutputDir, map[string]string{
			"wanted":  cfg.Wanted.Output,
			"saramin": cfg.Saramin.Output,
		})
		log.Info().Str("dir", cfg.OutputDir).Msg("📂 Serving CSV outputs")
	}

	r := api.NewRouter(store, mode, time.Now())
	log.Info().Msgf("Server listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
