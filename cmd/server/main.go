package main // Entry point package

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/civic-service-desk/internal/config"
	"github.com/iliyamo/civic-service-desk/internal/database"
	"github.com/iliyamo/civic-service-desk/internal/handler"
	"github.com/iliyamo/civic-service-desk/internal/lifecycle"
	"github.com/iliyamo/civic-service-desk/internal/queue"
	"github.com/iliyamo/civic-service-desk/internal/repository"
	"github.com/iliyamo/civic-service-desk/internal/router"
	"github.com/iliyamo/civic-service-desk/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.Migrate(ctx, db)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	users := repository.NewUserRepo(db)
	requests := repository.NewRequestRepo(db)
	engine := lifecycle.NewEngine(requests)

	images, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("upload store init failed")
	}

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
	router.RegisterCitizen(e, handler.NewCitizenHandler(engine, images), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(engine), cfg.JWTSecret)

	// Uploaded photos are served read-only under the same relative
	// prefix that is stored on the request rows.
	e.Static("/uploads", cfg.UploadDir)

	// Background consumer that turns queued events into notification
	// log lines; it reconnects on broker failure.
	go queue.StartNotificationConsumer()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")

	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
