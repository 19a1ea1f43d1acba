package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/config"
	"github.com/stagelist/stagelist/internal/database"
	"github.com/stagelist/stagelist/internal/handler"
	"github.com/stagelist/stagelist/internal/queue"
	"github.com/stagelist/stagelist/internal/repository"
	"github.com/stagelist/stagelist/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the public response cache and rate limiter; nil just
	// disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	showrunners := repository.NewShowrunnerRepo(db)
	shows := repository.NewShowRepo(db)
	signups := repository.NewSignupRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens, showrunners)
	publicHandler := handler.NewPublicHandler(shows, signups, showrunners)
	organizerHandler := handler.NewOrganizerHandler(shows, signups, showrunners)
	performerHandler := handler.NewPerformerHandler(signups, showrunners)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, rdb)
	router.RegisterOrganizer(e, organizerHandler, cfg.JWTSecret)
	router.RegisterPerformer(e, performerHandler, cfg.JWTSecret)

	// The consumer runs for the life of the process, reconnecting to
	// the broker as needed, and appends lineup events to logs/lineup.log.
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartLineupConsumer(); err != nil {
				log.Printf("lineup consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
