package main

import (
	"log"

	"github.com/bookcircle-app/backend/internal/config"
	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/bookcircle-app/backend/internal/server"
	"github.com/bookcircle-app/backend/pkg/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	if len(cfg.EventTargets) == 0 {
		log.Println("EVENT_TARGETS empty: event fan-out disabled")
	} else {
		log.Printf("event fan-out to %d target(s)", len(cfg.EventTargets))
	}

	srv := server.NewServer(cfg, db, redisClient)

	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.ClubBook{},
		&entity.Post{},
		&entity.PostImage{},
		&entity.Comment{},
		&entity.Reaction{},
	)
}

// connectRedis returns nil when REDIS_URL is unset; rate limiting degrades
// to a no-op in that case.
func connectRedis(url string) *redis.Client {
	if url == "" {
		log.Println("REDIS_URL empty: rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opts)
}
