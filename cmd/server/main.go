package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/lodge-bed-reservation/internal/booking"
	"github.com/iliyamo/lodge-bed-reservation/internal/config"
	"github.com/iliyamo/lodge-bed-reservation/internal/database"
	"github.com/iliyamo/lodge-bed-reservation/internal/handler"
	"github.com/iliyamo/lodge-bed-reservation/internal/middleware"
	"github.com/iliyamo/lodge-bed-reservation/internal/queue"
	"github.com/iliyamo/lodge-bed-reservation/internal/repository"
	"github.com/iliyamo/lodge-bed-reservation/internal/router"
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: with no client, rate limiting and the calendar
	// cache silently become pass-through middleware.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and calendar cache disabled")
	}

	holdRepo := repository.NewHoldRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	blockedRepo := repository.NewBlockedDateRepo(db)

	holds := booking.NewHoldManager(holdRepo,
		booking.WithTimings(cfg.HoldWindow, cfg.PaymentGrace, cfg.LivenessTimeout))
	search := booking.NewSearch(blockedRepo, inventoryRepo, holds)

	availabilityHandler := handler.NewAvailabilityHandler(search)
	holdHandler := handler.NewHoldHandler(holds)
	adminHandler := handler.NewAdminHandler(blockedRepo)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, availabilityHandler, holdHandler, rateLimit, cache)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// Background consumer appends hold lifecycle events to logs/holds.log.
	go func() {
		if err := queue.StartHoldConsumer(); err != nil {
			log.Printf("hold consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
