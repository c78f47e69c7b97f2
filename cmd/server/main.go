package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/cache"
	"github.com/jmlee-dev/studycafe-backend/internal/config"
	"github.com/jmlee-dev/studycafe-backend/internal/database"
	"github.com/jmlee-dev/studycafe-backend/internal/handler"
	"github.com/jmlee-dev/studycafe-backend/internal/queue"
	"github.com/jmlee-dev/studycafe-backend/internal/repository"
	"github.com/jmlee-dev/studycafe-backend/internal/router"
	"github.com/jmlee-dev/studycafe-backend/internal/sweep"
	"github.com/jmlee-dev/studycafe-backend/internal/vision"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the rate limiter and
	// the seat board cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and seat cache disabled")
	}
	board := cache.NewSeatBoard(rdb, 10*time.Second)

	members := repository.NewMemberRepo(db)
	seats := repository.NewSeatRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	usages := repository.NewUsageRepo(db)
	mileage := repository.NewMileageRepo(db)
	todos := repository.NewTodoRepo(db)
	tokens := repository.NewTokenRepo(db)

	captureDir := os.Getenv("CAPTURE_DIR")
	if captureDir == "" {
		captureDir = "captures"
	}
	vc := vision.NewClient(cfg.CameraBaseURL, captureDir)
	if !vc.Enabled() {
		log.Printf("camera disabled; check-out lost-item gate reports clean")
	}

	kiosk := handler.NewKioskHandler(cfg, members, seats, products, orders, usages, mileage, todos, board, vc)
	auth := handler.NewAuthHandler(cfg, members, tokens)
	web := handler.NewWebHandler(cfg, members, products, orders, mileage, todos)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterKiosk(e, kiosk, config.LoadRateLimitConfig(), rdb)
	router.RegisterAuth(e, auth)
	router.RegisterWeb(e, web, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers: the checkout event consumer and the
	// period-seat sweeper.
	go func() {
		if err := queue.StartCheckoutConsumer(); err != nil {
			log.Printf("checkout consumer stopped: %v", err)
		}
	}()
	go sweep.New(members, seats, usages, board, cfg.SweepInterval).Run(ctx)

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
