package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/bootstrap"
	"github.com/Domenick1991/skybooking/internal/cache"
	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/notifier"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/reservation"
	"github.com/Domenick1991/skybooking/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache.SchedulesTTL())
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	external := notifier.NewClient(cfg.Notifier)

	directoryRepo := repository.NewDirectoryRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	searchService := search.NewService(directoryRepo, searchRepo, scheduleRepo, redisCache)
	reservationService := reservation.NewService(bookingRepo, scheduleRepo, producer, cfg.Kafka.BookingTopic)
	cancellationService := cancellation.NewService(
		bookingRepo,
		directoryRepo,
		searchService,
		external,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Search.AlternativesLimit,
	)

	router := gin.Default()
	api.NewFlightHandler(searchService, cancellationService, cfg.Search.DefaultLimit).Register(router.Group("/flights"))
	api.NewBookingHandler(reservationService, cancellationService).Register(router.Group("/booking"))

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
