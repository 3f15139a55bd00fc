package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prorideparts/checkout-gateway/internal/application"
	"github.com/prorideparts/checkout-gateway/internal/config"
	"github.com/prorideparts/checkout-gateway/internal/easyparcel"
	"github.com/prorideparts/checkout-gateway/internal/kafka"
	"github.com/prorideparts/checkout-gateway/internal/logger"
	"github.com/prorideparts/checkout-gateway/internal/migrate"
	"github.com/prorideparts/checkout-gateway/internal/presentation"
	"github.com/prorideparts/checkout-gateway/internal/repository"
	"github.com/prorideparts/checkout-gateway/internal/toyyib"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	if err := migrate.Up(cfg.DBString); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DBString)
	if err != nil {
		logger.Error("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	// Wiring
	repo := repository.NewOrderRepository(pool)
	payments := toyyib.NewClient(toyyib.Config{
		BaseURL:      cfg.ToyyibBaseURL,
		SecretKey:    cfg.ToyyibSecretKey,
		CategoryCode: cfg.ToyyibCategoryCode,
		ReturnURL:    cfg.ToyyibReturnURL,
		CallbackURL:  cfg.ToyyibCallbackURL,
	})
	shipping := easyparcel.NewClient(easyparcel.Config{
		BaseURL:        cfg.EasyParcelBaseURL,
		APIKey:         cfg.EasyParcelAPIKey,
		SenderName:     cfg.SenderName,
		SenderPhone:    cfg.SenderPhone,
		SenderAddress:  cfg.SenderAddress,
		PickupPostcode: cfg.PickupPostcode,
	})

	// Lifecycle events are optional; the gateway works without a broker.
	var events application.EventPublisher
	if cfg.KafkaBrokers != "" {
		prod := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer prod.Close()
		events = prod
		logger.Info("kafka producer ready", "topic", cfg.KafkaTopic)
	}

	svc := application.NewCheckoutService(repo, payments, shipping, events)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API
	h := presentation.NewCheckoutHandler(svc)
	h.Register(r)

	// Storefront bundle + SPA fallback
	presentation.MountStatic(r)

	addr := ":" + cfg.HTTPPort
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("http server crashed", "err", err)
		os.Exit(1)
	}
}
