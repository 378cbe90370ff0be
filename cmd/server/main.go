package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revenue-tracker/internal/adapters/web"
	"revenue-tracker/internal/app"
	"revenue-tracker/internal/cache"
	"revenue-tracker/internal/core"
	"revenue-tracker/internal/db"
	"revenue-tracker/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer pool.Close()

	customers := core.NewCustomerService(pool)
	orders := core.NewOrderService(pool)
	services := core.NewServiceService(pool)
	reporting := core.NewReportingService(pool)

	var resultCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedis(addr)
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		resultCache = redisCache
		log.WithField("addr", addr).Info("redis cache enabled")
	} else {
		resultCache = cache.NewMemory()
	}

	appSvc := app.NewAppService(customers, orders, services, reporting, resultCache)

	refresher := jobs.NewRefresher(customers, services, os.Getenv("CRON_SPEC"), log)
	if err := refresher.Start(); err != nil {
		log.WithError(err).Fatal("scheduling revenue refresh job failed")
	}
	defer refresher.Stop()

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: web.NewHandler(appSvc, os.Getenv("ALLOWED_ORIGINS"), log),
	}

	go func() {
		log.WithField("port", port).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}
