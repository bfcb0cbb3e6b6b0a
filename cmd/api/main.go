package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/akilov-labs/leads-crm-api/internal/config"
	"github.com/akilov-labs/leads-crm-api/internal/database"
	"github.com/akilov-labs/leads-crm-api/internal/handler"
	middlewarepkg "github.com/akilov-labs/leads-crm-api/internal/middleware"
	"github.com/akilov-labs/leads-crm-api/internal/repository"
	"github.com/akilov-labs/leads-crm-api/internal/router"
	"github.com/akilov-labs/leads-crm-api/internal/service"
	"github.com/akilov-labs/leads-crm-api/internal/service/enrich"
	"github.com/akilov-labs/leads-crm-api/internal/service/places"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	leadsRepo := repository.NewPGXLeadsRepository(pool)
	placesRepo := repository.NewPGXPlacesRepository(pool)

	leadsService := service.NewLeadsService(leadsRepo)
	placesService := service.NewPlacesService(placesRepo)

	enrichOpts := []enrich.Option{enrich.WithTimeout(cfg.EnrichTimeout)}
	if cfg.HunterAPIKey != "" {
		enrichOpts = append(enrichOpts, enrich.WithDomainLookup(enrich.NewHunterClient(nil, "", cfg.HunterAPIKey)))
	}
	enricher := enrich.NewService(enrich.NewFetcher(nil), enrichOpts...)

	var searcher handler.PlaceSearcher
	if cfg.GoogleMapsAPIKey != "" {
		searcher = places.NewClient(nil, "", cfg.GoogleMapsAPIKey)
	}

	handlers := router.Handlers{
		CRM:    handler.NewCRMHandler(leadsService),
		Search: handler.NewSearchHandler(placesService, searcher),
		Enrich: handler.NewEnrichHandler(enricher),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))

	router.Register(e, cfg, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
