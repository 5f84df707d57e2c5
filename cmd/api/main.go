package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"rate-shopping/internal/config"
	"rate-shopping/internal/modules/catalog"
	"rate-shopping/internal/modules/rating"
	"rate-shopping/pkg/staticrates"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo, cfg.TaxCalculator)

	carrierProvider := rating.NewCarrierProvider(cfg.CarrierAPIURL, cfg.CarrierAPIKey)
	storefrontClient := rating.NewStorefrontClient(cfg.StorefrontAPIVersion)

	// Ordered rate-source list; the storefront source is the slowest and
	// runs under its own deadline so it cannot stall the batch.
	sources := []rating.RateSource{
		rating.NewCarrierSource(catalogSvc, carrierProvider),
		rating.NewPriceSackSource(catalogSvc),
		rating.WithTimeout(
			rating.NewStorefrontSource(catalogSvc, storefrontClient),
			time.Duration(cfg.StorefrontTimeoutSeconds)*time.Second,
		),
	}

	ratingSvc := rating.NewService(sources, staticrates.NewWeightBandRater(), rating.Options{
		DynamicRating:         cfg.DynamicRatingEnabled,
		FrontendDynamicRating: cfg.FrontendDynamicRating,
	})
	ratingHandler := rating.NewHandler(ratingSvc, catalogSvc)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if cfg.ClientOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.ClientOrigin},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/api/rates", ratingHandler.GetRates)

	if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
