package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akilov-labs/leads-crm-api/internal/config"
	"github.com/akilov-labs/leads-crm-api/internal/handler"
	middlewarepkg "github.com/akilov-labs/leads-crm-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	CRM    *handler.CRMHandler
	Search *handler.SearchHandler
	Enrich *handler.EnrichHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.GET("/crm", handlers.CRM.Snapshot)
	e.POST("/crm", handlers.CRM.Dispatch)

	e.GET("/search", handlers.Search.List)
	e.POST("/search", handlers.Search.UpsertMany)
	e.POST("/places/search", handlers.Search.Live, middlewarepkg.RateLimit("/places/search", cfg.RateLimitSearch))

	e.GET("/enrich", handlers.Enrich.Enrich, middlewarepkg.RateLimit("/enrich", cfg.RateLimitEnrich))
}
