package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/site-scraper/internal/auth"
	"github.com/octobees/site-scraper/internal/config"
	"github.com/octobees/site-scraper/internal/handler"
	middlewarepkg "github.com/octobees/site-scraper/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Extract *handler.ExtractHandler
	Config  *handler.ConfigHandler
	Feishu  *handler.FeishuHandler
	Health  *handler.HealthHandler
}

// Register wires all HTTP routes for the API. A nil gatherer hides /metrics.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, gatherer prometheus.Gatherer, handlers Handlers) {
	e.GET("/healthz", handlers.Health.Health)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	limiter := middlewarepkg.RateLimiter(cfg.RateLimitExtract)
	identify := middlewarepkg.Identify(jwtManager)
	e.POST("/extract", handlers.Extract.Extract, identify, limiter)
	e.GET("/extract", handlers.Extract.Extract, identify, limiter)

	feishu := e.Group("/feishu")
	feishu.POST("/validate", handlers.Feishu.Validate)
	feishu.POST("/ping", handlers.Feishu.Ping)

	secured := e.Group("/config", middlewarepkg.RequireIdentity(jwtManager))
	secured.POST("", handlers.Config.Save)
	secured.GET("", handlers.Config.Get)
	secured.DELETE("", handlers.Config.Clear)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return handler.Fail(c, http.StatusNotFound, "not_found", "route not found")
	})
}
