package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/maegy2011/orchids-tube-sub000/internal/handler"
	"github.com/maegy2011/orchids-tube-sub000/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Search   *handler.SearchHandler
	Video    *handler.VideoHandler
	Download *handler.DownloadHandler
	Filter   *handler.FilterHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics sit outside the API group
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	searchLimit := middleware.NewSearchRateLimiter().Handler()
	detailLimit := middleware.NewDetailRateLimiter().Handler()
	downloadLimit := middleware.NewDownloadRateLimiter().Handler()
	adminLimit := middleware.NewAdminRateLimiter().Handler()

	// Discovery routes
	api.Get("/search", h.Search.Search, searchLimit)
	api.Get("/videos/:videoId", h.Video.Detail, detailLimit)

	// Download routes
	api.Post("/download", h.Download.Resolve, downloadLimit)
	api.Get("/download", h.Download.Formats, downloadLimit)
	api.Get("/download/formats", h.Download.Formats, downloadLimit)

	// Filter admin routes
	flt := api.Group("/filter", adminLimit)
	flt.Get("/", h.Filter.Get)
	flt.Patch("/", h.Filter.Patch)
	flt.Post("/pin", h.Filter.Pin)
	flt.Get("/categories", h.Filter.Categories)
	flt.Patch("/categories", h.Filter.PatchCategory)
	flt.Patch("/categories/:categoryId", h.Filter.PatchCategory)
	flt.Post("/whitelist", h.Filter.AddWhitelist)
	flt.Delete("/whitelist", h.Filter.RemoveWhitelist)
	flt.Post("/keywords", h.Filter.AddKeyword)
	flt.Delete("/keywords", h.Filter.RemoveKeyword)
}
