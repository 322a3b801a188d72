package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maegy2011/orchids-tube-sub000/internal/config"
	"github.com/maegy2011/orchids-tube-sub000/internal/db"
	"github.com/maegy2011/orchids-tube-sub000/internal/download"
	"github.com/maegy2011/orchids-tube-sub000/internal/filter"
	"github.com/maegy2011/orchids-tube-sub000/internal/handler"
	"github.com/maegy2011/orchids-tube-sub000/internal/middleware"
	"github.com/maegy2011/orchids-tube-sub000/internal/provider"
	"github.com/maegy2011/orchids-tube-sub000/internal/router"
	"github.com/maegy2011/orchids-tube-sub000/internal/search"
	"github.com/maegy2011/orchids-tube-sub000/internal/service"
)

const outboundRPS = 5

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "orchids-tube")
	log := middleware.Logger

	ctx := context.Background()

	// The filter policy lives in Postgres when available; a deployment
	// without a database keeps it in memory and loses it on restart.
	var pool *pgxpool.Pool
	var store filter.Store = filter.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		p, err := db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, filter policy kept in memory")
		} else {
			pool = p
			defer pool.Close()

			pg := filter.NewPostgresStore(pool)
			if err := pg.Migrate(ctx); err != nil {
				log.Fatal().Err(err).Msg("filter schema migration failed")
			}
			store = pg
		}
	}
	filters := filter.NewService(store)

	cacheSvc := service.NewCacheService(cfg.RedisURL, log)
	defer cacheSvc.Close()

	client := provider.NewHTTPClient(outboundRPS)
	innertube := provider.NewInnerTube(cfg.InnerTubeBaseURL, client, log)
	invidious := provider.NewInvidious(cfg.InvidiousBaseURL, client, log)
	piped := provider.NewPiped(cfg.PipedBaseURL, client, log)

	// Warm the visitor token so the first search doesn't pay for it.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		innertube.PrefetchVisitorToken(warmCtx)
	}()

	searchChain := provider.NewChain("search", log,
		func(p provider.SearchPage) bool { return len(p.Videos) > 0 },
		provider.WithBreaker(provider.Stage[provider.SearchRequest, provider.SearchPage]{
			Name: innertube.Name(), Run: innertube.Search,
		}),
		provider.WithBreaker(provider.Stage[provider.SearchRequest, provider.SearchPage]{
			Name: invidious.Name(), Run: invidious.Search,
		}),
		provider.WithBreaker(provider.Stage[provider.SearchRequest, provider.SearchPage]{
			Name: piped.Name(), Run: piped.Search,
		}),
	)

	orch := search.NewOrchestrator(
		searchChain,
		search.NewPaginator(innertube, invidious, piped),
		search.NewDiversifier(),
		filters,
		search.NewCache(search.DefaultCacheTTL),
		log,
	)

	videoSvc := service.NewVideoService(
		[]provider.DetailProvider{innertube, invidious, piped},
		filters, cacheSvc, log,
	)

	scrapeA := provider.NewScrapeResolver("scrape-a", cfg.ScrapeABaseURL, client, log)
	scrapeB := provider.NewScrapeResolver("scrape-b", cfg.ScrapeBBaseURL, client, log)
	resolver := download.NewResolver(
		[]provider.FormatProvider{innertube, invidious},
		[]*provider.ScrapeResolver{scrapeA, scrapeB},
		innertube, log,
	)

	handler.InitMetrics(pool)

	app := fiber.New(fiber.Config{
		AppName:      "OrchidsTube API",
		ServerHeader: "OrchidsTube",
	})

	router.Setup(app, &router.Handlers{
		Search:   handler.NewSearchHandler(orch),
		Video:    handler.NewVideoHandler(videoSvc),
		Download: handler.NewDownloadHandler(resolver),
		Filter:   handler.NewFilterHandler(filters),
		Health:   handler.NewHealthHandler(pool, cacheSvc.Client()),
	}, cfg.CORSOrigins)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
